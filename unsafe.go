package natview

// UnsafeAccessor exposes operations that are easy to misuse if called
// casually — currently just arbitrary script evaluation with no return
// value. It closes over the NativeWindow rather than caching its state,
// so a reference obtained before the window closed becomes inert (every
// call re-checks closed) rather than stale.
type UnsafeAccessor struct {
	w *NativeWindow
}

// Unsafe returns an accessor scoped to this window.
func (w *NativeWindow) Unsafe() UnsafeAccessor { return UnsafeAccessor{w: w} }

// EvaluateScript runs source in the page with no return channel. Fire and
// forget: there is deliberately no way to observe the result here. Code
// that needs a result should use a PostMessage round trip instead.
func (u UnsafeAccessor) EvaluateScript(source string) error {
	return u.w.enqueue(command{kind: cmdEvaluateScript, str: source})
}
