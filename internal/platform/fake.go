//go:build !darwin && !windows

package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// NewAdapter returns the in-memory fake used for local development on
// Linux and by every test in this module: no native library is loaded,
// every operation mutates plain Go state, and lifecycle callbacks are
// queued and fired by the next PumpOnce call, so tests don't need a real
// webview engine to exercise the window manager, the typed channel or the
// injected bridge. The fake never raises navigation callbacks.
func NewAdapter() (Adapter, error) {
	return newFakeAdapter(), nil
}

type fakeWindow struct {
	opts   CreateOptions
	title  string
	size   Size
	closed bool

	initScripts []string
}

// fakeAdapter implements Adapter entirely in memory. Safe for concurrent
// use: every public method takes mu.
type fakeAdapter struct {
	mu      sync.Mutex
	nextID  uint64
	windows map[WindowID]*fakeWindow
	cb      Callbacks

	pending []func() // queued work PumpOnce drains, mirrors a real OS event loop
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{windows: make(map[WindowID]*fakeWindow)}
}

func (a *fakeAdapter) SetCallbacks(cb Callbacks) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cb = cb
}

func (a *fakeAdapter) Create(opts CreateOptions) (WindowID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := WindowID(atomic.AddUint64(&a.nextID, 1))
	a.windows[id] = &fakeWindow{opts: opts, title: opts.Title, size: opts.Size}
	if opts.DocumentStart != "" {
		a.windows[id].initScripts = append(a.windows[id].initScripts, opts.DocumentStart)
	}
	return id, nil
}

func (a *fakeAdapter) withWindow(id WindowID, f func(*fakeWindow)) {
	a.mu.Lock()
	w, ok := a.windows[id]
	a.mu.Unlock()
	if !ok || w.closed {
		return
	}
	f(w)
}

func (a *fakeAdapter) LoadURL(id WindowID, url string) {
	a.withWindow(id, func(w *fakeWindow) {
		a.queue(func() {
			if a.cb.OnPageLoadStarted != nil {
				a.cb.OnPageLoadStarted(id, url)
			}
			if a.cb.OnPageLoadFinished != nil {
				a.cb.OnPageLoadFinished(id, url)
			}
		})
	})
}

func (a *fakeAdapter) LoadHTML(id WindowID, html string) {
	a.withWindow(id, func(w *fakeWindow) {
		a.queue(func() {
			if a.cb.OnPageLoadFinished != nil {
				a.cb.OnPageLoadFinished(id, "about:blank")
			}
		})
	})
}

func (a *fakeAdapter) EvaluateScript(id WindowID, source string) {}

func (a *fakeAdapter) PostMessage(id WindowID, text string) {}

func (a *fakeAdapter) InstallDocumentStartScript(id WindowID, source string) {
	a.withWindow(id, func(w *fakeWindow) {
		w.initScripts = append(w.initScripts, source)
	})
}

func (a *fakeAdapter) SetTitle(id WindowID, title string) {
	a.withWindow(id, func(w *fakeWindow) {
		w.title = title
		a.queue(func() {
			if a.cb.OnTitleChanged != nil {
				a.cb.OnTitleChanged(id, title)
			}
		})
	})
}

func (a *fakeAdapter) SetSize(id WindowID, size Size) {
	a.withWindow(id, func(w *fakeWindow) {
		w.size = size
		a.queue(func() {
			if a.cb.OnResized != nil {
				a.cb.OnResized(id, size.Width, size.Height)
			}
		})
	})
}

func (a *fakeAdapter) SetMinSize(id WindowID, size Size)    {}
func (a *fakeAdapter) SetMaxSize(id WindowID, size Size)    {}
func (a *fakeAdapter) SetResizable(id WindowID, v bool)     {}
func (a *fakeAdapter) SetDecorations(id WindowID, v bool)   {}
func (a *fakeAdapter) SetAlwaysOnTop(id WindowID, v bool)   {}
func (a *fakeAdapter) SetPermissions(id WindowID, p Permissions) {}

func (a *fakeAdapter) SetPosition(id WindowID, pos Point) {
	a.withWindow(id, func(w *fakeWindow) {
		a.queue(func() {
			if a.cb.OnMoved != nil {
				a.cb.OnMoved(id, pos.X, pos.Y)
			}
		})
	})
}

func (a *fakeAdapter) Show(id WindowID) {}
func (a *fakeAdapter) Hide(id WindowID) {}

func (a *fakeAdapter) Focus(id WindowID) {
	a.withWindow(id, func(w *fakeWindow) {
		a.queue(func() {
			if a.cb.OnFocusChanged != nil {
				a.cb.OnFocusChanged(id, true)
			}
		})
	})
}

func (a *fakeAdapter) Maximize(id WindowID)   {}
func (a *fakeAdapter) Minimize(id WindowID)   {}
func (a *fakeAdapter) Unmaximize(id WindowID) {}

func (a *fakeAdapter) Reload(id WindowID) {
	a.withWindow(id, func(w *fakeWindow) {
		a.queue(func() {
			if a.cb.OnReload != nil {
				a.cb.OnReload(id)
			}
		})
	})
}

func (a *fakeAdapter) Close(id WindowID) {
	a.mu.Lock()
	w, ok := a.windows[id]
	if ok {
		w.closed = true
		delete(a.windows, id)
	}
	a.mu.Unlock()
	if ok {
		a.queue(func() {
			if a.cb.OnClosed != nil {
				a.cb.OnClosed(id)
			}
		})
	}
}

func (a *fakeAdapter) GetCookies(id WindowID, url string) string {
	reqID := uuid.NewString()
	a.queue(func() {
		if a.cb.OnCookies != nil {
			a.cb.OnCookies(reqID, []CookieRecord{}, nil)
		}
	})
	return reqID
}

func (a *fakeAdapter) queue(f func()) {
	a.mu.Lock()
	a.pending = append(a.pending, f)
	a.mu.Unlock()
}

// PumpOnce runs everything queued since the last call, mirroring a real
// OS event loop pass. It never blocks for budget — tests don't need a
// fake adapter that sleeps.
func (a *fakeAdapter) PumpOnce(_ time.Duration) {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()
	for _, f := range pending {
		f()
	}
}
