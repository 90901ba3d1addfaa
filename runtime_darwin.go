//go:build darwin

package natview

// checkRuntimeImpl reports WebKit availability. WebKit.framework ships
// with every supported macOS release, so it is always available.
func checkRuntimeImpl() RuntimeStatus {
	return RuntimeStatus{Available: true, Platform: "darwin"}
}

func ensureRuntimeImpl() (RuntimeStatus, error) {
	return checkRuntimeImpl(), nil
}
