//go:build !darwin && !windows

package natview

import "runtime"

// checkRuntimeImpl/ensureRuntimeImpl back the fake in-memory adapter used
// for local development and tests on platforms with no real webview
// engine. They always report available so test suites don't need a
// native engine to exercise runtime-check call sites.
func checkRuntimeImpl() RuntimeStatus {
	return RuntimeStatus{Available: true, Platform: runtime.GOOS}
}

func ensureRuntimeImpl() (RuntimeStatus, error) {
	return checkRuntimeImpl(), nil
}
