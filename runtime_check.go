package natview

// RuntimeStatus answers whether the platform webview engine is available.
type RuntimeStatus struct {
	Available bool
	Version   string
	Platform  string
}

// CheckRuntime reports whether the webview engine is already available
// without attempting to install anything.
func CheckRuntime() RuntimeStatus {
	return checkRuntimeImpl()
}

// EnsureRuntime makes the webview engine available, installing it if the
// platform requires and supports that (currently only the Windows
// WebView2 bootstrapper). It must not be called under elevation without
// user consent; the bootstrapper itself requests consent via the
// standard UAC prompt when admin rights are actually required.
func EnsureRuntime() (RuntimeStatus, error) {
	return ensureRuntimeImpl()
}
