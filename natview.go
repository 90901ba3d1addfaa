// Package natview hosts native operating-system windows, each embedding a
// platform webview, and drives them from a single cooperative event pump.
// All window mutation flows through the pump; callers only ever enqueue
// intent and register handlers.
package natview

import "errors"

// ErrWindowClosed is returned by every NativeWindow method once the window
// has been closed, either by the user or by an explicit Close call.
var ErrWindowClosed = errors.New("natview: window closed")

// ErrRuntimeUnavailable is returned by EnsureRuntime when the platform
// webview engine cannot be made available.
var ErrRuntimeUnavailable = errors.New("natview: webview runtime unavailable")
