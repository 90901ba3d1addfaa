// Package platform defines the narrow, per-OS capability set that the
// window manager drives, and the in-memory fake used everywhere tests and
// non-darwin/non-windows development builds run.
//
// Exactly one concrete Adapter exists per build: corelib.go (darwin and
// windows) and fake.go (everywhere else) each satisfy the same
// interface, selected at compile time by build tag rather than by
// runtime dispatch.
package platform

import "time"

// WindowID is a process-unique, monotonically increasing window handle.
type WindowID uint64

// Point is an (x, y) pair used for window position and move events.
type Point struct {
	X, Y int
}

// Size is a (width, height) pair used for window geometry.
type Size struct {
	Width, Height int
}

// Permissions mirrors the WindowOptions permission flags that gate the
// engine's permission prompts. The zero value denies everything.
type Permissions struct {
	Camera      bool
	Microphone  bool
	FileSystem  bool
	Geolocation bool
}

// CreateOptions carries everything the adapter needs to stand up one
// native window + webview pair.
type CreateOptions struct {
	Title         string
	Size          Size
	Position      *Point
	MinSize       *Size
	MaxSize       *Size
	Resizable     bool
	Decorations   bool
	Transparent   bool
	AlwaysOnTop   bool
	Visible       bool
	Devtools      bool
	Permissions   Permissions
	DocumentStart string // composed document-start script, installed before Create returns
}

// CookieRecord is one entry of the serialized cookie jar.
type CookieRecord struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	HTTPOnly bool
	Secure   bool
	SameSite string // "none" | "lax" | "strict"
	Expires  float64
}

// Callbacks is the set of host-bound hooks the adapter invokes on the UI
// thread. Every field is optional except by convention the manager sets
// all of them before Create is called.
type Callbacks struct {
	OnPageLoadStarted  func(id WindowID, url string)
	OnPageLoadFinished func(id WindowID, url string)
	OnNavigation       func(id WindowID, url string) bool // true = allow
	OnMessage          func(id WindowID, text, sourceURL string)
	OnClosed           func(id WindowID)
	OnResized          func(id WindowID, w, h int)
	OnMoved            func(id WindowID, x, y int)
	OnFocusChanged     func(id WindowID, focused bool)
	OnTitleChanged     func(id WindowID, title string)
	OnReload           func(id WindowID)
	OnCookies          func(requestID string, cookies []CookieRecord, err error)
}

// Adapter is the capability set every platform backend implements. All
// methods are synchronous UI-thread calls except GetCookies, whose result
// arrives later through Callbacks.OnCookies.
type Adapter interface {
	// Create stands up a new window+webview. A fatal error here means the
	// handle never exists.
	Create(opts CreateOptions) (WindowID, error)

	LoadURL(id WindowID, url string)
	LoadHTML(id WindowID, html string)
	EvaluateScript(id WindowID, source string)
	PostMessage(id WindowID, text string)
	InstallDocumentStartScript(id WindowID, source string)

	SetTitle(id WindowID, title string)
	SetSize(id WindowID, size Size)
	SetMinSize(id WindowID, size Size)
	SetMaxSize(id WindowID, size Size)
	SetPosition(id WindowID, pos Point)
	SetResizable(id WindowID, resizable bool)
	SetDecorations(id WindowID, decorated bool)
	SetAlwaysOnTop(id WindowID, onTop bool)
	SetPermissions(id WindowID, perms Permissions)

	Show(id WindowID)
	Hide(id WindowID)
	Close(id WindowID)
	Focus(id WindowID)
	Maximize(id WindowID)
	Minimize(id WindowID)
	Unmaximize(id WindowID)
	Reload(id WindowID)

	// GetCookies requests the cookie jar (optionally scoped to url). The
	// result is delivered asynchronously via Callbacks.OnCookies keyed by
	// the returned requestID.
	GetCookies(id WindowID, url string) (requestID string)

	// PumpOnce runs one iteration of the OS native event loop so queued
	// engine callbacks fire. It must not block longer than budget.
	PumpOnce(budget time.Duration)

	// SetCallbacks installs the host-bound hooks. Called once before the
	// first window is created.
	SetCallbacks(cb Callbacks)
}

// RuntimeInfo answers the CheckRuntime/EnsureRuntime contract.
type RuntimeInfo struct {
	Available bool
	Version   string
	Platform  string
}
