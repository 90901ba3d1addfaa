package natview

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/natview/natview/internal/platform"
)

// WindowOptions configures a NativeWindow at construction time.
type WindowOptions struct {
	Title string // default ""

	Width, Height int // default 800x600
	X, Y          *int
	MinWidth      *int
	MinHeight     *int
	MaxWidth      *int
	MaxHeight     *int

	Resizable   bool // zero value false: not resizable unless set
	Decorations bool // zero value false: undecorated unless set
	Transparent bool // default false
	AlwaysOnTop bool // default false
	Visible     bool // zero value false: created hidden unless set
	Devtools    bool // default false

	CSP            string
	TrustedOrigins []string
	AllowedHosts   []string // empty = unrestricted

	AllowCamera      bool
	AllowMicrophone  bool
	AllowFileSystem  bool
	AllowGeolocation bool
}

func (o WindowOptions) withDefaults() WindowOptions {
	if o.Width == 0 {
		o.Width = 800
	}
	if o.Height == 0 {
		o.Height = 600
	}
	return o
}

// EventHandlers is the per-window record of optional host callbacks.
// Owned by the NativeWindow and mutated only on the host thread.
type EventHandlers struct {
	OnMessage           func(message, sourceURL string)
	OnClose             func()
	OnResize            func(w, h int)
	OnMove              func(x, y int)
	OnFocus             func()
	OnBlur              func()
	OnPageLoad          func(finished bool, url string)
	OnTitleChanged      func(title string)
	OnReload            func()
	OnNavigationBlocked func(url string)
}

// NativeWindow is a per-window handle the host manipulates directly.
// Every mutating method enqueues a command on the process-wide manager
// and returns immediately; none wait for the command to execute.
type NativeWindow struct {
	id platform.WindowID
	m  *manager

	mu     sync.Mutex
	closed bool
}

// NewWindow synchronously creates a native window and webview and returns
// a handle with an assigned id. Creation failure is fatal: the handle
// never exists.
func NewWindow(opts WindowOptions) (*NativeWindow, error) {
	opts = opts.withDefaults()
	m := getManager()
	if m.adapterErr != nil {
		return nil, fmt.Errorf("natview: platform adapter unavailable: %w", m.adapterErr)
	}

	id, err := m.adapter.Create(toCreateOptions(opts))
	if err != nil {
		return nil, err
	}
	m.register(id, opts.AllowedHosts)
	return &NativeWindow{id: id, m: m}, nil
}

func toCreateOptions(o WindowOptions) platform.CreateOptions {
	var pos *platform.Point
	if o.X != nil && o.Y != nil {
		pos = &platform.Point{X: *o.X, Y: *o.Y}
	}
	var minSize, maxSize *platform.Size
	if o.MinWidth != nil && o.MinHeight != nil {
		minSize = &platform.Size{Width: *o.MinWidth, Height: *o.MinHeight}
	}
	if o.MaxWidth != nil && o.MaxHeight != nil {
		maxSize = &platform.Size{Width: *o.MaxWidth, Height: *o.MaxHeight}
	}
	return platform.CreateOptions{
		Title:         o.Title,
		Size:          platform.Size{Width: o.Width, Height: o.Height},
		Position:      pos,
		MinSize:       minSize,
		MaxSize:       maxSize,
		Resizable:     o.Resizable,
		Decorations:   o.Decorations,
		Transparent:   o.Transparent,
		AlwaysOnTop:   o.AlwaysOnTop,
		Visible:       o.Visible,
		Devtools:      o.Devtools,
		DocumentStart: composeBaseDocumentStart(o),
		Permissions: platform.Permissions{
			Camera:      o.AllowCamera,
			Microphone:  o.AllowMicrophone,
			FileSystem:  o.AllowFileSystem,
			Geolocation: o.AllowGeolocation,
		},
	}
}

// ID returns the process-unique window id.
func (w *NativeWindow) ID() uint64 { return uint64(w.id) }

// checkOpen reports ErrWindowClosed once the window is closed, whether by
// an explicit Close() call (caught via the local flag, before the pump
// even sees a close command) or by the engine/user closing it out from
// under the handle (caught via the manager's registry, which onClosed
// updates when that close is reported back).
func (w *NativeWindow) checkOpen() error {
	w.mu.Lock()
	localClosed := w.closed
	w.mu.Unlock()
	if localClosed || w.m.isClosed(w.id) {
		return ErrWindowClosed
	}
	return nil
}

func (w *NativeWindow) enqueue(c command) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	c.id = w.id
	w.m.enqueue(c)
	return nil
}

// InstallDocumentStartScript registers an additional script to run before
// any page script on every future document in this window. Used by
// package channel to install the injected client bridge without
// retroactively rewriting the window's base document-start bundle.
func (w *NativeWindow) InstallDocumentStartScript(source string) error {
	return w.enqueue(command{kind: cmdInstallDocumentStart, str: source})
}

func (w *NativeWindow) LoadURL(url string) error  { return w.enqueue(command{kind: cmdLoadURL, str: url}) }
func (w *NativeWindow) LoadHTML(html string) error { return w.enqueue(command{kind: cmdLoadHTML, str: html}) }
func (w *NativeWindow) PostMessage(text string) error {
	return w.enqueue(command{kind: cmdPostMessage, str: text})
}

func (w *NativeWindow) SetTitle(title string) error {
	return w.enqueue(command{kind: cmdSetTitle, str: title})
}
func (w *NativeWindow) SetSize(width, height int) error {
	return w.enqueue(command{kind: cmdSetSize, size: platform.Size{Width: width, Height: height}})
}
func (w *NativeWindow) SetMinSize(width, height int) error {
	return w.enqueue(command{kind: cmdSetMinSize, size: platform.Size{Width: width, Height: height}})
}
func (w *NativeWindow) SetMaxSize(width, height int) error {
	return w.enqueue(command{kind: cmdSetMaxSize, size: platform.Size{Width: width, Height: height}})
}
func (w *NativeWindow) SetPosition(x, y int) error {
	return w.enqueue(command{kind: cmdSetPosition, pos: platform.Point{X: x, Y: y}})
}
func (w *NativeWindow) SetResizable(v bool) error   { return w.enqueue(command{kind: cmdSetResizable, flag: v}) }
func (w *NativeWindow) SetDecorations(v bool) error { return w.enqueue(command{kind: cmdSetDecorations, flag: v}) }
func (w *NativeWindow) SetAlwaysOnTop(v bool) error { return w.enqueue(command{kind: cmdSetAlwaysOnTop, flag: v}) }

func (w *NativeWindow) Show() error       { return w.enqueue(command{kind: cmdShow}) }
func (w *NativeWindow) Hide() error       { return w.enqueue(command{kind: cmdHide}) }
func (w *NativeWindow) Focus() error      { return w.enqueue(command{kind: cmdFocus}) }
func (w *NativeWindow) Maximize() error   { return w.enqueue(command{kind: cmdMaximize}) }
func (w *NativeWindow) Minimize() error   { return w.enqueue(command{kind: cmdMinimize}) }
func (w *NativeWindow) Unmaximize() error { return w.enqueue(command{kind: cmdUnmaximize}) }
func (w *NativeWindow) Reload() error     { return w.enqueue(command{kind: cmdReload}) }

// Close marks the handle closed before enqueueing the close command, so
// subsequent calls fail fast without waiting for the pump.
func (w *NativeWindow) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWindowClosed
	}
	w.closed = true
	w.mu.Unlock()
	w.m.enqueue(command{id: w.id, kind: cmdClose})
	return nil
}

// GetCookies requests the cookie jar, optionally scoped to url, and
// returns a future that resolves on the next cookie delivery.
func (w *NativeWindow) GetCookies(url string) (*CookiesFuture, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	fut := newCookiesFuture(w.id)
	w.m.enqueue(command{id: w.id, kind: cmdGetCookies, str: url, cookieFuture: fut})
	return fut, nil
}

// On registers a handler in the per-window EventHandlers record. Emits a
// warning when the call replaces an already registered OnClose with a
// handler from different code, since the pump's bookkeeping relies on
// firing it exactly once.
func (w *NativeWindow) On(set func(*EventHandlers)) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	e := w.m.entry(w.id)
	if e == nil {
		return ErrWindowClosed
	}
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	var prevClose uintptr
	if e.handlers.OnClose != nil {
		prevClose = reflect.ValueOf(e.handlers.OnClose).Pointer()
	}
	set(&e.handlers)
	if prevClose != 0 && e.handlers.OnClose != nil && reflect.ValueOf(e.handlers.OnClose).Pointer() != prevClose {
		slog.Default().Warn("natview: OnClose re-registered, overwriting previous handler", "window", w.id)
	}
	return nil
}
