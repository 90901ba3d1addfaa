//go:build darwin || windows

package platform

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/google/uuid"
)

// nativeAdapter binds to the natview native core: create/navigate/eval
// exports plus geometry, lifecycle, navigation/permission and cookie
// exports. The library itself is never compiled by this module — it is
// resolved once via purego.Dlopen/Dlsym (or the windows
// LoadLibrary/GetProcAddress equivalent) and called through
// purego.SyscallN for the remainder of the process.
type nativeAdapter struct {
	lib uintptr

	// Core symbols.
	pCreate   uintptr
	pNavigate uintptr
	pSetHTML  uintptr
	pInit     uintptr
	pEval     uintptr
	pPumpOnce uintptr

	// Geometry/visibility/lifecycle symbols.
	pSetTitle       uintptr
	pSetSize        uintptr
	pSetMinSize     uintptr
	pSetMaxSize     uintptr
	pSetPosition    uintptr
	pSetResizable   uintptr
	pSetDecorations uintptr
	pSetAlwaysOnTop uintptr
	pSetPermissions uintptr
	pShow           uintptr
	pHide           uintptr
	pClose          uintptr
	pFocus          uintptr
	pMaximize       uintptr
	pMinimize       uintptr
	pUnmaximize     uintptr
	pReload         uintptr
	pGetCookies     uintptr

	// Native callback trampolines, registered once and kept alive for the
	// process lifetime (purego.NewCallback callbacks must never be
	// collected while the native side may still invoke them).
	navCB       uintptr
	msgCB       uintptr
	lifecycleCB uintptr
	cookiesCB   uintptr

	cookieMu  sync.Mutex
	cookieReq map[string]WindowID

	cb Callbacks
}

// NewAdapter resolves the native core and returns the platform.Adapter
// this build targets.
func NewAdapter() (Adapter, error) {
	return newNativeAdapter()
}

func newNativeAdapter() (*nativeAdapter, error) {
	handle, err := loadLibrary(libraryPath())
	if err != nil {
		return nil, fmt.Errorf("platform: failed to load native core: %w", err)
	}
	a := &nativeAdapter{
		lib:       handle,
		cookieReq: make(map[string]WindowID),
	}

	symbols := []struct {
		ptr  *uintptr
		name string
	}{
		{&a.pCreate, "nw_create"},
		{&a.pNavigate, "nw_navigate"},
		{&a.pSetHTML, "nw_set_html"},
		{&a.pInit, "nw_init"},
		{&a.pEval, "nw_eval"},
		{&a.pPumpOnce, "nw_pump_once"},
		{&a.pSetTitle, "nw_set_title"},
		{&a.pSetSize, "nw_set_size"},
		{&a.pSetMinSize, "nw_set_min_size"},
		{&a.pSetMaxSize, "nw_set_max_size"},
		{&a.pSetPosition, "nw_set_position"},
		{&a.pSetResizable, "nw_set_resizable"},
		{&a.pSetDecorations, "nw_set_decorations"},
		{&a.pSetAlwaysOnTop, "nw_set_always_on_top"},
		{&a.pSetPermissions, "nw_set_permissions"},
		{&a.pShow, "nw_show"},
		{&a.pHide, "nw_hide"},
		{&a.pClose, "nw_close"},
		{&a.pFocus, "nw_focus"},
		{&a.pMaximize, "nw_maximize"},
		{&a.pMinimize, "nw_minimize"},
		{&a.pUnmaximize, "nw_unmaximize"},
		{&a.pReload, "nw_reload"},
		{&a.pGetCookies, "nw_get_cookies"},
	}
	for _, s := range symbols {
		ptr, err := loadSymbol(handle, s.name)
		if err != nil {
			return nil, err
		}
		*s.ptr = ptr
	}

	a.registerCallbacks()
	return a, nil
}

func (a *nativeAdapter) registerCallbacks() {
	a.navCB = purego.NewCallback(func(winArg, urlPtr uintptr) uintptr {
		if a.cb.OnNavigation == nil {
			return 1
		}
		if a.cb.OnNavigation(WindowID(winArg), goString(urlPtr)) {
			return 1
		}
		return 0
	})

	a.msgCB = purego.NewCallback(func(winArg, textPtr, srcPtr uintptr) uintptr {
		if a.cb.OnMessage != nil {
			a.cb.OnMessage(WindowID(winArg), goString(textPtr), goString(srcPtr))
		}
		return 0
	})

	// lifecycleCB multiplexes window/page events by a small integer tag so
	// the native core needs only one registration call per window.
	a.lifecycleCB = purego.NewCallback(func(winArg, kind, a1, a2 uintptr) uintptr {
		id := WindowID(winArg)
		switch kind {
		case lifecyclePageStarted:
			if a.cb.OnPageLoadStarted != nil {
				a.cb.OnPageLoadStarted(id, goString(a1))
			}
		case lifecyclePageFinished:
			if a.cb.OnPageLoadFinished != nil {
				a.cb.OnPageLoadFinished(id, goString(a1))
			}
		case lifecycleClosed:
			if a.cb.OnClosed != nil {
				a.cb.OnClosed(id)
			}
		case lifecycleResized:
			if a.cb.OnResized != nil {
				a.cb.OnResized(id, int(a1), int(a2))
			}
		case lifecycleMoved:
			if a.cb.OnMoved != nil {
				a.cb.OnMoved(id, int(a1), int(a2))
			}
		case lifecycleFocus:
			if a.cb.OnFocusChanged != nil {
				a.cb.OnFocusChanged(id, a1 != 0)
			}
		case lifecycleTitle:
			if a.cb.OnTitleChanged != nil {
				a.cb.OnTitleChanged(id, goString(a1))
			}
		case lifecycleReload:
			if a.cb.OnReload != nil {
				a.cb.OnReload(id)
			}
		}
		return 0
	})

	a.cookiesCB = purego.NewCallback(func(reqIDPtr, jsonPtr, errPtr uintptr) uintptr {
		reqID := goString(reqIDPtr)
		a.cookieMu.Lock()
		delete(a.cookieReq, reqID)
		a.cookieMu.Unlock()
		if a.cb.OnCookies == nil {
			return 0
		}
		if errMsg := goString(errPtr); errMsg != "" {
			a.cb.OnCookies(reqID, nil, fmt.Errorf("platform: get cookies: %s", errMsg))
			return 0
		}
		var raw []struct {
			Name, Value, Domain, Path, SameSite string
			HTTPOnly, Secure                    bool
			Expires                             float64
		}
		if err := json.Unmarshal([]byte(goString(jsonPtr)), &raw); err != nil {
			a.cb.OnCookies(reqID, nil, fmt.Errorf("platform: decode cookies: %w", err))
			return 0
		}
		records := make([]CookieRecord, 0, len(raw))
		for _, r := range raw {
			records = append(records, CookieRecord{
				Name: r.Name, Value: r.Value, Domain: r.Domain, Path: r.Path,
				HTTPOnly: r.HTTPOnly, Secure: r.Secure, SameSite: r.SameSite, Expires: r.Expires,
			})
		}
		a.cb.OnCookies(reqID, records, nil)
		return 0
	})
}

const (
	lifecyclePageStarted = iota
	lifecyclePageFinished
	lifecycleClosed
	lifecycleResized
	lifecycleMoved
	lifecycleFocus
	lifecycleTitle
	lifecycleReload
)

func (a *nativeAdapter) SetCallbacks(cb Callbacks) { a.cb = cb }

func (a *nativeAdapter) Create(opts CreateOptions) (WindowID, error) {
	titleBytes, titlePtr := cString(opts.Title)
	r1, _, _ := purego.SyscallN(a.pCreate, uintptr(titlePtr), uintptr(opts.Size.Width), uintptr(opts.Size.Height),
		a.navCB, a.msgCB, a.lifecycleCB)
	runtime.KeepAlive(titleBytes)
	if r1 == 0 {
		return 0, fmt.Errorf("platform: native core failed to create window")
	}
	id := WindowID(r1)
	if opts.DocumentStart != "" {
		a.InstallDocumentStartScript(id, opts.DocumentStart)
	}
	a.SetPermissions(id, opts.Permissions)
	if opts.Position != nil {
		a.SetPosition(id, *opts.Position)
	}
	if opts.MinSize != nil {
		a.SetMinSize(id, *opts.MinSize)
	}
	if opts.MaxSize != nil {
		a.SetMaxSize(id, *opts.MaxSize)
	}
	a.SetResizable(id, opts.Resizable)
	a.SetDecorations(id, opts.Decorations)
	a.SetAlwaysOnTop(id, opts.AlwaysOnTop)
	if opts.Visible {
		a.Show(id)
	} else {
		a.Hide(id)
	}
	return id, nil
}

func (a *nativeAdapter) call(p uintptr, id WindowID, args ...uintptr) {
	full := append([]uintptr{uintptr(id)}, args...)
	purego.SyscallN(p, full...)
}

func (a *nativeAdapter) callStr(p uintptr, id WindowID, s string) {
	b, ptr := cString(s)
	purego.SyscallN(p, uintptr(id), uintptr(ptr))
	runtime.KeepAlive(b)
}

func (a *nativeAdapter) LoadURL(id WindowID, url string)                 { a.callStr(a.pNavigate, id, url) }
func (a *nativeAdapter) LoadHTML(id WindowID, html string)               { a.callStr(a.pSetHTML, id, html) }
func (a *nativeAdapter) EvaluateScript(id WindowID, source string)       { a.callStr(a.pEval, id, source) }
func (a *nativeAdapter) InstallDocumentStartScript(id WindowID, s string) { a.callStr(a.pInit, id, s) }

func (a *nativeAdapter) PostMessage(id WindowID, text string) {
	data, _ := json.Marshal(text)
	a.EvaluateScript(id, "window.__native_message__("+string(data)+")")
}

func (a *nativeAdapter) SetTitle(id WindowID, title string) { a.callStr(a.pSetTitle, id, title) }

func (a *nativeAdapter) SetSize(id WindowID, size Size) {
	a.call(a.pSetSize, id, uintptr(size.Width), uintptr(size.Height))
}
func (a *nativeAdapter) SetMinSize(id WindowID, size Size) {
	a.call(a.pSetMinSize, id, uintptr(size.Width), uintptr(size.Height))
}
func (a *nativeAdapter) SetMaxSize(id WindowID, size Size) {
	a.call(a.pSetMaxSize, id, uintptr(size.Width), uintptr(size.Height))
}
func (a *nativeAdapter) SetPosition(id WindowID, pos Point) {
	a.call(a.pSetPosition, id, uintptr(pos.X), uintptr(pos.Y))
}
func (a *nativeAdapter) SetResizable(id WindowID, resizable bool) {
	a.call(a.pSetResizable, id, boolToUintptr(resizable))
}
func (a *nativeAdapter) SetDecorations(id WindowID, decorated bool) {
	a.call(a.pSetDecorations, id, boolToUintptr(decorated))
}
func (a *nativeAdapter) SetAlwaysOnTop(id WindowID, onTop bool) {
	a.call(a.pSetAlwaysOnTop, id, boolToUintptr(onTop))
}
func (a *nativeAdapter) SetPermissions(id WindowID, perms Permissions) {
	flags := uintptr(0)
	if perms.Camera {
		flags |= 1
	}
	if perms.Microphone {
		flags |= 2
	}
	if perms.FileSystem {
		flags |= 4
	}
	if perms.Geolocation {
		flags |= 8
	}
	a.call(a.pSetPermissions, id, flags)
}

func (a *nativeAdapter) Show(id WindowID)       { a.call(a.pShow, id) }
func (a *nativeAdapter) Hide(id WindowID)       { a.call(a.pHide, id) }
func (a *nativeAdapter) Close(id WindowID)      { a.call(a.pClose, id) }
func (a *nativeAdapter) Focus(id WindowID)      { a.call(a.pFocus, id) }
func (a *nativeAdapter) Maximize(id WindowID)   { a.call(a.pMaximize, id) }
func (a *nativeAdapter) Minimize(id WindowID)   { a.call(a.pMinimize, id) }
func (a *nativeAdapter) Unmaximize(id WindowID) { a.call(a.pUnmaximize, id) }
func (a *nativeAdapter) Reload(id WindowID)     { a.call(a.pReload, id) }

func (a *nativeAdapter) GetCookies(id WindowID, url string) string {
	reqID := uuid.NewString()
	a.cookieMu.Lock()
	a.cookieReq[reqID] = id
	a.cookieMu.Unlock()
	reqBytes, reqPtr := cString(reqID)
	urlBytes, urlPtr := cString(url)
	purego.SyscallN(a.pGetCookies, uintptr(id), uintptr(reqPtr), uintptr(urlPtr), a.cookiesCB)
	runtime.KeepAlive(reqBytes)
	runtime.KeepAlive(urlBytes)
	return reqID
}

func (a *nativeAdapter) PumpOnce(budget time.Duration) {
	purego.SyscallN(a.pPumpOnce, uintptr(budget.Milliseconds()))
}

func boolToUintptr(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

func cString(s string) ([]byte, unsafe.Pointer) {
	b := append([]byte(s), 0)
	return b, unsafe.Pointer(&b[0])
}

func goString(c uintptr) string {
	ptr := *(*unsafe.Pointer)(unsafe.Pointer(&c))
	if ptr == nil {
		return ""
	}
	var length int
	for {
		if *(*byte)(unsafe.Add(ptr, uintptr(length))) == 0 {
			break
		}
		length++
	}
	return string(unsafe.Slice((*byte)(ptr), length))
}

