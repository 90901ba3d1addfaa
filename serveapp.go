package natview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"runtime"
)

// AppTransport selects how ServeApp serves HTTP to the embedded browser.
type AppTransport string

const (
	// AppTransportAuto chooses the recommended platform default:
	// macOS/Linux use a unix backend socket with a loopback HTTP gateway;
	// Windows uses loopback TCP directly.
	AppTransportAuto AppTransport = "auto"

	// AppTransportTCP serves directly over loopback TCP.
	AppTransportTCP AppTransport = "tcp"

	// AppTransportUnix serves the application handler over a Unix domain
	// socket, with a lightweight loopback HTTP gateway so the embedded
	// browser can still navigate with a standard http:// URL.
	AppTransportUnix AppTransport = "unix"
)

// AppReadyInfo describes the transport details once ServeApp's listeners
// are up.
type AppReadyInfo struct {
	URL       string
	Transport AppTransport
	Backend   string
	Gateway   string
}

// AppOptions configures ServeApp.
type AppOptions struct {
	Window WindowOptions

	// Transport selects the backend transport. Defaults to AppTransportAuto.
	Transport AppTransport

	// Addr is the listen address for the local HTTP server. Used by
	// AppTransportTCP and defaults to "127.0.0.1:0".
	Addr string

	// UnixSocketPath is an optional socket path used when Transport is
	// unix. If empty, a temporary socket path is generated automatically.
	UnixSocketPath string

	// Handler is the HTTP handler to serve (typically an http.ServeMux).
	Handler http.Handler

	OnReady     func(addr string)
	OnReadyInfo func(info AppReadyInfo)
}

// resolve picks the concrete transport for the current OS, defaulting
// AppTransportAuto and rejecting AppTransportUnix on windows.
func (o AppOptions) resolve(goos string) (AppTransport, error) {
	switch {
	case o.Transport == "" || o.Transport == AppTransportAuto:
		if goos == "windows" {
			return AppTransportTCP, nil
		}
		return AppTransportUnix, nil
	case o.Transport == AppTransportTCP:
		return AppTransportTCP, nil
	case o.Transport == AppTransportUnix:
		if goos == "windows" {
			return "", errors.New("natview: unix transport is not supported on windows")
		}
		return AppTransportUnix, nil
	default:
		return "", fmt.Errorf("natview: invalid transport %q", o.Transport)
	}
}

// appTransport is the live backend ServeApp hands its http.Server: a
// listener to Serve on plus whatever ancillary plumbing (a loopback
// gateway, a socket file) needs to start alongside it and stop with it.
// Start and Stop are always safe to call, nil backing func or not.
type appTransport struct {
	listener  net.Listener
	baseURL   string
	transport AppTransport
	backend   string
	gateway   string

	start func()
	stop  func() error
}

func (t appTransport) Start() {
	if t.start != nil {
		t.start()
	}
}

func (t appTransport) Stop() error {
	if t.stop == nil {
		return nil
	}
	return t.stop()
}

func (t appTransport) readyInfo() AppReadyInfo {
	return AppReadyInfo{URL: t.baseURL, Transport: t.transport, Backend: t.backend, Gateway: t.gateway}
}

// ServeApp starts a local HTTP server and opens a NativeWindow pointed at
// it. It returns the window handle immediately; the server and the
// window are torn down together when the window's onClose fires.
func ServeApp(opts AppOptions) (*NativeWindow, error) {
	if opts.Handler == nil {
		return nil, errors.New("natview: AppOptions.Handler must not be nil")
	}
	log := getManager().log.With("component", "natview.serveapp")

	transport, err := newAppTransport(opts, log)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: opts.Handler}
	go func() { _ = srv.Serve(transport.listener) }()
	transport.Start()
	log.Debug("app transport ready", "transport", transport.transport, "url", transport.baseURL)

	if opts.OnReady != nil {
		opts.OnReady(transport.baseURL)
	}
	if opts.OnReadyInfo != nil {
		opts.OnReadyInfo(transport.readyInfo())
	}

	win, err := NewWindow(opts.Window)
	if err != nil {
		_ = srv.Close()
		if cerr := transport.Stop(); cerr != nil {
			log.Error("app transport cleanup after failed window creation", "error", cerr)
		}
		return nil, err
	}

	_ = win.On(func(h *EventHandlers) {
		h.OnClose = func() {
			_ = srv.Close()
			if cerr := transport.Stop(); cerr != nil {
				log.Error("app transport cleanup on window close", "error", cerr)
			}
		}
	})
	_ = win.LoadURL(transport.baseURL)
	_ = win.Show()

	return win, nil
}

// newAppTransport resolves and stands up the backend named by opts,
// logging the choice made for AppTransportAuto.
func newAppTransport(opts AppOptions, log *slog.Logger) (appTransport, error) {
	kind, err := opts.resolve(runtime.GOOS)
	if err != nil {
		return appTransport{}, err
	}
	if opts.Transport == "" || opts.Transport == AppTransportAuto {
		log.Debug("resolved auto transport", "goos", runtime.GOOS, "chosen", kind)
	}

	switch kind {
	case AppTransportTCP:
		return newTCPTransport(opts.Addr)
	case AppTransportUnix:
		return newUnixTransport(opts.UnixSocketPath, log)
	default:
		return appTransport{}, fmt.Errorf("natview: unsupported transport %q", kind)
	}
}

func newTCPTransport(addr string) (appTransport, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return appTransport{}, fmt.Errorf("natview: listen %s: %w", addr, err)
	}
	tcpAddr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		_ = ln.Close()
		return appTransport{}, errors.New("natview: failed to read tcp listen address")
	}
	return appTransport{
		listener:  ln,
		baseURL:   fmt.Sprintf("http://127.0.0.1:%d", tcpAddr.Port),
		transport: AppTransportTCP,
		backend:   tcpAddr.String(),
		gateway:   tcpAddr.String(),
	}, nil
}

// newUnixTransport serves the handler over a unix socket and fronts it
// with a loopback TCP reverse proxy, since the embedded browser's engine
// cannot navigate a unix:// URL directly.
func newUnixTransport(socketPath string, log *slog.Logger) (appTransport, error) {
	sock, err := newAppSocket(socketPath)
	if err != nil {
		return appTransport{}, err
	}

	unixListener, err := net.Listen("unix", sock.path)
	if err != nil {
		_ = sock.remove()
		return appTransport{}, fmt.Errorf("natview: listen unix %s: %w", sock.path, err)
	}

	proxyListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = unixListener.Close()
		_ = sock.remove()
		return appTransport{}, fmt.Errorf("natview: listen tcp gateway: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(&url.URL{Scheme: "http", Host: "unix"})
	proxy.Transport = &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var dialer net.Dialer
			return dialer.DialContext(ctx, "unix", sock.path)
		},
	}
	gatewaySrv := &http.Server{Handler: proxy}

	tcpAddr, ok := proxyListener.Addr().(*net.TCPAddr)
	if !ok {
		_ = gatewaySrv.Close()
		_ = proxyListener.Close()
		_ = unixListener.Close()
		_ = sock.remove()
		return appTransport{}, errors.New("natview: failed to read tcp gateway address")
	}

	return appTransport{
		listener:  unixListener,
		baseURL:   fmt.Sprintf("http://127.0.0.1:%d", tcpAddr.Port),
		transport: AppTransportUnix,
		backend:   sock.path,
		gateway:   tcpAddr.String(),
		start: func() { go func() { _ = gatewaySrv.Serve(proxyListener) }() },
		stop: func() error {
			_ = gatewaySrv.Close()
			_ = proxyListener.Close()
			if err := sock.remove(); err != nil {
				log.Error("remove unix socket on shutdown", "path", sock.path, "error", err)
				return err
			}
			return nil
		},
	}, nil
}

// appSocket owns the lifecycle of the unix socket file backing an app
// transport: picking a path, clearing any stale file before listening,
// and removing the file once the listener closes.
type appSocket struct {
	path      string
	ephemeral bool // true when the path was generated here, not supplied by the caller
}

func newAppSocket(requested string) (appSocket, error) {
	if requested != "" {
		if err := removeStaleSocket(requested); err != nil {
			return appSocket{}, err
		}
		return appSocket{path: requested}, nil
	}

	tmpFile, err := os.CreateTemp("", "natview-*.sock")
	if err != nil {
		return appSocket{}, fmt.Errorf("natview: create temp socket path: %w", err)
	}
	path := tmpFile.Name()
	if err := tmpFile.Close(); err != nil {
		return appSocket{}, fmt.Errorf("natview: close temp file: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return appSocket{}, fmt.Errorf("natview: remove temp file %s: %w", path, err)
	}
	return appSocket{path: path, ephemeral: true}, nil
}

func (s appSocket) remove() error {
	if s.path == "" {
		return nil
	}
	info, err := os.Lstat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("natview: stat unix socket %s: %w", s.path, err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("natview: %s exists and is not a unix socket", s.path)
	}
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("natview: remove unix socket %s: %w", s.path, err)
	}
	return nil
}

func removeStaleSocket(path string) error {
	return appSocket{path: path}.remove()
}
