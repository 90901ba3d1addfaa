package natview

import (
	"log/slog"
	"sync"
	"time"

	"github.com/natview/natview/internal/platform"
)

// tickInterval is the pump's target cadence between ticks.
const tickInterval = 16 * time.Millisecond

// windowEntry is the Window Manager's per-window record: the adapter
// handle, live/closed state, and the EventHandlers the host registered.
// Mutated only on the UI thread (the pump goroutine).
type windowEntry struct {
	handlers     EventHandlers
	closed       bool
	allowedHosts []string // patterns; empty means unrestricted
}

// manager is the process-wide owner of the window registry and command
// queue. Exactly one instance exists per process (see theManager). All of
// its mutable state is either guarded by mu (registry, queue) or touched
// only from the pump goroutine (adapter calls).
type manager struct {
	adapter    platform.Adapter
	adapterErr error
	log        *slog.Logger

	mu      sync.Mutex
	windows map[platform.WindowID]*windowEntry
	queue   []command

	pumpMu      sync.Mutex
	pumpRunning bool
	pumpStop    chan struct{}
	pumpDone    chan struct{}

	cookieMu  sync.Mutex
	cookieFut map[string]*CookiesFuture
}

var (
	theManager     *manager
	theManagerOnce sync.Once
)

// getManager returns the process-wide manager, constructing it (and the
// platform adapter) on first use.
func getManager() *manager {
	theManagerOnce.Do(func() {
		adapter, err := platform.NewAdapter()
		m := &manager{
			adapter:    adapter,
			adapterErr: err,
			log:        slog.Default().With("component", "natview.manager"),
			windows:    make(map[platform.WindowID]*windowEntry),
			cookieFut:  make(map[string]*CookiesFuture),
		}
		if err != nil {
			theManager = m
			return
		}
		m.adapter.SetCallbacks(platform.Callbacks{
			OnPageLoadStarted:  m.onPageLoadStarted,
			OnPageLoadFinished: m.onPageLoadFinished,
			OnNavigation:       m.onNavigation,
			OnMessage:          m.onMessage,
			OnClosed:           m.onClosed,
			OnResized:          m.onResized,
			OnMoved:            m.onMoved,
			OnFocusChanged:     m.onFocusChanged,
			OnTitleChanged:     m.onTitleChanged,
			OnReload:           m.onReload,
			OnCookies:          m.onCookies,
		})
		theManager = m
	})
	return theManager
}

// enqueue appends a command to the FIFO queue. Safe to call from any
// thread; never blocks waiting for execution. It does not start the pump;
// register does that when a window is created.
func (m *manager) enqueue(c command) {
	m.mu.Lock()
	m.queue = append(m.queue, c)
	m.mu.Unlock()
}

// register creates a fresh registry entry for id and starts the pump if
// it is not already running.
func (m *manager) register(id platform.WindowID, allowedHosts []string) {
	m.mu.Lock()
	m.windows[id] = &windowEntry{allowedHosts: allowedHosts}
	m.mu.Unlock()
	m.startPump()
}

func (m *manager) entry(id platform.WindowID) *windowEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.windows[id]
}

func (m *manager) isClosed(id platform.WindowID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isClosedLocked(id)
}

// isClosedLocked is isClosed's body for callers that already hold mu —
// drain is the only one.
func (m *manager) isClosedLocked(id platform.WindowID) bool {
	e := m.windows[id]
	return e == nil || e.closed
}

// drain empties the queue into a slice, dropping commands targeted at
// windows that are already closed or gone from the registry entirely;
// close commands are kept whatever the window's state. Draining once at tick start into a local list means
// reentrant enqueues from this tick's callbacks are only observed on the
// next tick, never the current one.
func (m *manager) drain() []command {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.queue
	m.queue = nil

	out := pending[:0]
	for _, c := range pending {
		if c.kind != cmdClose && m.isClosedLocked(c.id) {
			continue
		}
		out = append(out, c)
	}
	return out
}
