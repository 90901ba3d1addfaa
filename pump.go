package natview

import (
	"time"

	"github.com/natview/natview/internal/platform"
)

// startPump launches the cooperative event pump if it is not already
// running. Safe to call repeatedly; only the first call after a stop has
// effect.
func (m *manager) startPump() {
	m.pumpMu.Lock()
	defer m.pumpMu.Unlock()
	if m.pumpRunning {
		return
	}
	m.pumpRunning = true
	m.pumpStop = make(chan struct{})
	m.pumpDone = make(chan struct{})
	go m.pumpLoop(m.pumpStop, m.pumpDone)
}

// stopPumpIfIdle stops the pump once no window remains registered. Called
// after a window transitions to closed.
func (m *manager) stopPumpIfIdle() {
	m.mu.Lock()
	idle := len(m.windows) == 0
	m.mu.Unlock()
	if !idle {
		return
	}

	m.pumpMu.Lock()
	defer m.pumpMu.Unlock()
	if !m.pumpRunning {
		return
	}
	close(m.pumpStop)
	m.pumpRunning = false
}

func (m *manager) pumpLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick runs one pump iteration: drain queued commands, apply each, then
// let the platform adapter run one iteration of its native event loop so
// queued engine callbacks fire. A panicking command handler is recovered
// and logged so one bad command cannot kill the pump.
func (m *manager) tick() {
	for _, c := range m.drain() {
		m.runCommand(c)
	}
	m.adapter.PumpOnce(tickInterval)
}

func (m *manager) runCommand(c command) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("command panicked", "kind", c.kind, "window", c.id, "recover", r)
		}
	}()
	m.apply(m.adapter, c)
}

// --- platform.Callbacks wiring -------------------------------------------------

func (m *manager) onPageLoadStarted(id platform.WindowID, url string) {
	m.withHandlers(id, func(h EventHandlers) {
		if h.OnPageLoad != nil {
			h.OnPageLoad(false, url)
		}
	})
}

func (m *manager) onPageLoadFinished(id platform.WindowID, url string) {
	m.withHandlers(id, func(h EventHandlers) {
		if h.OnPageLoad != nil {
			h.OnPageLoad(true, url)
		}
	})
}

func (m *manager) onNavigation(id platform.WindowID, url string) bool {
	e := m.entry(id)
	if e == nil {
		return false
	}
	allow := navigationAllowed(url, e.allowedHosts)
	if !allow && e.handlers.OnNavigationBlocked != nil {
		e.handlers.OnNavigationBlocked(url)
	}
	return allow
}

func (m *manager) onMessage(id platform.WindowID, text, sourceURL string) {
	m.withHandlers(id, func(h EventHandlers) {
		if h.OnMessage != nil {
			h.OnMessage(text, sourceURL)
		}
	})
}

func (m *manager) onClosed(id platform.WindowID) {
	m.mu.Lock()
	e, ok := m.windows[id]
	if ok {
		already := e.closed
		e.closed = true
		if !already {
			delete(m.windows, id)
		}
		m.mu.Unlock()
		if ok && !already && e.handlers.OnClose != nil {
			e.handlers.OnClose()
		}
	} else {
		m.mu.Unlock()
	}
	m.failOutstandingCookies(id)
	m.stopPumpIfIdle()
}

func (m *manager) onResized(id platform.WindowID, w, h int) {
	m.withHandlers(id, func(h2 EventHandlers) {
		if h2.OnResize != nil {
			h2.OnResize(w, h)
		}
	})
}

func (m *manager) onMoved(id platform.WindowID, x, y int) {
	m.withHandlers(id, func(h EventHandlers) {
		if h.OnMove != nil {
			h.OnMove(x, y)
		}
	})
}

func (m *manager) onFocusChanged(id platform.WindowID, focused bool) {
	m.withHandlers(id, func(h EventHandlers) {
		if focused {
			if h.OnFocus != nil {
				h.OnFocus()
			}
		} else if h.OnBlur != nil {
			h.OnBlur()
		}
	})
}

func (m *manager) onTitleChanged(id platform.WindowID, title string) {
	m.withHandlers(id, func(h EventHandlers) {
		if h.OnTitleChanged != nil {
			h.OnTitleChanged(title)
		}
	})
}

func (m *manager) onReload(id platform.WindowID) {
	m.withHandlers(id, func(h EventHandlers) {
		if h.OnReload != nil {
			h.OnReload()
		}
	})
}

func (m *manager) withHandlers(id platform.WindowID, f func(EventHandlers)) {
	e := m.entry(id)
	if e == nil || e.closed {
		return
	}
	f(e.handlers)
}
