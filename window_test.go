package natview

import (
	"testing"
	"time"
)

func TestNewWindowAndClose(t *testing.T) {
	win, err := NewWindow(WindowOptions{Title: "test"})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if err := win.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestClosedWindowRejectsFurtherCalls(t *testing.T) {
	win, err := NewWindow(WindowOptions{})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if err := win.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := win.SetTitle("x"); err != ErrWindowClosed {
		t.Fatalf("SetTitle after close = %v, want ErrWindowClosed", err)
	}
	if err := win.Close(); err != ErrWindowClosed {
		t.Fatalf("second Close = %v, want ErrWindowClosed", err)
	}
}

func TestOnPageLoadFires(t *testing.T) {
	win, err := NewWindow(WindowOptions{})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	defer win.Close()

	started := make(chan string, 1)
	finished := make(chan string, 1)
	err = win.On(func(h *EventHandlers) {
		h.OnPageLoad = func(done bool, url string) {
			if done {
				finished <- url
			} else {
				started <- url
			}
		}
	})
	if err != nil {
		t.Fatalf("On: %v", err)
	}

	if err := win.LoadURL("https://example.com"); err != nil {
		t.Fatalf("LoadURL: %v", err)
	}

	select {
	case u := <-started:
		if u != "https://example.com" {
			t.Errorf("OnPageLoad(started) url = %q", u)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for page load start")
	}
	select {
	case u := <-finished:
		if u != "https://example.com" {
			t.Errorf("OnPageLoad(finished) url = %q", u)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for page load finish")
	}
}

func TestOnCloseFiresExactlyOnce(t *testing.T) {
	win, err := NewWindow(WindowOptions{})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	calls := make(chan struct{}, 4)
	if err := win.On(func(h *EventHandlers) { h.OnClose = func() { calls <- struct{}{} } }); err != nil {
		t.Fatalf("On: %v", err)
	}

	if err := win.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnClose")
	}
	select {
	case <-calls:
		t.Fatal("OnClose fired more than once")
	case <-time.After(100 * time.Millisecond):
	}
}

// An engine-driven close (the user closing the OS window, or the webview
// crashing) reaches the manager through onClosed directly, never through
// NativeWindow.Close. The local closed flag never sees this, so checkOpen
// must also consult the manager's registry.
func TestEngineDrivenCloseRejectsFurtherCalls(t *testing.T) {
	win, err := NewWindow(WindowOptions{})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	win.m.onClosed(win.id)

	if err := win.SetTitle("x"); err != ErrWindowClosed {
		t.Fatalf("SetTitle after engine-driven close = %v, want ErrWindowClosed", err)
	}
	if _, err := win.GetCookies(""); err != ErrWindowClosed {
		t.Fatalf("GetCookies after engine-driven close = %v, want ErrWindowClosed", err)
	}
}

// A command enqueued for a window just before the engine reports it
// closed must be dropped at drain time rather than silently applied to a
// window the registry no longer knows about.
func TestDrainDropsCommandsForEngineClosedWindow(t *testing.T) {
	win, err := NewWindow(WindowOptions{})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	win.m.enqueue(command{id: win.id, kind: cmdSetTitle, str: "queued-before-close"})
	win.m.onClosed(win.id)

	pending := win.m.drain()
	for _, c := range pending {
		if c.id == win.id {
			t.Fatalf("drain kept a non-close command for a closed window: %+v", c)
		}
	}
}

func TestGetCookiesResolves(t *testing.T) {
	win, err := NewWindow(WindowOptions{})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	defer win.Close()

	fut, err := win.GetCookies("")
	if err != nil {
		t.Fatalf("GetCookies: %v", err)
	}

	select {
	case <-fut.Done():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cookie future")
	}
	if _, err := fut.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

// The fake adapter resolves GetCookies synchronously within the tick that
// issues it, so there's no real window in which a request is still
// outstanding when the owning window closes. Exercise
// failOutstandingCookies directly instead, the way the manager itself
// invokes it from onClosed.
func TestFailOutstandingCookiesResolvesWithError(t *testing.T) {
	win, err := NewWindow(WindowOptions{})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	defer win.Close()

	fut := newCookiesFuture(win.id)
	win.m.cookieMu.Lock()
	win.m.cookieFut["test-request"] = fut
	win.m.cookieMu.Unlock()

	win.m.failOutstandingCookies(win.id)

	select {
	case <-fut.Done():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cookie future to settle")
	}
	if _, err := fut.Wait(); err == nil {
		t.Fatal("expected an error once the window closed mid-request")
	}
}
