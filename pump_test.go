package natview

import (
	"testing"
	"time"
)

func TestNavigationBlockedNotifiesHandler(t *testing.T) {
	win, err := NewWindow(WindowOptions{AllowedHosts: []string{"example.com"}})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	defer win.Close()

	blocked := make(chan string, 1)
	if err := win.On(func(h *EventHandlers) {
		h.OnNavigationBlocked = func(url string) { blocked <- url }
	}); err != nil {
		t.Fatalf("On: %v", err)
	}

	e := win.m.entry(win.id)
	if e == nil {
		t.Fatal("expected a live window entry")
	}
	allowed := win.m.onNavigation(win.id, "https://not-allowed.example.net")
	if allowed {
		t.Fatal("expected navigation to a disallowed host to be rejected")
	}

	select {
	case u := <-blocked:
		if u != "https://not-allowed.example.net" {
			t.Errorf("OnNavigationBlocked url = %q", u)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnNavigationBlocked")
	}
}

func TestNavigationAllowedHostDoesNotNotifyHandler(t *testing.T) {
	win, err := NewWindow(WindowOptions{AllowedHosts: []string{"example.com"}})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	defer win.Close()

	blocked := make(chan string, 1)
	if err := win.On(func(h *EventHandlers) {
		h.OnNavigationBlocked = func(url string) { blocked <- url }
	}); err != nil {
		t.Fatalf("On: %v", err)
	}

	if !win.m.onNavigation(win.id, "https://example.com/page") {
		t.Fatal("expected navigation to an allowed host to be permitted")
	}

	select {
	case u := <-blocked:
		t.Fatalf("OnNavigationBlocked fired unexpectedly for %q", u)
	case <-time.After(100 * time.Millisecond):
	}
}
