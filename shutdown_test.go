package natview

import (
	"context"
	"testing"
	"time"
)

func TestShutdownClosesOpenWindows(t *testing.T) {
	win, err := NewWindow(WindowOptions{})
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	closed := make(chan struct{})
	if err := win.On(func(h *EventHandlers) { h.OnClose = func() { close(closed) } }); err != nil {
		t.Fatalf("On: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case <-closed:
	default:
		t.Fatal("expected OnClose to have fired by the time Shutdown returned")
	}
}
