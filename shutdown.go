package natview

import (
	"context"

	"github.com/natview/natview/internal/platform"
	"golang.org/x/sync/errgroup"
)

// Shutdown closes every open window and waits for the pump goroutine and
// any outstanding GetCookies futures to settle, or for ctx to expire.
// Safe to call with no windows open; it then only waits for futures left
// over from windows that already closed on their own.
func Shutdown(ctx context.Context) error {
	m := getManager()
	if m.adapterErr != nil {
		return nil
	}

	m.mu.Lock()
	windowIDs := make([]platform.WindowID, 0, len(m.windows))
	for id := range m.windows {
		windowIDs = append(windowIDs, id)
	}
	m.mu.Unlock()

	for _, id := range windowIDs {
		m.enqueue(command{id: id, kind: cmdClose})
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m.pumpMu.Lock()
		done := m.pumpDone
		running := m.pumpRunning
		m.pumpMu.Unlock()
		if !running || done == nil {
			return nil
		}
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	m.cookieMu.Lock()
	futures := make([]*CookiesFuture, 0, len(m.cookieFut))
	for _, fut := range m.cookieFut {
		futures = append(futures, fut)
	}
	m.cookieMu.Unlock()

	for _, fut := range futures {
		fut := fut
		g.Go(func() error {
			select {
			case <-fut.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	return g.Wait()
}
