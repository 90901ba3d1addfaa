package natview

import (
	"fmt"

	"github.com/natview/natview/internal/platform"
)

// CookieInfo mirrors one entry of the engine's cookie jar.
type CookieInfo struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	HTTPOnly bool
	Secure   bool
	SameSite string // "none" | "lax" | "strict"
	Expires  float64 // -1 for session cookies
}

// CookiesFuture resolves on the next onCookies delivery for the request
// that created it. Closing the window while a request is outstanding
// resolves the future with an error.
type CookiesFuture struct {
	windowID platform.WindowID
	done     chan struct{}
	res      []CookieInfo
	err      error
}

func newCookiesFuture(id platform.WindowID) *CookiesFuture {
	return &CookiesFuture{windowID: id, done: make(chan struct{})}
}

func (f *CookiesFuture) resolve(res []CookieInfo, err error) {
	f.res, f.err = res, err
	close(f.done)
}

// Wait blocks until the cookie jar arrives (or the window closes) and
// returns it.
func (f *CookiesFuture) Wait() ([]CookieInfo, error) {
	<-f.done
	return f.res, f.err
}

// Done exposes the completion channel for use in a select statement.
func (f *CookiesFuture) Done() <-chan struct{} { return f.done }

func (m *manager) onCookies(requestID string, records []platform.CookieRecord, err error) {
	m.cookieMu.Lock()
	fut, ok := m.cookieFut[requestID]
	if ok {
		delete(m.cookieFut, requestID)
	}
	m.cookieMu.Unlock()
	if !ok {
		return
	}
	if err != nil {
		fut.resolve(nil, err)
		return
	}
	out := make([]CookieInfo, 0, len(records))
	for _, r := range records {
		out = append(out, CookieInfo{
			Name: r.Name, Value: r.Value, Domain: r.Domain, Path: r.Path,
			HTTPOnly: r.HTTPOnly, Secure: r.Secure, SameSite: r.SameSite, Expires: r.Expires,
		})
	}
	fut.resolve(out, nil)
}

// failOutstandingCookies resolves every cookie future tied to id with an
// error once the window closes, per the concurrency model's cancellation
// rule.
func (m *manager) failOutstandingCookies(id platform.WindowID) {
	m.cookieMu.Lock()
	defer m.cookieMu.Unlock()
	for reqID, fut := range m.cookieFut {
		if fut.windowID == id {
			fut.resolve(nil, fmt.Errorf("natview: window closed while awaiting cookies: %w", ErrWindowClosed))
			delete(m.cookieFut, reqID)
		}
	}
}
