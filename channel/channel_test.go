package channel

import (
	"testing"

	"github.com/natview/natview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChannel(t *testing.T, opts Options) (*natview.NativeWindow, *Channel) {
	t.Helper()
	win, err := natview.NewWindow(natview.WindowOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = win.Close() })

	ch, err := New(win, opts)
	require.NoError(t, err)
	return win, ch
}

func TestSendAndReceiveRoundTrip(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"greet": Of(JSON[greeting]())},
	})

	var got greeting
	On(ch, "greet", func(g greeting) { got = g })

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://app.example.com")

	assert.Equal(t, greeting{Name: "ada"}, got)
}

func TestHandleIncomingIgnoresUnknownEventType(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"greet": Of(JSON[greeting]())},
	})
	called := false
	On(ch, "greet", func(greeting) { called = true })

	ch.handleIncoming(`{"$ch":"unknown","p":{}}`, "https://app.example.com")

	assert.False(t, called)
}

func TestHandleIncomingEnforcesNamespacePrefix(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		ChannelID: "mychan",
		Schemas:   SchemaMap{"greet": Of(JSON[greeting]())},
	})
	called := false
	On(ch, "greet", func(greeting) { called = true })

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://app.example.com")
	assert.False(t, called, "message missing the channel prefix must be dropped")

	ch.handleIncoming(`{"$ch":"mychan:greet","p":{"name":"ada"}}`, "https://app.example.com")
	assert.True(t, called)
}

func TestHandleIncomingEnforcesTrustedOrigin(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas:        SchemaMap{"greet": Of(JSON[greeting]())},
		TrustedOrigins: []string{"https://app.example.com"},
	})
	called := false
	On(ch, "greet", func(greeting) { called = true })

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://evil.example.com")
	assert.False(t, called)

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://app.example.com/page")
	assert.True(t, called)
}

func TestHandleIncomingRateLimits(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas:   SchemaMap{"ping": Of(JSON[Void]())},
		RateLimit: 2,
	})
	count := 0
	On(ch, "ping", func(Void) { count++ })

	for i := 0; i < 5; i++ {
		ch.handleIncoming(`{"$ch":"ping"}`, "https://app.example.com")
	}
	assert.LessOrEqual(t, count, 2)
}

func TestHandleIncomingStripsPrototypePollution(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"greet": Of(JSON[greeting]())},
	})
	var got greeting
	On(ch, "greet", func(g greeting) { got = g })

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"},"__proto__":{"polluted":true}}`, "https://app.example.com")
	assert.Equal(t, greeting{Name: "ada"}, got)
}

func TestHandleIncomingVoidPayload(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"ping": Of(JSON[Void]())},
	})
	called := false
	On(ch, "ping", func(Void) { called = true })

	ch.handleIncoming(`{"$ch":"ping"}`, "https://app.example.com")
	assert.True(t, called)
}

func TestHandleIncomingInvokesValidationErrorCallback(t *testing.T) {
	var badType string
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"greet": Of(JSON[greeting]())},
		OnValidationError: func(eventType string, payload any) {
			badType = eventType
		},
	})
	On(ch, "greet", func(greeting) {})

	ch.handleIncoming(`{"$ch":"greet","p":42}`, "https://app.example.com")
	assert.Equal(t, "greet", badType)
}

func TestOnIsIdempotentByFunctionIdentity(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"greet": Of(JSON[greeting]())},
	})
	calls := 0
	handler := func(greeting) { calls++ }

	On(ch, "greet", handler)
	On(ch, "greet", handler)

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://app.example.com")
	assert.Equal(t, 1, calls)
}

func TestOffRemovesHandler(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"greet": Of(JSON[greeting]())},
	})
	calls := 0
	handler := func(greeting) { calls++ }

	On(ch, "greet", handler)
	Off(ch, "greet", handler)

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://app.example.com")
	assert.Equal(t, 0, calls)
}

func TestMaxListenersPerEventEnforced(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas:              SchemaMap{"greet": Of(JSON[greeting]())},
		MaxListenersPerEvent: 1,
	})
	var calls int
	On(ch, "greet", func(greeting) { calls++ })
	On(ch, "greet", func(greeting) { calls += 100 })

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://app.example.com")
	assert.Equal(t, 1, calls)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"greet": Of(JSON[greeting]())},
	})
	On(ch, "greet", func(greeting) { panic("boom") })

	assert.NotPanics(t, func() {
		ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://app.example.com")
	})
}
