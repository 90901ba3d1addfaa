package channel

import (
	"crypto/rand"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/natview/natview"
	"github.com/natview/natview/bridge"
)

const nonceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Options configures a Channel. Schemas is the only required field.
type Options struct {
	Schemas SchemaMap

	// InjectClient controls whether the client bundle is installed.
	// Defaults to true; set to a pointer to false to disable entirely.
	InjectClient *bool

	OnValidationError func(eventType string, payload any)

	TrustedOrigins       []string
	MaxMessageSize       int // default DefaultMaxMessageSize
	RateLimit            int // messages/second; 0 = unlimited
	MaxListenersPerEvent int // 0 = unlimited

	// ChannelID is the literal prefix ("" for none), or the sentinel
	// "auto" to mint a random 8-character alphanumeric nonce.
	ChannelID string
}

func (o Options) injectClient() bool {
	if o.InjectClient == nil {
		return true
	}
	return *o.InjectClient
}

type handlerEntry struct {
	id   uintptr
	call func(any)
}

// Channel wraps one window and dispatches schema-validated, namespaced,
// rate- and origin-limited messages between the host and the page.
type Channel struct {
	win     *natview.NativeWindow
	schemas SchemaMap
	prefix  string

	trustedOrigins map[string]struct{}
	maxSize        int
	limiter        *rateLimiter
	maxListeners   int
	onValidation   func(string, any)
	injectClient   bool

	mu       sync.Mutex
	handlers map[string][]handlerEntry

	log *slog.Logger
}

// New initializes a channel over win per the configuration in opts:
// normalizes trusted origins, resolves the channel id, registers the
// incoming-message and page-load handlers, and injects the client script
// immediately when that's safe (no trusted-origin restriction) or defers
// it to the first trusted navigation otherwise.
func New(win *natview.NativeWindow, opts Options) (*Channel, error) {
	maxSize := opts.MaxMessageSize
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}

	prefix, err := resolveChannelID(opts.ChannelID)
	if err != nil {
		return nil, err
	}

	ch := &Channel{
		win:            win,
		schemas:        opts.Schemas,
		prefix:         prefix,
		trustedOrigins: normalizeOriginSet(opts.TrustedOrigins),
		maxSize:        maxSize,
		limiter:        newRateLimiter(opts.RateLimit),
		maxListeners:   opts.MaxListenersPerEvent,
		onValidation:   opts.OnValidationError,
		injectClient:   opts.injectClient(),
		handlers:       make(map[string][]handlerEntry),
		log:            slog.Default().With("component", "channel"),
	}

	if err := win.On(func(h *natview.EventHandlers) {
		h.OnMessage = ch.handleIncoming
		h.OnPageLoad = ch.handlePageLoad
	}); err != nil {
		return nil, err
	}

	if opts.injectClient() && len(ch.trustedOrigins) == 0 {
		if err := ch.inject(); err != nil {
			return nil, err
		}
	}

	return ch, nil
}

func resolveChannelID(id string) (string, error) {
	switch id {
	case "":
		return "", nil
	case "auto":
		return randomNonce(8)
	default:
		return id, nil
	}
}

func randomNonce(n int) (string, error) {
	b := make([]byte, n)
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	for i, v := range raw {
		b[i] = nonceAlphabet[int(v)%len(nonceAlphabet)]
	}
	return string(b), nil
}

func (c *Channel) clientScript() (string, error) {
	return bridge.Render(bridge.Options{Prefix: c.prefix, MaxMessageSize: c.maxSize})
}

func (c *Channel) inject() error {
	script, err := c.clientScript()
	if err != nil {
		return err
	}
	if err := c.win.InstallDocumentStartScript(script); err != nil {
		return err
	}
	return c.win.Unsafe().EvaluateScript(script)
}

// handlePageLoad re-injects the client on every finished navigation,
// subject to the origin check when trustedOrigins is configured.
func (c *Channel) handlePageLoad(finished bool, url string) {
	if !finished || !c.injectClient {
		return
	}
	if len(c.trustedOrigins) > 0 {
		origin, ok := normalizeOrigin(url)
		if !ok {
			return
		}
		if _, trusted := c.trustedOrigins[origin]; !trusted {
			return
		}
	}
	if err := c.inject(); err != nil {
		c.log.Error("re-inject client script failed", "error", err)
	}
}

// Send encodes and posts an outgoing message. Silently dropped if type
// is not a schema key — outgoing payloads are not validated, the schema
// only documents and types the incoming direction; this is a
// defense-in-depth gap, not an oversight.
func (c *Channel) Send(eventType string, payload any) {
	c.send(eventType, payload, true)
}

// SendVoid sends a message with no payload field at all.
func (c *Channel) SendVoid(eventType string) {
	c.send(eventType, nil, false)
}

func (c *Channel) send(eventType string, payload any, hasPayload bool) {
	if _, ok := c.schemas[eventType]; !ok {
		return
	}
	ch := eventType
	if c.prefix != "" {
		ch = c.prefix + ":" + eventType
	}
	data, err := encode(ch, payload, hasPayload)
	if err != nil {
		c.log.Error("encode outgoing message failed", "type", eventType, "error", err)
		return
	}
	if err := c.win.PostMessage(string(data)); err != nil {
		c.log.Debug("post message dropped", "type", eventType, "error", err)
	}
}

// On registers handler for eventType. Registration is Set semantics:
// registering the same function value twice leaves exactly one entry.
// Unknown event types and registrations past MaxListenersPerEvent are
// dropped silently.
func On[T any](c *Channel, eventType string, handler func(T)) {
	if _, ok := c.schemas[eventType]; !ok {
		return
	}
	id := reflect.ValueOf(handler).Pointer()
	call := func(v any) { handler(v.(T)) }

	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.handlers[eventType]
	for _, e := range set {
		if e.id == id {
			return
		}
	}
	if c.maxListeners > 0 && len(set) >= c.maxListeners {
		return
	}
	c.handlers[eventType] = append(set, handlerEntry{id: id, call: call})
}

// Off removes handler from eventType by identity.
func Off[T any](c *Channel, eventType string, handler func(T)) {
	id := reflect.ValueOf(handler).Pointer()
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.handlers[eventType]
	for i, e := range set {
		if e.id == id {
			c.handlers[eventType] = append(set[:i], set[i+1:]...)
			return
		}
	}
}

// handleIncoming implements the incoming-message pipeline in a fixed
// order: rate limit, size/parse, unprefix, origin check, listener
// lookup, allowlist, validate, dispatch.
func (c *Channel) handleIncoming(raw, sourceURL string) {
	if !c.limiter.allow(time.Now()) {
		return
	}

	ch, payload, ok := decode(raw, c.maxSize)
	if !ok {
		return
	}

	eventType := ch
	if c.prefix != "" {
		want := c.prefix + ":"
		if len(ch) <= len(want) || ch[:len(want)] != want {
			return
		}
		eventType = ch[len(want):]
	} else if ch == "" {
		return
	}

	if len(c.trustedOrigins) > 0 {
		origin, ok := normalizeOrigin(sourceURL)
		if !ok {
			return
		}
		if _, trusted := c.trustedOrigins[origin]; !trusted {
			return
		}
	}

	c.mu.Lock()
	set := append([]handlerEntry(nil), c.handlers[eventType]...)
	c.mu.Unlock()
	if len(set) == 0 {
		return
	}

	schemaEntry, ok := c.schemas[eventType]
	if !ok {
		return
	}

	value, err := schemaEntry.parse(payload)
	if err != nil {
		if c.onValidation != nil {
			c.onValidation(eventType, payload)
		}
		return
	}

	for _, e := range set {
		c.dispatchOne(e, value)
	}
}

func (c *Channel) dispatchOne(e handlerEntry, value any) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("channel handler panicked", "recover", r)
		}
	}()
	e.call(value)
}
