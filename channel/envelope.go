package channel

import "encoding/json"

// DefaultMaxMessageSize has the same value as bridge.DefaultMaxMessageSize.
// The channel passes its resolved cap to bridge.Render, so the injected
// client decodes with the same limit as the host.
const DefaultMaxMessageSize = 1048576

// encode builds the wire envelope for an outgoing message. hasPayload
// distinguishes SendVoid(type) (void payload, "p" omitted) from
// Send(type, nil) (an explicit null payload).
func encode(ch string, payload any, hasPayload bool) ([]byte, error) {
	if !hasPayload {
		return json.Marshal(struct {
			Ch string `json:"$ch"`
		}{Ch: ch})
	}
	return json.Marshal(struct {
		Ch string `json:"$ch"`
		P  any    `json:"p"`
	}{Ch: ch, P: payload})
}

// decode mirrors the injected client's _d: reject oversized input, parse,
// strip a top-level __proto__ own property, and require an object with a
// string $ch. ok is false for anything that doesn't satisfy that shape —
// callers must drop silently, never surface a parse error to the page.
func decode(raw string, maxSize int) (ch string, payload any, ok bool) {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}
	if len(raw) > maxSize {
		return "", nil, false
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return "", nil, false
	}

	obj, isObj := generic.(map[string]any)
	if !isObj {
		return "", nil, false
	}
	delete(obj, "__proto__")

	chVal, hasCh := obj["$ch"]
	chStr, isStr := chVal.(string)
	if !hasCh || !isStr {
		return "", nil, false
	}
	return chStr, obj["p"], true
}
