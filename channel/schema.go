// Package channel implements the host side of the typed message channel:
// envelope encode/decode, schema-validated dispatch, origin/rate/size
// policy, channel namespacing, and client re-injection on navigation.
package channel

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// Schema is the one-method safeParse contract. Multiple schema
// libraries satisfy it by adapter; treat it as a thin capability, not a
// class hierarchy. Schemas may transform input — handlers receive
// whatever SafeParse returns, not the raw decoded value.
type Schema[T any] interface {
	SafeParse(data any) (T, error)
}

// SchemaFunc adapts a plain function to Schema.
type SchemaFunc[T any] func(data any) (T, error)

// SafeParse calls f.
func (f SchemaFunc[T]) SafeParse(data any) (T, error) { return f(data) }

// JSON builds a Schema[T] that round-trips data through encoding/json:
// marshal the generic decoded value back to bytes, then unmarshal into
// T. This is the common case — most payloads are plain JSON-shaped data
// with no extra validation beyond "does this parse as T".
func JSON[T any]() Schema[T] {
	return SchemaFunc[T](func(data any) (T, error) {
		var zero T
		raw, err := json.Marshal(data)
		if err != nil {
			return zero, fmt.Errorf("channel: re-marshal payload: %w", err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return zero, fmt.Errorf("channel: unmarshal payload: %w", err)
		}
		return v, nil
	})
}

// Void is the payload type for events that carry no data.
type Void struct{}

// entry is the type-erased form of Schema[T] stored in a SchemaMap, so
// events with different payload types can share one map.
type entry struct {
	parse func(data any) (any, error)
	rtype reflect.Type
}

// Of adapts a typed Schema[T] into the heterogeneous form a SchemaMap
// holds.
func Of[T any](s Schema[T]) entry {
	var zero T
	return entry{
		parse: func(data any) (any, error) {
			v, err := s.SafeParse(data)
			return v, err
		},
		rtype: reflect.TypeOf(zero),
	}
}

// SchemaMap maps event-type strings to schemas. Build one with Of.
type SchemaMap map[string]entry

// Describe reflects every schema's payload type into a JSON Schema
// document, purely for external tooling — safeParse never consults it.
func Describe(schemas SchemaMap) map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{}
	out := make(map[string]*jsonschema.Schema, len(schemas))
	for name, e := range schemas {
		if e.rtype == nil {
			continue
		}
		out[name] = r.ReflectFromType(e.rtype)
	}
	return out
}
