package channel

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// RegisterHandlers registers every exported method of obj as a handler for
// the event named by its snake_case method name, e.g. GetUserByID binds
// "get_user_by_id". A method must take zero or one argument and return
// nothing, a single error, or nothing at all — anything else is skipped.
// A method whose event name has no schema entry is skipped, not an error:
// obj is free to expose methods the channel's Schemas doesn't cover.
//
// Returns the event names actually bound, or an error when no method
// matched a schema entry. Errors returned by a bound method during
// dispatch are logged, not propagated.
func RegisterHandlers(c *Channel, obj any) ([]string, error) {
	v := reflect.ValueOf(obj)
	t := v.Type()

	var bound []string
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if !method.IsExported() {
			continue
		}
		mtype := method.Func.Type() // receiver is argument 0

		var argType reflect.Type
		switch mtype.NumIn() {
		case 1: // receiver only
		case 2:
			argType = mtype.In(1)
		default:
			continue
		}
		if !validReturn(mtype) {
			continue
		}

		name := camelToSnake(method.Name)
		if _, ok := c.schemas[name]; !ok {
			continue
		}

		fn := v.Method(i)
		entry := handlerEntry{
			id: fn.Pointer(),
			call: func(value any) {
				var args []reflect.Value
				if argType != nil {
					arg := reflect.ValueOf(value)
					if !arg.IsValid() {
						arg = reflect.Zero(argType)
					}
					args = []reflect.Value{arg}
				}
				out := fn.Call(args)
				if len(out) == 1 && !out[0].IsNil() {
					c.log.Error("channel handler returned error", "type", name, "error", out[0].Interface())
				}
			},
		}

		c.mu.Lock()
		c.handlers[name] = append(c.handlers[name], entry)
		c.mu.Unlock()
		bound = append(bound, name)
	}

	if len(bound) == 0 {
		return nil, fmt.Errorf("channel: no exported method of %T matched a schema entry", obj)
	}
	return bound, nil
}

func validReturn(mtype reflect.Type) bool {
	switch mtype.NumOut() {
	case 0:
		return true
	case 1:
		return mtype.Out(0).Implements(errorInterface)
	default:
		return false
	}
}

var errorInterface = reflect.TypeOf((*error)(nil)).Elem()

// camelToSnake converts a CamelCase name to snake_case for event names,
// e.g. "GetUserByID" -> "get_user_by_id".
func camelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				if unicode.IsLower(prev) {
					b.WriteRune('_')
				} else if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
