package channel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeting struct {
	Name string `json:"name"`
}

func TestJSONSchemaRoundTrip(t *testing.T) {
	s := JSON[greeting]()
	v, err := s.SafeParse(map[string]any{"name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, greeting{Name: "ada"}, v)
}

func TestJSONSchemaRejectsMismatchedShape(t *testing.T) {
	s := JSON[int]()
	_, err := s.SafeParse(map[string]any{"name": "ada"})
	assert.Error(t, err)
}

func TestSchemaFuncAdaptsPlainFunction(t *testing.T) {
	var called bool
	s := SchemaFunc[int](func(data any) (int, error) {
		called = true
		n, ok := data.(float64)
		if !ok {
			return 0, errors.New("not a number")
		}
		return int(n), nil
	})
	v, err := s.SafeParse(float64(42))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, called)
}

func TestSchemaMapDescribeCoversAllEntries(t *testing.T) {
	m := SchemaMap{
		"greet": Of(JSON[greeting]()),
		"ping":  Of(JSON[Void]()),
	}
	descs := Describe(m)
	assert.Len(t, descs, 2)
	assert.Contains(t, descs, "greet")
	assert.Contains(t, descs, "ping")
}

func TestSchemaMapTypeErasedParseDispatchesByKey(t *testing.T) {
	m := SchemaMap{"greet": Of(JSON[greeting]())}
	v, err := m["greet"].parse(map[string]any{"name": "lin"})
	require.NoError(t, err)
	assert.Equal(t, greeting{Name: "lin"}, v)
}
