package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userService struct {
	lastGreeting greeting
	pinged       bool
}

func (s *userService) Greet(g greeting) { s.lastGreeting = g }
func (s *userService) Ping(Void)        { s.pinged = true }
func (s *userService) unexported()      {}

func TestCamelToSnake(t *testing.T) {
	cases := map[string]string{
		"Greet":      "greet",
		"GetUserByID": "get_user_by_id",
		"Ping":       "ping",
	}
	for in, want := range cases {
		assert.Equal(t, want, camelToSnake(in))
	}
}

func TestRegisterHandlersBindsExportedMethods(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{
			"greet": Of(JSON[greeting]()),
			"ping":  Of(JSON[Void]()),
		},
	})
	svc := &userService{}

	bound, err := RegisterHandlers(ch, svc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"greet", "ping"}, bound)

	ch.handleIncoming(`{"$ch":"greet","p":{"name":"ada"}}`, "https://app.example.com")
	ch.handleIncoming(`{"$ch":"ping"}`, "https://app.example.com")

	assert.Equal(t, greeting{Name: "ada"}, svc.lastGreeting)
	assert.True(t, svc.pinged)
}

func TestRegisterHandlersSkipsMethodsWithoutSchema(t *testing.T) {
	_, ch := newTestChannel(t, Options{
		Schemas: SchemaMap{"greet": Of(JSON[greeting]())},
	})
	svc := &userService{}

	bound, err := RegisterHandlers(ch, svc)
	require.NoError(t, err)
	assert.Equal(t, []string{"greet"}, bound)
}
