package bridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderDefaults(t *testing.T) {
	out, err := Render(Options{})
	require.NoError(t, err)
	require.Contains(t, out, "1048576")
}

func TestRenderHardeningProperties(t *testing.T) {
	out, err := Render(Options{Prefix: "ns", MaxMessageSize: 2048})
	require.NoError(t, err)

	// Captured prototype methods, taken before any page script can run.
	for _, want := range []string{
		"Array.prototype.slice",
		"Array.prototype.filter",
		"Array.prototype.push",
		"Array.prototype.indexOf",
		"Array.prototype.splice",
		"JSON.stringify",
		"JSON.parse",
		"Object.defineProperty",
		"Object.freeze",
		"Object.create",
	} {
		require.True(t, strings.Contains(out, want), "missing captured prototype reference: %s", want)
	}

	// Every installed global uses defineProperty with writable:false,
	// configurable:false — never assign-then-freeze.
	require.GreaterOrEqual(t, strings.Count(out, "writable: false"), 4)
	require.GreaterOrEqual(t, strings.Count(out, "configurable: false"), 4)

	require.Contains(t, out, `"__native_message__"`)
	require.Contains(t, out, `"__channel__"`)
	require.Contains(t, out, `"__native_message_listeners__"`)
	require.Contains(t, out, "window.ipc")

	// Size cap substituted verbatim.
	require.Contains(t, out, "2048")

	// __proto__ stripped from decoded envelopes.
	require.Contains(t, out, "__proto__")
	require.Contains(t, out, "delete obj.__proto__")

	// Prefix substituted verbatim, quoted.
	require.Contains(t, out, `"ns"`)
}

func TestRenderEmptyPrefix(t *testing.T) {
	out, err := Render(Options{})
	require.NoError(t, err)
	require.Contains(t, out, `_pfx = ""`)
}
