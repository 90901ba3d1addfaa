// Package bridge renders the document-start script installed into every
// page: the frozen window.ipc/window.__channel__ globals and the
// prototype-hardened message dispatcher that the Typed Channel talks to.
package bridge

import (
	"bytes"
	"fmt"
	"text/template"
)

// DefaultMaxMessageSize is the default cap on a decoded raw message,
// matching the Typed Channel's own default so client and host agree
// without either side needing to be told the other's configuration.
const DefaultMaxMessageSize = 1048576

// Options parameterizes one rendering of the client bundle.
type Options struct {
	// Prefix is the channel-id prefix prepended to every $ch this
	// client encodes, or "" for no namespacing.
	Prefix string

	// MaxMessageSize caps the length of a raw message this client will
	// attempt to decode. Zero means DefaultMaxMessageSize.
	MaxMessageSize int
}

// Render produces the JS bundle for opts. The output is plain JavaScript
// text — it must never be HTML-escaped, which is why this uses
// text/template rather than html/template.
func Render(opts Options) (string, error) {
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultMaxMessageSize
	}
	var buf bytes.Buffer
	if err := bundleTemplate.Execute(&buf, opts); err != nil {
		return "", fmt.Errorf("bridge: render client bundle: %w", err)
	}
	return buf.String(), nil
}

var bundleTemplate = template.Must(template.New("bridge").Parse(bundleSource))
