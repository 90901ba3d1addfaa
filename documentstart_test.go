package natview

import (
	"strings"
	"testing"
)

func TestComposeBaseDocumentStartIncludesCSPWhenSet(t *testing.T) {
	script := composeBaseDocumentStart(WindowOptions{CSP: "default-src 'self'"})
	if !strings.Contains(script, "Content-Security-Policy") {
		t.Error("expected a CSP meta tag installer when CSP is set")
	}
}

func TestComposeBaseDocumentStartOmitsCSPWhenUnset(t *testing.T) {
	script := composeBaseDocumentStart(WindowOptions{})
	if strings.Contains(script, "Content-Security-Policy") {
		t.Error("expected no CSP installer when CSP is unset")
	}
}

func TestComposeBaseDocumentStartBlocksGeolocationByDefault(t *testing.T) {
	script := composeBaseDocumentStart(WindowOptions{})
	if !strings.Contains(script, "delete navigator.geolocation") {
		t.Error("expected geolocation to be stripped when AllowGeolocation is false")
	}
}

func TestComposeBaseDocumentStartAllowsGeolocationWhenEnabled(t *testing.T) {
	script := composeBaseDocumentStart(WindowOptions{AllowGeolocation: true})
	if strings.Contains(script, "delete navigator.geolocation") {
		t.Error("expected geolocation to be left alone when AllowGeolocation is true")
	}
}

func TestComposeBaseDocumentStartGuardsGetUserMedia(t *testing.T) {
	script := composeBaseDocumentStart(WindowOptions{})
	if !strings.Contains(script, "getUserMedia") {
		t.Error("expected a getUserMedia guard when camera/mic are both disallowed")
	}
}

func TestComposeBaseDocumentStartAlwaysBlocksWindowOpen(t *testing.T) {
	script := composeBaseDocumentStart(WindowOptions{})
	if !strings.Contains(script, "window.open=function(){return null;};") {
		t.Error("expected window.open to always be neutralized")
	}
}
