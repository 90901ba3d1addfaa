package natview

import "testing"

func TestNavigationAllowedUnrestricted(t *testing.T) {
	if !navigationAllowed("https://example.com/", nil) {
		t.Fatal("expected unrestricted host list to allow any https host")
	}
}

func TestNavigationAllowedRejectsDangerousSchemes(t *testing.T) {
	for _, u := range []string{"data:text/html,<h1>x</h1>", "file:///etc/passwd", "blob:abcd"} {
		if navigationAllowed(u, nil) {
			t.Fatalf("expected %q to be rejected regardless of allowedHosts", u)
		}
	}
}

func TestNavigationAllowedHostAllowlist(t *testing.T) {
	allowed := []string{"example.com", "*.trusted.io"}

	cases := map[string]bool{
		"https://example.com/path":      true,
		"https://other.com/":            false,
		"https://app.trusted.io/":       true,
		"https://trusted.io/":           true,
		"https://nottrusted.io.evil.com/": false,
	}
	for u, want := range cases {
		if got := navigationAllowed(u, allowed); got != want {
			t.Errorf("navigationAllowed(%q) = %v, want %v", u, got, want)
		}
	}
}

func TestNavigationAllowedInternalOrigins(t *testing.T) {
	if !navigationAllowed("about:blank", []string{"example.com"}) {
		t.Fatal("about:blank must always be allowed regardless of allowedHosts")
	}
}

func TestNavigationAllowedRejectsUnparsableURL(t *testing.T) {
	if navigationAllowed("://not a url", nil) {
		t.Fatal("expected an unparsable URL to be rejected")
	}
}

func TestHostMatchesPattern(t *testing.T) {
	cases := []struct {
		host, pattern string
		want          bool
	}{
		{"example.com", "example.com", true},
		{"EXAMPLE.com", "example.com", true},
		{"api.example.com", "*.example.com", true},
		{"example.com", "*.example.com", true},
		{"evilexample.com", "*.example.com", false},
		{"other.com", "example.com", false},
	}
	for _, c := range cases {
		if got := hostMatchesPattern(c.host, c.pattern); got != c.want {
			t.Errorf("hostMatchesPattern(%q, %q) = %v, want %v", c.host, c.pattern, got, c.want)
		}
	}
}
