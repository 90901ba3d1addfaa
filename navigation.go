package natview

import (
	"net/url"
	"strings"
)

// internalNavigationOrigins are synthetic locations the adapter itself
// produces (an in-memory page, or the opaque origin LoadHTML content gets
// on platforms that mint one) and that are therefore never gated by
// allowedHosts regardless of configuration.
var internalNavigationOrigins = []string{"about:blank"}

// navigationAllowed implements the host-side navigation policy: reject
// data:/file:/blob: schemes outright, reject hosts that don't match any
// allowedHosts pattern (empty = unrestricted), and always allow the
// adapter's own internal/synthetic locations.
func navigationAllowed(rawURL string, allowedHosts []string) bool {
	for _, internal := range internalNavigationOrigins {
		if rawURL == internal {
			return true
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "data", "file", "blob":
		return false
	}

	if len(allowedHosts) == 0 {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, pattern := range allowedHosts {
		if hostMatchesPattern(host, pattern) {
			return true
		}
	}
	return false
}

// hostMatchesPattern matches host against pattern, where a leading "*."
// matches the suffix itself and any subdomain of it.
func hostMatchesPattern(host, pattern string) bool {
	host = strings.ToLower(host)
	pattern = strings.ToLower(pattern)
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return host == suffix || strings.HasSuffix(host, "."+suffix)
	}
	return host == pattern
}
