package channel

import (
	"net/url"
	"strings"
)

// normalizeOrigin implements the URL-standard origin parser: lowercase
// scheme/host, strip default ports (80 for http, 443 for https), strip
// userinfo. Entries that don't parse or yield an opaque origin (no
// scheme or no host) are reported via ok=false and dropped by the
// caller, never treated as a wildcard match.
func normalizeOrigin(raw string) (origin string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if scheme == "" || host == "" {
		return "", false
	}

	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	origin = scheme + "://" + host
	if port != "" {
		origin += ":" + port
	}
	return origin, true
}

// normalizeOriginSet normalizes every entry in raws, silently dropping
// anything that doesn't parse.
func normalizeOriginSet(raws []string) map[string]struct{} {
	out := make(map[string]struct{}, len(raws))
	for _, r := range raws {
		if o, ok := normalizeOrigin(r); ok {
			out[o] = struct{}{}
		}
	}
	return out
}
