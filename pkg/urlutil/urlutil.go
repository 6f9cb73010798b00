package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseBase parses a data-service base URL. Only absolute http(s) URLs are
// accepted; query and fragment are dropped and trailing slashes trimmed.
func ParseBase(raw string) (url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return url.URL{}, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return url.URL{}, fmt.Errorf("invalid base url %q: scheme must be http or https", raw)
	}
	if parsed.Host == "" {
		return url.URL{}, fmt.Errorf("invalid base url %q: missing host", raw)
	}

	base := *parsed
	base.Scheme = scheme
	base.Host = strings.ToLower(base.Host)
	base.Path = strings.TrimRight(base.Path, "/")
	base.RawPath = ""
	base.RawQuery = ""
	base.ForceQuery = false
	base.Fragment = ""
	base.RawFragment = ""
	return base, nil
}

// JoinName appends a single resource name as the last path segment of base.
// The name is escaped as one segment, so it may contain spaces or '~'.
//
// Properties:
//   - Pure: base is not mutated
//   - Deterministic: same inputs give the same URL
func JoinName(base url.URL, name string) url.URL {
	joined := base
	prefix := strings.TrimRight(base.Path, "/")
	joined.Path = prefix + "/" + name
	joined.RawPath = strings.TrimRight(base.EscapedPath(), "/") + "/" + url.PathEscape(name)
	return joined
}
