package wikivault

import (
	"net/url"
	"sort"
	"strings"
)

// NormalizeURL canonicalizes a URL for storage and comparison: scheme and
// host are lowercased, the fragment is dropped, a single trailing slash is
// trimmed from non-root paths, and query parameters are re-serialized sorted
// alphabetically by key (value order within a repeated key is preserved).
// Returns "" for unparseable input. NormalizeURL is idempotent.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if p := u.Path; p != "/" && strings.HasSuffix(p, "/") {
		u.Path = strings.TrimRight(p, "/")
	}

	if u.RawQuery != "" {
		u.RawQuery = sortQuery(u.Query())
	}

	return u.String()
}

// sortQuery re-encodes query values with keys in alphabetical order.
// url.Values.Encode already sorts keys; it is kept separate so the
// normalization steps read in the same order they are documented.
func sortQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// IsAllowedURL reports whether a URL may be crawled. The URL must be an
// absolute http(s) URL. An empty whitelist allows every host; otherwise the
// URL's host must equal, or be a subdomain of, one of the whitelist entries.
// A leading "www." is ignored on both sides of the comparison.
func IsAllowedURL(raw string, whitelist []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}

	if len(whitelist) == 0 {
		return true
	}

	host := stripWWW(strings.ToLower(u.Hostname()))
	for _, entry := range whitelist {
		allowed := stripWWW(strings.ToLower(strings.TrimSpace(entry)))
		if allowed == "" {
			continue
		}
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// Hostname extracts the lowercased host (without port) from a URL.
// Returns "" for unparseable input.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func stripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}
