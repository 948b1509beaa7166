package urlutil

import (
	"net/url"

	"github.com/anvik-1/spacetime-crawler/pkg/hashutil"
)

// Normalize applies a deterministic normalization to a URL, producing the
// canonical form used as crawl identity.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Fragments are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//   - Percent-escapes are re-encoded with uppercase hex
//   - Path case and query order are preserved (they are part of identity)
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Normalize(Normalize(url)) == Normalize(url)
//   - Context-free: does not depend on crawl history
func Normalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	// Lowercase scheme and host
	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	// Remove default port if present
	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	// Remove fragment (anchor)
	canonical.Fragment = ""
	canonical.RawFragment = ""

	// Drop the raw path so String() re-encodes the parsed path, which
	// normalizes percent-escapes to uppercase hex.
	canonical.RawPath = ""

	return canonical
}

// NormalizeString parses a raw URL, normalizes it, and returns the
// canonical string form.
func NormalizeString(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	normalized := Normalize(*u)
	return normalized.String(), nil
}

// URLHash returns the 32-char hex MD5 digest of the canonical URL string.
// This is the durable identity key of a URL throughout the crawl.
func URLHash(u url.URL) string {
	canonical := Normalize(u)
	return hashutil.MD5Hex([]byte(canonical.String()))
}

// HostOf returns the lowercase netloc of the URL.
func HostOf(u url.URL) string {
	return lowerASCII(u.Host)
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
