package helpers

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most n bytes, appending "..." when cut. The cut
// never splits a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// Redact keeps the first n characters of a secret and masks the rest.
func Redact(secret string, n int) string {
	if len(secret) <= n {
		return strings.Repeat("*", len(secret))
	}
	return secret[:n] + strings.Repeat("*", 8)
}

// Origin returns scheme://host of rawURL, or "" if it cannot be parsed.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
