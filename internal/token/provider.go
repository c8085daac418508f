package token

import (
	"context"
	"sort"
	"strings"

	"sjsage522/jobworker/config"
	"sjsage522/jobworker/helpers"
)

// Scheme is prepended to every harvested value
const Scheme = "Bearer "

// Credential is an opaque bearer token. It is valid for one poll cycle only.
type Credential string

// NewBearer builds a credential from a raw cookie or header value. Values
// that already carry the scheme are not prefixed twice.
func NewBearer(value string) Credential {
	v := strings.TrimSpace(value)
	name := strings.TrimSpace(Scheme)
	if len(v) >= len(name) && strings.EqualFold(v[:len(name)], name) &&
		(len(v) == len(name) || v[len(name)] == ' ' || v[len(name)] == '\t') {
		v = strings.TrimSpace(v[len(name):])
	}
	if v == "" {
		return ""
	}
	return Credential(Scheme + v)
}

// String returns the Authorization header value
func (c Credential) String() string {
	return string(c)
}

// IsZero reports whether no credential is present
func (c Credential) IsZero() bool {
	return c == ""
}

// Redacted is safe to log
func (c Credential) Redacted() string {
	return helpers.Redact(string(c), len(Scheme)+6)
}

// Provider obtains a fresh credential. Implementations do not retry; retry
// policy belongs to the caller.
type Provider interface {
	Acquire(ctx context.Context) (Credential, error)
}

// Cookie is the subset of a browser cookie the providers inspect
type Cookie struct {
	Name  string
	Value string
}

// MatchesMarker reports whether name contains marker, ignoring case
func MatchesMarker(name, marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(marker))
}

// SelectCookie returns the first non-empty cookie whose name contains marker
func SelectCookie(cookies []Cookie, marker string) (Cookie, bool) {
	for _, c := range cookies {
		if c.Value != "" && MatchesMarker(c.Name, marker) {
			return c, true
		}
	}
	return Cookie{}, false
}

// SelectHeader picks a header value from captured request headers. A header
// whose name contains marker wins; otherwise an Authorization header is used.
func SelectHeader(headers map[string]string, marker string) (string, string, bool) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if headers[name] != "" && MatchesMarker(name, marker) {
			return name, headers[name], true
		}
	}
	for _, name := range names {
		if headers[name] != "" && strings.EqualFold(name, "authorization") {
			return name, headers[name], true
		}
	}
	return "", "", false
}

// NewProvider creates the provider selected by TOKEN_STRATEGY
func NewProvider(cfg *config.Config) Provider {
	switch cfg.TokenStrategy {
	case config.StrategyHTTP:
		return NewHTTPProvider(cfg.TokenPageURL, cfg.TokenMarker, cfg.BrowserTimeout)
	case config.StrategyHeader:
		return NewChromeProvider(ChromeOptions{
			PageURL:  cfg.TokenPageURL,
			Marker:   cfg.TokenMarker,
			Mode:     ModeHeader,
			Timeout:  cfg.BrowserTimeout,
			Settle:   cfg.BrowserSettle,
			ExecPath: cfg.ChromePath,
		})
	default:
		return NewChromeProvider(ChromeOptions{
			PageURL:  cfg.TokenPageURL,
			Marker:   cfg.TokenMarker,
			Mode:     ModeCookie,
			Timeout:  cfg.BrowserTimeout,
			Settle:   cfg.BrowserSettle,
			ExecPath: cfg.ChromePath,
		})
	}
}
