package token

import (
	"testing"

	"sjsage522/jobworker/config"

	"github.com/stretchr/testify/assert"
)

func TestNewBearer(t *testing.T) {
	assert.Equal(t, Credential("Bearer abc123"), NewBearer("abc123"))
	assert.Equal(t, Credential("Bearer abc123"), NewBearer("  abc123 "))
	assert.Equal(t, Credential("Bearer abc123"), NewBearer("Bearer abc123"))
	assert.Equal(t, Credential("Bearer abc123"), NewBearer("bearer abc123"))
	assert.True(t, NewBearer("").IsZero())
	assert.True(t, NewBearer("Bearer ").IsZero())
	assert.True(t, NewBearer(" bearer\t").IsZero())
	assert.Equal(t, Credential("Bearer Bearerish"), NewBearer("Bearerish"))
}

func TestCredentialRedacted(t *testing.T) {
	cred := NewBearer("eyJhbGciOiJIUzI1NiJ9.payload.signature")
	assert.Equal(t, "Bearer eyJhbG********", cred.Redacted())
	assert.NotContains(t, cred.Redacted(), "signature")
}

func TestMatchesMarker(t *testing.T) {
	assert.True(t, MatchesMarker("aws-waf-SESSION-token", "session"))
	assert.True(t, MatchesMarker("sessionToken", "Session"))
	assert.False(t, MatchesMarker("csrf", "session"))
	assert.False(t, MatchesMarker("session", ""))
}

func TestSelectCookie(t *testing.T) {
	cookies := []Cookie{
		{Name: "locale", Value: "en-GB"},
		{Name: "empty-session", Value: ""},
		{Name: "JobsSessionToken", Value: "tok-1"},
		{Name: "other_session", Value: "tok-2"},
	}

	cookie, ok := SelectCookie(cookies, "session")
	assert.True(t, ok)
	assert.Equal(t, "JobsSessionToken", cookie.Name)
	assert.Equal(t, "tok-1", cookie.Value)

	_, ok = SelectCookie(cookies[:1], "session")
	assert.False(t, ok)
}

func TestSelectHeader(t *testing.T) {
	name, value, ok := SelectHeader(map[string]string{
		"Authorization":   "Bearer auth-value",
		"x-session-token": "session-value",
	}, "session")
	assert.True(t, ok)
	assert.Equal(t, "x-session-token", name)
	assert.Equal(t, "session-value", value)

	name, value, ok = SelectHeader(map[string]string{
		"authorization": "Bearer auth-value",
		"accept":        "application/json",
	}, "session")
	assert.True(t, ok)
	assert.Equal(t, "authorization", name)
	assert.Equal(t, "Bearer auth-value", value)

	_, _, ok = SelectHeader(map[string]string{"accept": "*/*"}, "session")
	assert.False(t, ok)
}

func TestNewProvider(t *testing.T) {
	cfg := config.LoadConfig()

	cfg.TokenStrategy = config.StrategyHTTP
	assert.IsType(t, &HTTPProvider{}, NewProvider(cfg))

	cfg.TokenStrategy = config.StrategyHeader
	p, ok := NewProvider(cfg).(*ChromeProvider)
	assert.True(t, ok)
	assert.Equal(t, ModeHeader, p.opts.Mode)

	cfg.TokenStrategy = config.StrategyCookie
	p, ok = NewProvider(cfg).(*ChromeProvider)
	assert.True(t, ok)
	assert.Equal(t, ModeCookie, p.opts.Mode)
}
