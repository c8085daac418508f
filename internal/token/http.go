package token

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"sjsage522/jobworker/helpers"
	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/pkg/errors"

	"golang.org/x/net/publicsuffix"
)

// HTTPProvider harvests the session cookie with a plain HTTP request and a
// cookie jar. It only works when the site sets the cookie server side.
type HTTPProvider struct {
	pageURL string
	marker  string
	timeout time.Duration
	log     *logger.Logger
}

// NewHTTPProvider creates a cookie-jar based provider
func NewHTTPProvider(pageURL, marker string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		pageURL: pageURL,
		marker:  marker,
		timeout: timeout,
		log:     logger.ForToken("http"),
	}
}

// Acquire loads the page once and scans the resulting cookie jar
func (p *HTTPProvider) Acquire(ctx context.Context) (Credential, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return "", errors.NewToken("http", "failed to create cookie jar", err)
	}
	client := &http.Client{Jar: jar, Timeout: p.timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.pageURL, nil)
	if err != nil {
		return "", errors.NewToken("http", "failed to create request", err)
	}
	origin := helpers.Origin(p.pageURL)
	helpers.ApplyHeaders(req, helpers.BrowserHeaders("", origin+"/"))

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.NewToken("http", "failed to load search page", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	p.log.Debug().Int("status", resp.StatusCode).Msg("Loaded search page")

	var cookies []Cookie
	seen := map[string]bool{}
	for _, u := range []*url.URL{req.URL, resp.Request.URL} {
		for _, c := range jar.Cookies(u) {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value})
		}
	}

	cookie, ok := SelectCookie(cookies, p.marker)
	if !ok {
		return "", errors.NewToken("http", "no cookie name contains marker "+p.marker, nil)
	}

	p.log.Info().Str("cookie", cookie.Name).Msg("Found session cookie")
	return NewBearer(cookie.Value), nil
}
