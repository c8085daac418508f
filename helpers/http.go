package helpers

import (
	"math/rand/v2"
	"net/http"
)

var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	}
)

// RandomUserAgent returns one of the known desktop browser user agents.
func RandomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// BrowserHeaders returns the headers a desktop browser sends when it lands on
// origin. referer is optional.
func BrowserHeaders(origin, referer string) map[string]string {
	headers := map[string]string{
		"User-Agent":      RandomUserAgent(),
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-GB,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
	}
	if origin != "" {
		headers["Origin"] = origin
	}
	if referer != "" {
		headers["Referer"] = referer
	}
	return headers
}

// ApplyHeaders copies headers onto an outgoing request.
func ApplyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// IsRateLimited reports whether the status code signals rate limiting.
// 430 is used by some CDNs in front of the search API.
func IsRateLimited(status int) bool {
	return status == http.StatusTooManyRequests || status == 430
}
