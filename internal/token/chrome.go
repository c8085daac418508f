package token

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"sjsage522/jobworker/helpers"
	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/pkg/errors"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Mode selects where the chrome provider looks for the token
type Mode string

const (
	// ModeCookie reads the cookie jar after the page settles
	ModeCookie Mode = "cookie"
	// ModeHeader reads headers of requests the page itself issues
	ModeHeader Mode = "header"
)

// idleWindow is how long the page must stay without in-flight requests
const idleWindow = 500 * time.Millisecond

// ChromeOptions configures a ChromeProvider
type ChromeOptions struct {
	PageURL  string
	Marker   string
	Mode     Mode
	Timeout  time.Duration
	Settle   time.Duration
	ExecPath string
}

// ChromeProvider drives a headless Chrome session against the search page
// and harvests the credential from it. Every call starts and stops its own
// browser process.
type ChromeProvider struct {
	opts ChromeOptions
	log  *logger.Logger
}

// NewChromeProvider creates a browser based provider
func NewChromeProvider(opts ChromeOptions) *ChromeProvider {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.Settle <= 0 {
		opts.Settle = 5 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeCookie
	}
	return &ChromeProvider{
		opts: opts,
		log:  logger.ForToken("chrome-" + string(opts.Mode)),
	}
}

// Acquire navigates to the page, waits for the network to settle and looks
// for a cookie or request header whose name contains the marker.
func (p *ChromeProvider) Acquire(ctx context.Context) (Credential, error) {
	name := "chrome-" + string(p.opts.Mode)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(helpers.RandomUserAgent()),
	)
	if p.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(p.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	tracker := newNetworkTracker(p.opts.Marker)
	chromedp.ListenTarget(browserCtx, tracker.handle)

	// Start the browser without a deadline; a timeout on the first Run
	// would tear the browser down when it fires.
	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		return "", errors.NewToken(name, "failed to start browser", err)
	}

	navCtx, navCancel := context.WithTimeout(browserCtx, p.opts.Timeout)
	err := chromedp.Run(navCtx,
		chromedp.Navigate(p.opts.PageURL),
		tracker.waitIdle(p.opts.Settle, idleWindow),
	)
	navCancel()
	if err != nil && !stderrors.Is(err, context.DeadlineExceeded) {
		return "", errors.NewToken(name, "navigation failed", err)
	}
	if err != nil {
		p.log.Warn().Dur("timeout", p.opts.Timeout).Msg("Navigation timed out, inspecting what was captured")
	}

	switch p.opts.Mode {
	case ModeHeader:
		header, value, ok := SelectHeader(tracker.capturedHeaders(), p.opts.Marker)
		if !ok {
			return "", errors.NewToken(name, "no request header matched marker "+p.opts.Marker, nil)
		}
		p.log.Info().Str("header", header).Msg("Captured token from request header")
		return NewBearer(value), nil

	default:
		readCtx, readCancel := context.WithTimeout(browserCtx, 10*time.Second)
		defer readCancel()

		var raw []*network.Cookie
		err := chromedp.Run(readCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			raw, err = network.GetCookies().Do(ctx)
			return err
		}))
		if err != nil {
			return "", errors.NewToken(name, "failed to read cookies", err)
		}

		cookies := make([]Cookie, 0, len(raw))
		for _, c := range raw {
			cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value})
		}
		cookie, ok := SelectCookie(cookies, p.opts.Marker)
		if !ok {
			return "", errors.NewToken(name, "no cookie name contains marker "+p.opts.Marker, nil)
		}
		p.log.Info().Str("cookie", cookie.Name).Int("cookies", len(cookies)).Msg("Found session cookie")
		return NewBearer(cookie.Value), nil
	}
}

// networkTracker counts in-flight requests and remembers request headers
// that could carry the token.
type networkTracker struct {
	mu           sync.Mutex
	marker       string
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	headers      map[string]string
}

func newNetworkTracker(marker string) *networkTracker {
	return &networkTracker{
		marker:       marker,
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
		headers:      make(map[string]string),
	}
}

func (t *networkTracker) handle(ev interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
		t.lastActivity = time.Now()
		if e.Request != nil {
			t.capture(e.Request.Headers)
		}
	case *network.EventRequestWillBeSentExtraInfo:
		t.capture(e.Headers)
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
		t.lastActivity = time.Now()
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
		t.lastActivity = time.Now()
	}
}

// capture keeps the first value seen for each candidate header
func (t *networkTracker) capture(headers network.Headers) {
	for name, v := range headers {
		value, ok := v.(string)
		if !ok || value == "" {
			continue
		}
		if !MatchesMarker(name, t.marker) && !MatchesMarker(name, "authorization") {
			continue
		}
		if _, exists := t.headers[name]; !exists {
			t.headers[name] = value
		}
	}
}

func (t *networkTracker) capturedHeaders() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]string, len(t.headers))
	for k, v := range t.headers {
		out[k] = v
	}
	return out
}

func (t *networkTracker) idleFor() (int, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight), time.Since(t.lastActivity)
}

// waitIdle returns once no request has been in flight for idle, or after
// settle has elapsed, whichever comes first.
func (t *networkTracker) waitIdle(settle, idle time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		deadline := time.NewTimer(settle)
		defer deadline.Stop()
		tick := time.NewTicker(100 * time.Millisecond)
		defer tick.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-deadline.C:
				return nil
			case <-tick.C:
				if n, quiet := t.idleFor(); n == 0 && quiet >= idle {
					return nil
				}
			}
		}
	}
}
