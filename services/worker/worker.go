package worker

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"sjsage522/jobworker/config"
	"sjsage522/jobworker/helpers"
	"sjsage522/jobworker/internal/search"
	"sjsage522/jobworker/internal/token"
	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/pkg/errors"
	"sjsage522/jobworker/services/notifier"
)

// ErrAlreadyRunning is returned by Start when the loop is already active
var ErrAlreadyRunning = stderrors.New("worker already running")

// Options configures the poll-and-notify loop
type Options struct {
	// Interval between cycles after a clean, skipped or failed cycle
	Interval time.Duration
	// RetryBackoff replaces Interval after an unexpected failure
	RetryBackoff time.Duration
	// TokenAttempts bounds credential acquisition attempts per cycle
	TokenAttempts int
	// TokenRetryDelay is the pause between acquisition attempts
	TokenRetryDelay time.Duration
	// CycleTimeout bounds a whole cycle; zero disables the watchdog
	CycleTimeout time.Duration
}

// OptionsFromConfig maps the application configuration onto worker options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Interval:        cfg.PollInterval,
		RetryBackoff:    cfg.RetryBackoff,
		TokenAttempts:   cfg.TokenAttempts,
		TokenRetryDelay: cfg.TokenRetryDelay,
		CycleTimeout:    cfg.CycleTimeout,
	}
}

// CycleResult summarises one cycle
type CycleResult struct {
	Listings       int
	Notified       int
	NotifyFailures int
	Skipped        bool
}

// Stats is a read-only snapshot for the liveness endpoint
type Stats struct {
	Running   bool      `json:"running"`
	Cycles    int64     `json:"cycles"`
	Failures  int64     `json:"failures"`
	Notified  int64     `json:"notified"`
	Seen      int64     `json:"seen"`
	LastRunAt time.Time `json:"last_run_at,omitzero"`
	LastOKAt  time.Time `json:"last_ok_at,omitzero"`
	LastError string    `json:"last_error,omitempty"`
	NextRunAt time.Time `json:"next_run_at,omitzero"`
}

// Worker polls the search API and notifies new listings
type Worker struct {
	provider token.Provider
	searcher search.Searcher
	notifier notifier.Notifier
	logger   helpers.LoggerInterface
	opts     Options
	log      *logger.Logger

	// seen is touched only by the goroutine running cycles
	seen *SeenSet

	running  atomic.Bool
	cycles   atomic.Int64
	failures atomic.Int64
	notified atomic.Int64
	seenLen  atomic.Int64
	lastRun  atomic.Value // time.Time
	lastOK   atomic.Value // time.Time
	nextRun  atomic.Value // time.Time
	lastErr  atomic.Value // string

	mu     sync.Mutex
	cancel context.CancelFunc

	sleep func(ctx context.Context, d time.Duration) error
}

// NewWorker creates a new worker with an empty Seen-Set
func NewWorker(
	provider token.Provider,
	searcher search.Searcher,
	n notifier.Notifier,
	errLogger helpers.LoggerInterface,
	opts Options,
) *Worker {
	if opts.TokenAttempts <= 0 {
		opts.TokenAttempts = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 5 * time.Minute
	}

	return &Worker{
		provider: provider,
		searcher: searcher,
		notifier: n,
		logger:   errLogger,
		opts:     opts,
		log:      logger.ForWorker(),
		seen:     NewSeenSet(),
		sleep:    sleepContext,
	}
}

// Start runs cycles until ctx is cancelled or Stop is called. It returns
// nil on a clean shutdown.
func (w *Worker) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer w.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	defer cancel()

	w.log.Info().
		Dur("interval", w.opts.Interval).
		Dur("retry_backoff", w.opts.RetryBackoff).
		Msg("Worker started")

	for {
		start := time.Now()
		result, err := w.RunOnce(ctx)
		if ctx.Err() != nil {
			w.log.Info().Msg("Worker stopped")
			return nil
		}

		delay := w.nextDelay(err)
		w.nextRun.Store(time.Now().Add(delay))
		w.log.Info().
			Dur("elapsed", time.Since(start)).
			Int("listings", result.Listings).
			Int("notified", result.Notified).
			Bool("skipped", result.Skipped).
			Dur("next_in", delay).
			Msg("Cycle finished")

		if err := w.sleep(ctx, delay); err != nil {
			w.log.Info().Msg("Worker stopped")
			return nil
		}
	}
}

// Stop cancels a running Start
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
}

// RunOnce runs one guarded cycle. No panic escapes it; the returned error
// tells the scheduler how long to wait.
func (w *Worker) RunOnce(ctx context.Context) (result CycleResult, err error) {
	cycleCtx := ctx
	if w.opts.CycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, w.opts.CycleTimeout)
		defer cancel()
	}

	w.cycles.Add(1)
	w.lastRun.Store(time.Now())

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
			w.log.Error().Str("stack", string(debug.Stack())).Msg("Recovered from panic in cycle")
		}
		if err != nil && ctx.Err() == nil && stderrors.Is(cycleCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("cycle exceeded watchdog timeout %v: %v", w.opts.CycleTimeout, err)
		}
		w.record(err)
	}()

	return w.cycle(cycleCtx)
}

func (w *Worker) cycle(ctx context.Context) (CycleResult, error) {
	var result CycleResult

	cred, err := w.acquire(ctx)
	if err != nil {
		result.Skipped = true
		return result, err
	}

	listings, err := w.searcher.Search(ctx, cred)
	if err != nil {
		w.logger.LogError("search", err)
		return result, err
	}
	result.Listings = len(listings)

	for _, l := range listings {
		if l.ID == "" || !w.seen.Add(l.ID) {
			continue
		}
		w.seenLen.Store(int64(w.seen.Len()))

		w.log.Info().Str("id", l.ID).Str("title", l.Title).Msg("New listing")
		if err := w.notifier.Notify(ctx, notifier.ForListing(l)); err != nil {
			result.NotifyFailures++
			w.logger.LogError("notify", fmt.Errorf("listing %s: %w", l.ID, err))
			continue
		}
		result.Notified++
		w.notified.Add(1)
	}

	if result.Notified > 0 || result.NotifyFailures > 0 {
		w.logger.LogInfo("Found %d new listings out of %d (%d notify failures)",
			result.Notified+result.NotifyFailures, result.Listings, result.NotifyFailures)
	}

	if result.Notified > 0 {
		if t, ok := w.notifier.(notifier.Trimmer); ok {
			if err := t.TrimStreams(ctx); err != nil {
				w.logger.LogError("notify", err)
			}
		}
	}

	return result, nil
}

// acquire asks the provider for a credential, retrying with a fixed delay.
// There is no fallback credential: exhausting the attempts skips the cycle.
func (w *Worker) acquire(ctx context.Context) (token.Credential, error) {
	var lastErr error
	for attempt := 1; attempt <= w.opts.TokenAttempts; attempt++ {
		cred, err := w.provider.Acquire(ctx)
		if err == nil && cred.IsZero() {
			err = errors.NewToken("worker", "provider returned an empty credential", nil)
		}
		if err == nil {
			w.log.Debug().Str("credential", cred.Redacted()).Int("attempt", attempt).Msg("Credential acquired")
			return cred, nil
		}

		lastErr = err
		w.logger.LogError("token", fmt.Errorf("attempt %d/%d: %w", attempt, w.opts.TokenAttempts, err))
		if jobErr, ok := errors.As(err); ok && !jobErr.IsRetryable() {
			break
		}

		if attempt < w.opts.TokenAttempts {
			if err := w.sleep(ctx, w.opts.TokenRetryDelay); err != nil {
				return "", errors.NewToken("worker", "interrupted while waiting to retry", err)
			}
		}
	}

	// Every way out of here is a skipped cycle and schedules like one.
	if jobErr, ok := errors.As(lastErr); !ok || jobErr.Type != errors.ErrorTypeToken {
		lastErr = errors.NewToken("worker", "no credential this cycle", lastErr)
	}
	return "", lastErr
}

// nextDelay picks the full interval for clean or known-failure cycles and
// the short backoff for anything unexpected.
func (w *Worker) nextDelay(err error) time.Duration {
	if err == nil {
		return w.opts.Interval
	}
	jobErr, ok := errors.As(err)
	if !ok {
		return w.opts.RetryBackoff
	}
	switch jobErr.Type {
	case errors.ErrorTypeToken, errors.ErrorTypeValidation:
		return w.opts.Interval
	}
	if jobErr.IsFetchFailure() {
		return w.opts.Interval
	}
	return w.opts.RetryBackoff
}

func (w *Worker) record(err error) {
	if err == nil {
		w.lastOK.Store(time.Now())
		w.lastErr.Store("")
		return
	}
	w.failures.Add(1)
	w.lastErr.Store(err.Error())
	if _, ok := errors.As(err); !ok {
		w.logger.LogError("worker", err)
	}
}

// Stats returns a snapshot safe to call from any goroutine
func (w *Worker) Stats() Stats {
	s := Stats{
		Running:  w.running.Load(),
		Cycles:   w.cycles.Load(),
		Failures: w.failures.Load(),
		Notified: w.notified.Load(),
		Seen:     w.seenLen.Load(),
	}
	if v, ok := w.lastRun.Load().(time.Time); ok {
		s.LastRunAt = v
	}
	if v, ok := w.lastOK.Load().(time.Time); ok {
		s.LastOKAt = v
	}
	if v, ok := w.nextRun.Load().(time.Time); ok {
		s.NextRunAt = v
	}
	if v, ok := w.lastErr.Load().(string); ok {
		s.LastError = v
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
