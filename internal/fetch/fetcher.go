package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent identifies deputes in HTTP requests.
const DefaultUserAgent = "deputes/1.0 (+https://github.com/nao1215/deputes)"

// Getter performs retrying GET requests.
// The crawler depends on this interface so tests can supply fake pages.
type Getter interface {
	Fetch(ctx context.Context, url string, p Params) Outcome
}

// Func adapts a plain function to the Getter interface.
type Func func(ctx context.Context, url string, p Params) Outcome

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, url string, p Params) Outcome {
	return f(ctx, url, p)
}

// Sleeper pauses between attempts. It returns early with an error when ctx
// is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Fetcher issues GET requests with bounded retries.
type Fetcher struct {
	// client performs single attempts; its own retry mechanism is disabled.
	client *resty.Client

	// sleep waits between attempts.
	sleep Sleeper

	// logger receives attempt traces at debug level.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger used for attempt traces.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.client.SetHeader("User-Agent", ua)
		}
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.client.SetHeaders(headers)
	}
}

// WithSleeper replaces the inter-attempt wait, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return func(f *Fetcher) {
		if s != nil {
			f.sleep = s
		}
	}
}

// New creates a Fetcher. A nil client uses a default *http.Client.
func New(client *http.Client, opts ...Option) *Fetcher {
	var rc *resty.Client
	if client != nil {
		rc = resty.NewWithClient(client)
	} else {
		rc = resty.New()
	}
	rc.SetRetryCount(0)
	rc.SetHeader("User-Agent", DefaultUserAgent)
	rc.SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	f := &Fetcher{
		client: rc,
		sleep:  sleepContext,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}
	rc.SetLogger(restyLogger{logger: f.logger})

	return f
}

// Fetch GETs url, retrying failed attempts as described by p.
// It never returns nil.
func (f *Fetcher) Fetch(ctx context.Context, url string, p Params) Outcome {
	p = p.normalize()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		f.logger.Debug("fetch attempt",
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"url", url,
		)

		status, body, err := f.attempt(ctx, url, p.Timeout)
		if err == nil {
			return Success{
				URL:      url,
				Status:   status,
				Body:     body,
				Attempts: attempt,
			}
		}

		lastErr = &TransportError{Attempt: attempt, URL: url, Status: status, Err: err}
		f.logger.Debug("fetch attempt failed",
			"attempt", attempt,
			"url", url,
			"error", err,
		)

		if attempt < p.MaxAttempts && p.Delay > 0 {
			f.logger.Debug("waiting before retry", "delay", p.Delay, "url", url)
			if err := f.sleep(ctx, p.Delay); err != nil {
				// The remaining attempts would fail on the same context.
				return Failure{
					URL:      url,
					Err:      fmt.Errorf("%w: %w", ErrExhaustedRetries, lastErr),
					Attempts: attempt,
				}
			}
		}
	}

	return Failure{
		URL:      url,
		Err:      fmt.Errorf("%w: %w", ErrExhaustedRetries, lastErr),
		Attempts: p.MaxAttempts,
	}
}

// attempt performs a single GET bounded by timeout.
func (f *Fetcher) attempt(ctx context.Context, url string, timeout time.Duration) (int, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := f.client.R().SetContext(attemptCtx).Get(url)
	if err != nil {
		return 0, nil, err
	}
	if resp.IsError() {
		return resp.StatusCode(), nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status())
	}
	return resp.StatusCode(), resp.Body(), nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// restyLogger routes resty's internal messages to slog at debug level.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "source", "resty")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "source", "resty")
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "source", "resty")
}
