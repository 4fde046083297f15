// Package rod fetches documentation pages through a headless Chrome browser
// using go-rod/rod.
package rod

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/dashdoc"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page fetch.
const DefaultFetchTimeout = 60 * time.Second

var _ dashdoc.Fetcher = (*Fetcher)(nil)

// transientNetErrors are Chrome network errors worth retrying.
var transientNetErrors = []string{
	"net::ERR_CONNECTION_RESET",
	"net::ERR_CONNECTION_CLOSED",
	"net::ERR_CONNECTION_REFUSED",
	"net::ERR_TIMED_OUT",
	"net::ERR_NETWORK_CHANGED",
	"net::ERR_EMPTY_RESPONSE",
}

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	timeout  time.Duration
	maxPages int64
	language string
	logger   *slog.Logger
}

// WithFetchTimeout sets the timeout for a single page fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithRecycleAfter sets the number of pages after which the browser is
// restarted.
func WithRecycleAfter(n int64) Option {
	return func(c *fetcherConfig) {
		c.maxPages = n
	}
}

// WithBrowserLanguage sets the browser locale.
func WithBrowserLanguage(lang string) Option {
	return func(c *fetcherConfig) {
		c.language = lang
	}
}

// WithLogger reports browser restarts to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *fetcherConfig) {
		c.logger = logger
	}
}

// NewFetcher creates a Fetcher backed by a recycling headless browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
		language: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	bm, err := NewBrowserManager(
		WithMaxPages(cfg.maxPages),
		WithLanguage(cfg.language),
		WithManagerLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: bm, timeout: cfg.timeout}, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", dashdoc.Errorf(dashdoc.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, err := f.manager.Browser()
	if err != nil {
		return "", err
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", classify(ctx, url, err)
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", classify(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", classify(ctx, url, err)
	}
	html, err := page.HTML()
	if err != nil {
		return "", classify(ctx, url, err)
	}

	f.manager.IncrementPageCount()
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Recycles returns the number of browser restarts.
func (f *Fetcher) Recycles() int64 {
	return f.manager.Recycles()
}

// classify maps a browser failure onto a dashdoc error. Context errors are
// returned as they are.
func classify(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	for _, s := range transientNetErrors {
		if strings.Contains(msg, s) {
			return dashdoc.Errorf(dashdoc.ETRANSIENT, "navigate %s: %s", url, s)
		}
	}
	return dashdoc.Errorf(dashdoc.EFETCH, "navigate %s: %v", url, err)
}
