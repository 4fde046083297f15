package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fwojciec/dashdoc"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s, 8s, 16s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
}

// retryOptions builds retry-go options that make one initial attempt plus
// one retry per delay, retrying only transient failures.
func retryOptions(ctx context.Context, url string, delays []time.Duration, logger *slog.Logger) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(len(delays)) + 1),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return delayAfter(delays, n)
		}),
		retry.RetryIf(dashdoc.IsTransient),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if logger != nil {
				logger.Warn("retry", "url", url, "attempt", n+2, "error", err)
			}
		}),
	}
}

// delayAfter returns the wait before the retry that follows attempt n.
// retry-go numbers attempts from 1.
func delayAfter(delays []time.Duration, n uint) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	i := int(n) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(delays) {
		i = len(delays) - 1
	}
	return delays[i]
}

var _ dashdoc.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries transient failures of the wrapped Fetcher with
// bounded backoff. Other errors are returned immediately.
type RetryFetcher struct {
	fetcher dashdoc.Fetcher
	delays  []time.Duration
	logger  *slog.Logger
}

// NewRetryFetcher wraps fetcher. Nil delays selects DefaultRetryDelays.
func NewRetryFetcher(fetcher dashdoc.Fetcher, delays []time.Duration, logger *slog.Logger) *RetryFetcher {
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return &RetryFetcher{fetcher: fetcher, delays: delays, logger: logger}
}

// Fetch implements dashdoc.Fetcher.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return retry.DoWithData(func() (string, error) {
		return f.fetcher.Fetch(ctx, url)
	}, retryOptions(ctx, url, f.delays, f.logger)...)
}

// Close implements dashdoc.Fetcher.
func (f *RetryFetcher) Close() error {
	return f.fetcher.Close()
}

var _ dashdoc.BinaryFetcher = (*RetryBinaryFetcher)(nil)

// RetryBinaryFetcher is the RetryFetcher counterpart for binary content.
type RetryBinaryFetcher struct {
	fetcher dashdoc.BinaryFetcher
	delays  []time.Duration
	logger  *slog.Logger
}

// NewRetryBinaryFetcher wraps fetcher. Nil delays selects DefaultRetryDelays.
func NewRetryBinaryFetcher(fetcher dashdoc.BinaryFetcher, delays []time.Duration, logger *slog.Logger) *RetryBinaryFetcher {
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return &RetryBinaryFetcher{fetcher: fetcher, delays: delays, logger: logger}
}

// FetchBinary implements dashdoc.BinaryFetcher.
func (f *RetryBinaryFetcher) FetchBinary(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithData(func() ([]byte, error) {
		return f.fetcher.FetchBinary(ctx, url)
	}, retryOptions(ctx, url, f.delays, f.logger)...)
}
