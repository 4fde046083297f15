package crawl

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/dashdoc"
	"golang.org/x/time/rate"
)

var _ dashdoc.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// It creates a separate rate limiter for each domain, so pages and theme
// assets served from different hosts do not slow each other down.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
// Each domain gets its own limiter with a burst of 1 (no bursting allowed).
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}

var _ dashdoc.Fetcher = (*LimitedFetcher)(nil)

// LimitedFetcher waits for the URL's host to allow a request before
// delegating to the wrapped Fetcher.
type LimitedFetcher struct {
	Fetcher dashdoc.Fetcher
	Limiter dashdoc.DomainLimiter
}

// Fetch implements dashdoc.Fetcher.
func (f *LimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := f.Limiter.Wait(ctx, host(rawURL)); err != nil {
		return "", err
	}
	return f.Fetcher.Fetch(ctx, rawURL)
}

// Close implements dashdoc.Fetcher.
func (f *LimitedFetcher) Close() error {
	return f.Fetcher.Close()
}

var _ dashdoc.BinaryFetcher = (*LimitedBinaryFetcher)(nil)

// LimitedBinaryFetcher is the LimitedFetcher counterpart for binary content.
type LimitedBinaryFetcher struct {
	Fetcher dashdoc.BinaryFetcher
	Limiter dashdoc.DomainLimiter
}

// FetchBinary implements dashdoc.BinaryFetcher.
func (f *LimitedBinaryFetcher) FetchBinary(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.Limiter.Wait(ctx, host(rawURL)); err != nil {
		return nil, err
	}
	return f.Fetcher.FetchBinary(ctx, rawURL)
}
