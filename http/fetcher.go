// Package http provides an HTTP transport implementing dashdoc.Fetcher
// and dashdoc.BinaryFetcher for TOC documents, pages, and theme assets.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/fwojciec/dashdoc"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the crawler to documentation hosts.
const DefaultUserAgent = "dashdoc/1.0 (+https://github.com/fwojciec/dashdoc)"

// Ensure Fetcher implements the fetch interfaces at compile time.
var (
	_ dashdoc.Fetcher       = (*Fetcher)(nil)
	_ dashdoc.BinaryFetcher = (*Fetcher)(nil)
)

// Fetcher retrieves content from URLs using plain HTTP requests.
// Gateway errors, throttling, and dropped connections are reported as
// ETRANSIENT so a retrying decorator can recover from them; any other
// non-200 response is EFETCH.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the body at url as text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBinary retrieves the body at url as bytes.
func (f *Fetcher) FetchBinary(ctx context.Context, url string) ([]byte, error) {
	return f.get(ctx, url)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dashdoc.Errorf(dashdoc.EINVALID, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if isTransientStatus(resp.StatusCode) {
			return nil, dashdoc.Errorf(dashdoc.ETRANSIENT, "HTTP %d for %s", resp.StatusCode, url)
		}
		return nil, dashdoc.Errorf(dashdoc.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, url, err)
	}

	return body, nil
}

func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// classify maps a transport error to an application error. Caller
// cancellation passes through untouched.
func classify(ctx context.Context, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var netErr net.Error
	switch {
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return dashdoc.Errorf(dashdoc.ETRANSIENT, "connection failed for %s: %v", url, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return dashdoc.Errorf(dashdoc.ETRANSIENT, "timeout for %s: %v", url, err)
	}
	return dashdoc.Errorf(dashdoc.EFETCH, "request failed for %s: %v", url, err)
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
