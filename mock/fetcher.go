package mock

import (
	"context"

	"github.com/fwojciec/dashdoc"
)

var _ dashdoc.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of dashdoc.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ dashdoc.BinaryFetcher = (*BinaryFetcher)(nil)

// BinaryFetcher is a mock implementation of dashdoc.BinaryFetcher.
type BinaryFetcher struct {
	FetchBinaryFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *BinaryFetcher) FetchBinary(ctx context.Context, url string) ([]byte, error) {
	return f.FetchBinaryFn(ctx, url)
}

var _ dashdoc.ContentLoader = (*ContentLoader)(nil)

// ContentLoader is a mock implementation of dashdoc.ContentLoader.
type ContentLoader struct {
	LoadEntryFn func(ctx context.Context, name string) ([]byte, bool, error)
}

func (l *ContentLoader) LoadEntry(ctx context.Context, name string) ([]byte, bool, error) {
	return l.LoadEntryFn(ctx, name)
}
