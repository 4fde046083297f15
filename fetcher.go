package dashdoc

import "context"

// Fetcher retrieves text documents (TOC JSON and HTML pages) from URLs.
// Implementations retry transient failures and report them with ETRANSIENT
// only once their retries are exhausted.
type Fetcher interface {
	// Fetch returns the body of the document at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (string, error)

	// Close releases transport resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// BinaryFetcher retrieves raw bytes such as icons and theme assets.
type BinaryFetcher interface {
	FetchBinary(ctx context.Context, url string) ([]byte, error)
}

// ContentLoader returns content persisted by an earlier run. The bool
// result is false when nothing is stored under name.
type ContentLoader interface {
	LoadEntry(ctx context.Context, name string) ([]byte, bool, error)
}
