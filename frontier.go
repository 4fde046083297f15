package dashdoc

import "context"

// TocRequest asks for the nested TOC document at URL, to be parsed as a
// tree owned by Owner.
type TocRequest struct {
	URL   string
	Owner NodeID
}

// TocFrontier is the crawl work list of nested TOC documents.
type TocFrontier interface {
	// Push queues a request.
	// Returns false if the URL has already been queued or visited.
	Push(req TocRequest) bool

	// Pop returns the oldest queued request.
	// Returns false if the frontier is empty.
	Pop() (TocRequest, bool)

	// Visit marks a URL as fetched without queueing it.
	// Returns false if the URL was already seen.
	Visit(url string) bool

	// Len returns the number of queued requests.
	Len() int

	// Seen returns true if the URL has been visited or queued.
	Seen(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
