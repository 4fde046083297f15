package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/dashdoc"
	"github.com/fwojciec/dashdoc/bloom"
)

// Compile-time interface verification.
var _ dashdoc.TocFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO work list of nested TOC documents.
// A Bloom filter answers most "never seen" checks; an exact set confirms
// its positives so a false positive never drops a TOC document. The filter
// only short-cuts "never seen" answers; results always match the exact set.
// Once the filter is saturated the exact set answers alone.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	bloom *bloom.Filter
	seen  map[string]struct{}
	queue []dashdoc.TocRequest
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the Bloom filter.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		bloom: bloom.NewFilter(n, fpRate),
		seen:  make(map[string]struct{}),
	}
}

// Push adds a request to the back of the frontier.
// Returns false if the URL has already been queued or visited.
// URL fragments are stripped before deduplication.
func (f *Frontier) Push(req dashdoc.TocRequest) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	req.URL = stripFragment(req.URL)
	if !f.claim(req.URL) {
		return false
	}
	f.queue = append(f.queue, req)
	return true
}

// Pop returns the oldest queued request.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (dashdoc.TocRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return dashdoc.TocRequest{}, false
	}
	req := f.queue[0]
	f.queue = f.queue[1:]
	return req, true
}

// Visit marks a URL as seen without queueing it.
// Returns false if the URL was already seen.
func (f *Frontier) Visit(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claim(stripFragment(url))
}

// Len returns the number of queued requests.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been visited or queued.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenLocked(stripFragment(rawURL))
}

func (f *Frontier) claim(url string) bool {
	if f.bloom.Saturated() {
		if _, ok := f.seen[url]; ok {
			return false
		}
		f.seen[url] = struct{}{}
		return true
	}
	if f.bloom.TestAndAdd(url) {
		if _, ok := f.seen[url]; ok {
			return false
		}
	}
	f.seen[url] = struct{}{}
	return true
}

func (f *Frontier) seenLocked(url string) bool {
	if !f.bloom.Saturated() && !f.bloom.Test(url) {
		return false
	}
	_, ok := f.seen[url]
	return ok
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
