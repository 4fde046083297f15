// Package bloom answers "never seen" checks for crawl deduplication with
// bits-and-blooms/bloom.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a Bloom filter of URLs sized for an expected number of keys.
// Past that number its false positive rate climbs above the planned one;
// Saturated reports when that happens.
type Filter struct {
	f        *bloom.BloomFilter
	expected uint
}

// NewFilter returns a filter sized for n URLs at false positive rate fpRate.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{
		f:        bloom.NewWithEstimates(n, fpRate),
		expected: n,
	}
}

// Add adds a URL.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test reports whether the URL might have been added.
// False positives are possible; false negatives are not.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// TestAndAdd adds the URL and reports whether it might have been present
// before. A false result means the URL is certainly new.
func (f *Filter) TestAndAdd(url string) bool {
	return f.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of URLs added.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Saturated reports whether more URLs were added than the filter was
// sized for.
func (f *Filter) Saturated() bool {
	return f.EstimatedCount() > f.expected
}
