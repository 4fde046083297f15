package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/dashdoc"
	"github.com/klauspost/compress/zstd"
)

var _ dashdoc.Fetcher = (*CachingFetcher)(nil)

// CachingFetcher serves TOC documents from a directory of zstd-compressed
// responses, fetching and storing those it does not have.
type CachingFetcher struct {
	next dashdoc.Fetcher
	dir  string
}

// NewCachingFetcher returns a CachingFetcher storing responses in dir.
func NewCachingFetcher(next dashdoc.Fetcher, dir string) *CachingFetcher {
	return &CachingFetcher{next: next, dir: dir}
}

// CachePath returns the cache file for url.
func (f *CachingFetcher) CachePath(url string) string {
	return filepath.Join(f.dir, strconv.FormatUint(xxhash.Sum64String(url), 16)+".json.zst")
}

// Fetch returns the cached response for url, or fetches and caches it.
// An unreadable cache file is treated as missing.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	p := f.CachePath(url)
	if data, err := load(p); err == nil {
		return string(data), nil
	}

	body, err := f.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := save(p, []byte(body)); err != nil {
		return "", err
	}
	return body, nil
}

// Close closes the wrapped fetcher.
func (f *CachingFetcher) Close() error {
	return f.next.Close()
}

func save(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	tmp := p + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer os.Remove(tmp)

	w, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		out.Close()
		return fmt.Errorf("writing compressed data: %w", err)
	}
	if err := w.Close(); err != nil {
		out.Close()
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	return os.Rename(tmp, p)
}

func load(p string) ([]byte, error) {
	in, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r, err := zstd.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", p, err)
	}
	return data, nil
}
