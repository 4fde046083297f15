package fs_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fwojciec/dashdoc"
	"github.com/fwojciec/dashdoc/fs"
	"github.com/fwojciec/dashdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tocURL = "https://learn.microsoft.com/en-us/windows/win32/api/toc.json"

func TestCachingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches once and serves the cache afterwards", func(t *testing.T) {
		t.Parallel()

		var calls int
		next := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				calls++
				return `{"items":[]}`, nil
			},
		}
		f := fs.NewCachingFetcher(next, t.TempDir())

		first, err := f.Fetch(context.Background(), tocURL)
		require.NoError(t, err)
		second, err := f.Fetch(context.Background(), tocURL)
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.Equal(t, first, second)
		assert.True(t, strings.HasSuffix(f.CachePath(tocURL), ".json.zst"))
		_, err = os.Stat(f.CachePath(tocURL))
		assert.NoError(t, err)
	})

	t.Run("keys the cache by URL", func(t *testing.T) {
		t.Parallel()

		f := fs.NewCachingFetcher(&mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return url, nil
			},
		}, t.TempDir())

		a, err := f.Fetch(context.Background(), tocURL)
		require.NoError(t, err)
		b, err := f.Fetch(context.Background(), tocURL+"?view=x")
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
		assert.NotEqual(t, f.CachePath(tocURL), f.CachePath(tocURL+"?view=x"))
	})

	t.Run("refetches over a corrupt cache file", func(t *testing.T) {
		t.Parallel()

		f := fs.NewCachingFetcher(&mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "fresh", nil
			},
		}, t.TempDir())
		require.NoError(t, os.WriteFile(f.CachePath(tocURL), []byte("not zstd"), 0644))

		got, err := f.Fetch(context.Background(), tocURL)

		require.NoError(t, err)
		assert.Equal(t, "fresh", got)
	})

	t.Run("does not cache failures", func(t *testing.T) {
		t.Parallel()

		f := fs.NewCachingFetcher(&mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "", dashdoc.Errorf(dashdoc.EFETCH, "HTTP 404 for %s", url)
			},
		}, t.TempDir())

		_, err := f.Fetch(context.Background(), tocURL)

		require.Error(t, err)
		assert.Equal(t, dashdoc.EFETCH, dashdoc.ErrorCode(err))
		_, statErr := os.Stat(f.CachePath(tocURL))
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
	})
}

func TestCachingFetcher_Close(t *testing.T) {
	t.Parallel()

	var closed bool
	f := fs.NewCachingFetcher(&mock.Fetcher{CloseFn: func() error {
		closed = true
		return nil
	}}, t.TempDir())

	require.NoError(t, f.Close())
	assert.True(t, closed)
}
