package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/dashdoc"
	"github.com/fwojciec/dashdoc/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexStore_InsertEntry(t *testing.T) {
	t.Parallel()

	t.Run("inserts new rows", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, err := sqlite.CreateIndex(ctx, ":memory:")
		require.NoError(t, err)
		defer s.Close()

		ok, err := s.InsertEntry(ctx, &dashdoc.IndexEntry{
			Name: "ADsPropCheckIfWritable function",
			Type: dashdoc.TypeFunction,
			Path: "adsprop/nf-adsprop-adspropcheckifwritable.html",
		})

		require.NoError(t, err)
		assert.True(t, ok)
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("ignores duplicate rows", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, err := sqlite.CreateIndex(ctx, ":memory:")
		require.NoError(t, err)
		defer s.Close()
		e := &dashdoc.IndexEntry{Name: "Adsprop.h header", Type: dashdoc.TypeFile, Path: "adsprop/index.html"}

		first, err := s.InsertEntry(ctx, e)
		require.NoError(t, err)
		second, err := s.InsertEntry(ctx, e)
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("rows differing in type are distinct", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, err := sqlite.CreateIndex(ctx, ":memory:")
		require.NoError(t, err)
		defer s.Close()

		_, err = s.InsertEntry(ctx, &dashdoc.IndexEntry{Name: "x", Type: dashdoc.TypeCategory, Path: "x.html"})
		require.NoError(t, err)
		ok, err := s.InsertEntry(ctx, &dashdoc.IndexEntry{Name: "x", Type: dashdoc.TypeFunction, Path: "x.html"})
		require.NoError(t, err)

		assert.True(t, ok)
	})

	t.Run("fails after close", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, err := sqlite.CreateIndex(ctx, ":memory:")
		require.NoError(t, err)
		require.NoError(t, s.Close())

		_, err = s.InsertEntry(ctx, &dashdoc.IndexEntry{Name: "x", Type: dashdoc.TypeCategory, Path: "x.html"})

		require.Error(t, err)
		assert.Equal(t, dashdoc.EINVALID, dashdoc.ErrorCode(err))
	})
}

func TestCreateIndex(t *testing.T) {
	t.Parallel()

	t.Run("commits rows on close", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "docSet.dsidx")
		s, err := sqlite.CreateIndex(ctx, path)
		require.NoError(t, err)
		_, err = s.InsertEntry(ctx, &dashdoc.IndexEntry{Name: "Active Directory Domain Services", Type: dashdoc.TypeCategory, Path: "_ad/index.html"})
		require.NoError(t, err)
		require.NoError(t, s.Close())

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		defer db.Close()
		var name, typ, p string
		err = db.QueryRowContext(ctx, "SELECT name, type, path FROM searchIndex").Scan(&name, &typ, &p)
		require.NoError(t, err)
		assert.Equal(t, "Active Directory Domain Services", name)
		assert.Equal(t, "Category", typ)
		assert.Equal(t, "_ad/index.html", p)
	})

	t.Run("replaces an existing index", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "docSet.dsidx")
		require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

		s, err := sqlite.CreateIndex(ctx, path)
		require.NoError(t, err)
		defer s.Close()

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestIndexStore_Abort(t *testing.T) {
	t.Parallel()

	t.Run("removes the index file", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "docSet.dsidx")
		s, err := sqlite.CreateIndex(ctx, path)
		require.NoError(t, err)
		_, err = s.InsertEntry(ctx, &dashdoc.IndexEntry{Name: "Active Directory Domain Services", Type: dashdoc.TypeCategory, Path: "_ad/index.html"})
		require.NoError(t, err)

		require.NoError(t, s.Abort())

		assert.NoFileExists(t, path)
		require.NoError(t, s.Abort())
		require.NoError(t, s.Close())
	})

	t.Run("fails inserts afterwards", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, err := sqlite.CreateIndex(ctx, ":memory:")
		require.NoError(t, err)
		require.NoError(t, s.Abort())

		_, err = s.InsertEntry(ctx, &dashdoc.IndexEntry{Name: "x", Type: dashdoc.TypeCategory, Path: "x.html"})

		assert.Equal(t, dashdoc.EINVALID, dashdoc.ErrorCode(err))
	})
}
