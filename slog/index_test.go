package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/dashdoc"
	"github.com/fwojciec/dashdoc/mock"
	dashslog "github.com/fwojciec/dashdoc/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingIndexStore_InsertEntry(t *testing.T) {
	t.Parallel()

	entry := &dashdoc.IndexEntry{Name: "Adsprop.h header", Type: dashdoc.TypeFile, Path: "adsprop/index.html"}

	t.Run("logs duplicates at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.IndexStore{
			InsertEntryFn: func(ctx context.Context, e *dashdoc.IndexEntry) (bool, error) {
				return false, nil
			},
		}

		ok, err := dashslog.NewLoggingIndexStore(inner, logger).InsertEntry(context.Background(), entry)

		require.NoError(t, err)
		assert.False(t, ok)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "duplicate index entry")
		assert.Contains(t, output, "type=File")
	})

	t.Run("hides debug output at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.IndexStore{
			InsertEntryFn: func(ctx context.Context, e *dashdoc.IndexEntry) (bool, error) {
				return true, nil
			},
		}

		ok, err := dashslog.NewLoggingIndexStore(inner, logger).InsertEntry(context.Background(), entry)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, buf.String())
	})

	t.Run("logs errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.IndexStore{
			InsertEntryFn: func(ctx context.Context, e *dashdoc.IndexEntry) (bool, error) {
				return false, errors.New("disk full")
			},
		}

		_, err := dashslog.NewLoggingIndexStore(inner, logger).InsertEntry(context.Background(), entry)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})
}

func TestLoggingIndexStore_Close(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	closed := false
	inner := &mock.IndexStore{CloseFn: func() error {
		closed = true
		return nil
	}}

	err := dashslog.NewLoggingIndexStore(inner, logger).Close()

	require.NoError(t, err)
	assert.True(t, closed)
	assert.Contains(t, buf.String(), "close index")
}

func TestLoggingIndexStore_Abort(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	aborted := false
	inner := &mock.IndexStore{AbortFn: func() error {
		aborted = true
		return nil
	}}

	err := dashslog.NewLoggingIndexStore(inner, logger).Abort()

	require.NoError(t, err)
	assert.True(t, aborted)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "abort index")
}
