package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/dashdoc"
)

var _ dashdoc.IndexStore = (*LoggingIndexStore)(nil)

// LoggingIndexStore wraps an IndexStore with debug logging. Duplicate
// entries are logged rather than reported as errors.
type LoggingIndexStore struct {
	next   dashdoc.IndexStore
	logger *slog.Logger
}

// NewLoggingIndexStore creates a new LoggingIndexStore.
func NewLoggingIndexStore(next dashdoc.IndexStore, logger *slog.Logger) *LoggingIndexStore {
	return &LoggingIndexStore{next: next, logger: logger}
}

// InsertEntry delegates to the wrapped store and logs the outcome.
func (s *LoggingIndexStore) InsertEntry(ctx context.Context, e *dashdoc.IndexEntry) (inserted bool, err error) {
	defer func(begin time.Time) {
		switch {
		case err != nil:
			s.logger.Error("index entry",
				"name", e.Name,
				"type", e.Type.String(),
				"path", e.Path,
				"err", err,
			)
		case !inserted:
			s.logger.Debug("duplicate index entry",
				"name", e.Name,
				"type", e.Type.String(),
				"path", e.Path,
			)
		default:
			s.logger.Debug("index entry",
				"name", e.Name,
				"type", e.Type.String(),
				"path", e.Path,
				"duration", time.Since(begin),
			)
		}
	}(time.Now())
	return s.next.InsertEntry(ctx, e)
}

// Close delegates to the wrapped store.
func (s *LoggingIndexStore) Close() (err error) {
	defer func(begin time.Time) {
		s.logger.Info("close index", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Close()
}

// Abort delegates to the wrapped store.
func (s *LoggingIndexStore) Abort() (err error) {
	defer func(begin time.Time) {
		s.logger.Warn("abort index", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Abort()
}
