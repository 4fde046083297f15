// Package slog decorates dashdoc services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/dashdoc"
)

// Ensure the decorators implement their interfaces.
var (
	_ dashdoc.Fetcher       = (*LoggingFetcher)(nil)
	_ dashdoc.BinaryFetcher = (*LoggingBinaryFetcher)(nil)
)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   dashdoc.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next dashdoc.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (body string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(body),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// LoggingBinaryFetcher wraps a BinaryFetcher with logging.
type LoggingBinaryFetcher struct {
	next   dashdoc.BinaryFetcher
	logger *slog.Logger
}

// NewLoggingBinaryFetcher creates a new LoggingBinaryFetcher.
func NewLoggingBinaryFetcher(next dashdoc.BinaryFetcher, logger *slog.Logger) *LoggingBinaryFetcher {
	return &LoggingBinaryFetcher{next: next, logger: logger}
}

// FetchBinary logs the asset being fetched and delegates to the wrapped
// fetcher.
func (f *LoggingBinaryFetcher) FetchBinary(ctx context.Context, url string) (data []byte, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch asset",
			"url", url,
			"bytes", len(data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchBinary(ctx, url)
}
