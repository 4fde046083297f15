package mock

import (
	"context"

	"github.com/fwojciec/dashdoc"
)

var _ dashdoc.EntryWriter = (*EntryWriter)(nil)

// EntryWriter is a mock implementation of dashdoc.EntryWriter.
type EntryWriter struct {
	WriteEntryFn func(ctx context.Context, name string, data []byte) error
}

func (w *EntryWriter) WriteEntry(ctx context.Context, name string, data []byte) error {
	return w.WriteEntryFn(ctx, name, data)
}

var _ dashdoc.Archive = (*Archive)(nil)

// Archive is a mock implementation of dashdoc.Archive.
type Archive struct {
	WriteEntryFn func(ctx context.Context, name string, data []byte) error
	CloseFn      func() error
}

func (a *Archive) WriteEntry(ctx context.Context, name string, data []byte) error {
	return a.WriteEntryFn(ctx, name, data)
}

func (a *Archive) Close() error {
	return a.CloseFn()
}

var _ dashdoc.IndexStore = (*IndexStore)(nil)

// IndexStore is a mock implementation of dashdoc.IndexStore.
type IndexStore struct {
	InsertEntryFn func(ctx context.Context, e *dashdoc.IndexEntry) (bool, error)
	CloseFn       func() error
	AbortFn       func() error
}

func (s *IndexStore) InsertEntry(ctx context.Context, e *dashdoc.IndexEntry) (bool, error) {
	return s.InsertEntryFn(ctx, e)
}

func (s *IndexStore) Close() error {
	return s.CloseFn()
}

func (s *IndexStore) Abort() error {
	return s.AbortFn()
}
