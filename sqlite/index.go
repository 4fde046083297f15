package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fwojciec/dashdoc"
)

// Compile-time interface verification.
var _ dashdoc.IndexStore = (*IndexStore)(nil)

// IndexStore implements dashdoc.IndexStore. Rows are inserted in a single
// transaction that Close commits.
type IndexStore struct {
	db   *DB
	tx   *sql.Tx
	path string
}

// CreateIndex creates a fresh index database at path, replacing any
// existing file.
func CreateIndex(ctx context.Context, path string) (*IndexStore, error) {
	if path != ":memory:" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("removing old index: %w", err)
		}
	}

	db := NewDB(path)
	if err := db.Open(); err != nil {
		return nil, err
	}
	tx, err := db.BeginTx(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &IndexStore{db: db, tx: tx, path: path}, nil
}

// InsertEntry implements dashdoc.IndexStore. An entry equal to an existing
// row on name, type, and path is ignored.
func (s *IndexStore) InsertEntry(ctx context.Context, e *dashdoc.IndexEntry) (bool, error) {
	if s.tx == nil {
		return false, dashdoc.Errorf(dashdoc.EINVALID, "index is closed")
	}
	res, err := s.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO searchIndex (name, type, path)
		VALUES (?, ?, ?)
	`, e.Name, e.Type.String(), e.Path)
	if err != nil {
		return false, fmt.Errorf("insert %q: %w", e.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of rows in the index.
func (s *IndexStore) Count(ctx context.Context) (int, error) {
	if s.tx == nil {
		return 0, dashdoc.Errorf(dashdoc.EINVALID, "index is closed")
	}
	var n int
	err := s.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM searchIndex").Scan(&n)
	return n, err
}

// Close commits the inserted rows and closes the database.
func (s *IndexStore) Close() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// Abort rolls the inserted rows back, closes the database, and removes
// the index file.
func (s *IndexStore) Abort() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	if s.path != ":memory:" {
		if rerr := os.Remove(s.path); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) && err == nil {
			err = fmt.Errorf("removing index: %w", rerr)
		}
	}
	return err
}
