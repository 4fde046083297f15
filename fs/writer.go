// Package fs provides file-based storage for docset bundles.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/dashdoc"
)

// Ensure Dir implements the entry interfaces at compile time.
var (
	_ dashdoc.EntryWriter   = (*Dir)(nil)
	_ dashdoc.ContentLoader = (*Dir)(nil)
)

// Dir stores bundle entries as files under a root directory. Entries
// written by an earlier run can be loaded back, so an interrupted build
// resumes from what is on disk.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory the entries are stored under.
func (d *Dir) Root() string {
	return d.root
}

// EntryPath converts a slash-separated entry name to a path under root.
// Names that escape the root are rejected.
func (d *Dir) EntryPath(name string) (string, error) {
	clean := path.Clean(name)
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", dashdoc.Errorf(dashdoc.EINVALID, "entry name %q escapes the output directory", name)
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

// WriteEntry writes data to the named file, creating parent directories.
// A file already holding the same bytes is left untouched.
func (d *Dir) WriteEntry(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := d.EntryPath(name)
	if err != nil {
		return err
	}
	if unchanged(p, data) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating folder for %s: %w", name, err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// unchanged reports whether the file at p already holds data.
func unchanged(p string, data []byte) bool {
	info, err := os.Stat(p)
	if err != nil || info.Size() != int64(len(data)) {
		return false
	}
	existing, err := os.ReadFile(p)
	if err != nil {
		return false
	}
	return xxhash.Sum64(existing) == xxhash.Sum64(data)
}

// LoadEntry returns the content of the named file. The bool result is
// false when the file does not exist or is empty.
func (d *Dir) LoadEntry(ctx context.Context, name string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p, err := d.EntryPath(name)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	return data, true, nil
}
