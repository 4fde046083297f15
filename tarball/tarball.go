// Package tarball writes docset bundles as gzip-compressed tar archives
// using klauspost/compress.
package tarball

import (
	"archive/tar"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/dashdoc"
	"github.com/klauspost/compress/gzip"
)

// EntryMode is the permission of every archived file.
const EntryMode = 0444

var _ dashdoc.Archive = (*Writer)(nil)

// Writer implements dashdoc.Archive over a .tgz file. A name is archived
// once; later entries with the same name are skipped.
type Writer struct {
	f       *os.File
	gz      *gzip.Writer
	tw      *tar.Writer
	modTime time.Time
	written map[string]bool
	closed  bool
}

// Create creates the archive file at path, truncating any existing file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	gz := gzip.NewWriter(f)
	return &Writer{
		f:       f,
		gz:      gz,
		tw:      tar.NewWriter(gz),
		modTime: time.Now().Truncate(time.Second),
		written: make(map[string]bool),
	}, nil
}

// WriteEntry implements dashdoc.EntryWriter.
func (w *Writer) WriteEntry(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.closed {
		return dashdoc.Errorf(dashdoc.EINVALID, "archive is closed")
	}
	if w.written[name] {
		return nil
	}
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     int64(len(data)),
		Mode:     EntryMode,
		ModTime:  w.modTime,
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing header for %s: %w", name, err)
	}
	if _, err := w.tw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.written[name] = true
	return nil
}

// Close flushes the archive and closes the file. Close is safe to call
// multiple times.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.tw.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("closing tar writer: %w", err)
	}
	if err := w.gz.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("closing gzip writer: %w", err)
	}
	return w.f.Close()
}
