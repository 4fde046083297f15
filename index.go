package dashdoc

import (
	"context"
	"path"
)

// IndexEntry is one row of the docset search index.
type IndexEntry struct {
	Name string
	Type EntryType
	Path string
}

// IndexStore receives search index rows. Rows are unique on name, type,
// and path; inserting a duplicate is not an error.
type IndexStore interface {
	// InsertEntry stores the entry and reports whether it was new.
	InsertEntry(ctx context.Context, e *IndexEntry) (bool, error)

	// Close commits the index and releases the store.
	Close() error

	// Abort discards the inserted rows and releases the store, leaving
	// no index behind.
	Abort() error
}

// EntryWriter persists named entries of a bundle, such as files under an
// output directory or members of an archive.
type EntryWriter interface {
	WriteEntry(ctx context.Context, name string, data []byte) error
}

// Archive is an EntryWriter that must be closed to be complete.
// Entries whose name was already written are skipped.
type Archive interface {
	EntryWriter
	Close() error
}

// WriteTree writes the content of every node of the tree under prefix.
// Nodes that share a file are written once.
func WriteTree(ctx context.Context, w EntryWriter, prefix string, f *Forest, tree TreeID) error {
	written := make(map[string]bool)
	return f.Walk(tree, func(n *Node) error {
		if !n.HasContent() {
			return Errorf(ESTATE, "%s has no content to write", f.URL(n.ID))
		}
		name := path.Join(prefix, f.File(n.ID))
		if written[name] {
			return nil
		}
		written[name] = true
		return w.WriteEntry(ctx, name, n.Content)
	})
}

// IndexTree inserts one entry per node of the tree into the store and
// returns the number of new rows.
func IndexTree(ctx context.Context, s IndexStore, f *Forest, tree TreeID) (int, error) {
	var n int
	err := f.Walk(tree, func(node *Node) error {
		ok, err := s.InsertEntry(ctx, &IndexEntry{
			Name: node.Title,
			Type: f.EntryType(node.ID),
			Path: f.File(node.ID),
		})
		if err != nil {
			return err
		}
		if ok {
			n++
		}
		return nil
	})
	return n, err
}
