// Package bundle assembles crawled doc sources into a docset: the
// materialized directory, the search index, and the packaged archive.
package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/fwojciec/dashdoc"
)

// Assembler writes docsets through the root entry interfaces.
type Assembler struct {
	Manifest dashdoc.ManifestEncoder
	Logger   *slog.Logger
}

// NewAssembler returns an Assembler encoding manifests with enc.
func NewAssembler(enc dashdoc.ManifestEncoder, logger *slog.Logger) *Assembler {
	return &Assembler{Manifest: enc, Logger: logger}
}

// Materialize writes the icon, the manifest, every TOC tree, and the theme
// assets of the docset as bundle-relative entries.
func (a *Assembler) Materialize(ctx context.Context, w dashdoc.EntryWriter, set *dashdoc.DocSet) error {
	defer func(begin time.Time) {
		a.Logger.Info("materialized", "docset", set.Title, "duration", time.Since(begin))
	}(time.Now())
	return a.writeBundle(ctx, w, "", set)
}

// BuildIndex inserts one row per node of every TOC tree and closes the
// store. On failure the store is aborted instead, so no partial index is
// kept. It returns the number of rows inserted.
func (a *Assembler) BuildIndex(ctx context.Context, s dashdoc.IndexStore, set *dashdoc.DocSet) (int, error) {
	var total int
	for _, src := range set.Sources {
		for _, tree := range src.Forest.Trees() {
			n, err := dashdoc.IndexTree(ctx, s, src.Forest, tree.ID)
			if err != nil {
				_ = s.Abort()
				return total, fmt.Errorf("index %s: %w", tree.URL, err)
			}
			total += n
		}
	}
	if err := s.Close(); err != nil {
		return total, fmt.Errorf("close index: %w", err)
	}
	a.Logger.Info("indexed", "docset", set.Title, "entries", total)
	return total, nil
}

// Package writes the whole docset into the archive under the bundle
// folder, including the index file, and closes the archive.
func (a *Assembler) Package(ctx context.Context, ar dashdoc.Archive, set *dashdoc.DocSet, index []byte) error {
	prefix := set.BundleName()
	if err := a.writeBundle(ctx, ar, prefix, set); err != nil {
		ar.Close()
		return err
	}
	if err := ar.WriteEntry(ctx, path.Join(prefix, dashdoc.IndexPath), index); err != nil {
		ar.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := ar.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	a.Logger.Info("packaged", "docset", set.Title)
	return nil
}

func (a *Assembler) writeBundle(ctx context.Context, w dashdoc.EntryWriter, prefix string, set *dashdoc.DocSet) error {
	if set.Icon == nil {
		return dashdoc.Errorf(dashdoc.ESTATE, "icon %s not fetched", set.IconURL)
	}
	if err := w.WriteEntry(ctx, path.Join(prefix, dashdoc.IconPath), set.Icon); err != nil {
		return fmt.Errorf("write icon: %w", err)
	}

	manifest, err := a.Manifest.EncodeManifest(set.Manifest())
	if err != nil {
		return err
	}
	if err := w.WriteEntry(ctx, path.Join(prefix, dashdoc.ManifestPath), manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	docs := path.Join(prefix, dashdoc.DocumentsPath)
	for _, src := range set.Sources {
		for _, tree := range src.Forest.Trees() {
			if err := dashdoc.WriteTree(ctx, w, docs, src.Forest, tree.ID); err != nil {
				return fmt.Errorf("write %s: %w", tree.URL, err)
			}
		}
		for _, asset := range src.Themes() {
			if !asset.HasContent() {
				return dashdoc.Errorf(dashdoc.ESTATE, "theme %s not fetched", asset.URL)
			}
			if err := w.WriteEntry(ctx, path.Join(docs, dashdoc.ThemeFolder, asset.Name), asset.Data); err != nil {
				return fmt.Errorf("write theme %s: %w", asset.Name, err)
			}
		}
	}
	return nil
}
