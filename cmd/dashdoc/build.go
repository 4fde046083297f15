package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/dashdoc"
	"github.com/fwojciec/dashdoc/bundle"
	"github.com/fwojciec/dashdoc/crawl"
	"github.com/fwojciec/dashdoc/fs"
	dashslog "github.com/fwojciec/dashdoc/slog"
	"github.com/fwojciec/dashdoc/sqlite"
	"github.com/fwojciec/dashdoc/tarball"
	"golang.org/x/sync/errgroup"
)

// Builder turns one docset configuration into a materialized bundle
// directory and a packaged archive under Output.
type Builder struct {
	Engine    *crawl.Engine
	Assembler *bundle.Assembler
	Output    string
	Jobs      int
	Logger    *slog.Logger
}

// Report summarizes one docset build.
type Report struct {
	Title   string
	Tocs    int
	Pages   int
	Reused  int
	Loaded  int
	Themes  int
	Entries int
	Archive string
}

// Build crawls every source of the docset, writes the bundle directory
// and the index, and packages the archive. Content left in the bundle
// directory by an interrupted run is reused.
func (b *Builder) Build(ctx context.Context, cfg dashdoc.DocsetConfig) (*Report, error) {
	set, err := dashdoc.NewDocSet(cfg)
	if err != nil {
		return nil, err
	}
	dir := fs.NewDir(filepath.Join(b.Output, set.Folder))
	report := &Report{Title: set.Title}

	engine := *b.Engine
	engine.Loader = dir
	for _, src := range set.Sources {
		res, err := engine.CrawlSource(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("crawl %s: %w", src.Title, err)
		}
		report.Tocs += res.Tocs
		report.Pages += res.Pages
		report.Reused += res.Reused
		report.Loaded += res.Loaded
		report.Themes += len(src.Themes())
	}
	if err := engine.FetchAssets(ctx, set); err != nil {
		return nil, err
	}

	if err := b.Assembler.Materialize(ctx, dir, set); err != nil {
		return nil, err
	}

	indexPath, err := dir.EntryPath(dashdoc.IndexPath)
	if err != nil {
		return nil, err
	}
	store, err := sqlite.CreateIndex(ctx, indexPath)
	if err != nil {
		return nil, err
	}
	report.Entries, err = b.Assembler.BuildIndex(ctx, dashslog.NewLoggingIndexStore(store, b.Logger), set)
	if err != nil {
		return nil, err
	}
	index, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	report.Archive = filepath.Join(b.Output, set.Folder+".tgz")
	ar, err := tarball.Create(report.Archive)
	if err != nil {
		return nil, err
	}
	if err := b.Assembler.Package(ctx, ar, set, index); err != nil {
		os.Remove(report.Archive)
		return nil, err
	}
	return report, nil
}

// BuildAll builds the docsets, at most Jobs at a time. The first failure
// cancels the remaining builds.
func (b *Builder) BuildAll(ctx context.Context, sets []dashdoc.DocsetConfig) ([]*Report, error) {
	reports := make([]*Report, len(sets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Jobs, 1))
	for i, cfg := range sets {
		g.Go(func() error {
			defer func(begin time.Time) {
				b.Logger.Info("build", "docset", cfg.Title, "duration", time.Since(begin))
			}(time.Now())
			r, err := b.Build(ctx, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Title, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	sets, err := c.selectDocsets(deps.Catalog)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dashdoc.ErrorMessage(err))
		return err
	}

	if err := os.MkdirAll(deps.Builder.Output, 0755); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	reports, err := deps.Builder.BuildAll(deps.Ctx, sets)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		return err
	}

	for _, r := range reports {
		fmt.Fprintf(deps.Stdout, "%s: %d tocs, %d pages fetched, %d loaded, %d reused, %d themes, %d entries\n",
			r.Title, r.Tocs, r.Pages, r.Loaded, r.Reused, r.Themes, r.Entries)
		fmt.Fprintf(deps.Stdout, "  wrote %s\n", r.Archive)
	}
	return nil
}

// selectDocsets resolves the requested names against the catalog. No
// names selects every docset.
func (c *BuildCmd) selectDocsets(cat *dashdoc.Catalog) ([]dashdoc.DocsetConfig, error) {
	if len(c.Names) == 0 {
		return cat.Docsets, nil
	}
	var sets []dashdoc.DocsetConfig
	for _, name := range c.Names {
		cfg, err := cat.Find(name)
		if err != nil {
			return nil, err
		}
		sets = append(sets, cfg)
	}
	return sets, nil
}

// errorMessage returns the message of an application error, or the full
// error text for anything else.
func errorMessage(err error) string {
	if dashdoc.ErrorCode(err) == dashdoc.EINTERNAL {
		return err.Error()
	}
	return dashdoc.ErrorMessage(err)
}
