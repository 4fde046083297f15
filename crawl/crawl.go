// Package crawl drives the crawl of a documentation site's TOC forest.
// It fetches the root TOC document of each doc source, fetches and
// rewrites every page it names, and follows nested TOC documents until
// none are left.
package crawl

import (
	"context"
	"fmt"
	"path"

	"github.com/fwojciec/dashdoc"
)

// Frontier sizing for one doc source crawl.
const (
	// frontierExpectedURLs is the expected number of nested TOC documents.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the Bloom filter's false positive rate.
	frontierFalsePositiveRate = 0.01
)

// Engine crawls doc sources. It holds no per-crawl state, so one Engine
// may crawl several sources, one after another or concurrently.
type Engine struct {
	// Tocs fetches TOC documents.
	Tocs dashdoc.Fetcher
	// Pages fetches HTML pages.
	Pages dashdoc.Fetcher
	// Assets fetches the icon and theme assets.
	Assets   dashdoc.BinaryFetcher
	Rewriter dashdoc.Rewriter

	// Loader, if set, supplies content stored by an earlier run so that
	// interrupted builds resume without refetching.
	Loader dashdoc.ContentLoader

	Progress ProgressFunc
}

// Result holds the outcome of a crawl.
type Result struct {
	Tocs   int
	Pages  int
	Reused int
	Loaded int
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type   ProgressType
	Source string
	URL    string
	Queued int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressTocFetched ProgressType = iota
	ProgressPageFetched
	ProgressPageReused
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// sourceCrawl is the state of one doc source crawl.
type sourceCrawl struct {
	*Engine
	src      *dashdoc.DocSource
	forest   *dashdoc.Forest
	frontier *Frontier
	// pages maps a file path to its content so each file is fetched once.
	pages  map[string][]byte
	result Result
}

// CrawlSource fetches the source's root TOC document and every page and
// nested TOC document reachable from it. Each distinct TOC URL and each
// distinct page file is fetched at most once. Any non-transient failure
// aborts the crawl.
func (e *Engine) CrawlSource(ctx context.Context, src *dashdoc.DocSource) (*Result, error) {
	c := &sourceCrawl{
		Engine:   e,
		src:      src,
		forest:   src.Forest,
		frontier: NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate),
		pages:    make(map[string][]byte),
	}

	rootURL := src.TocURL()
	c.frontier.Visit(rootURL)
	if err := c.crawlToc(ctx, dashdoc.TocRequest{URL: rootURL, Owner: dashdoc.NoNode}); err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, ok := c.frontier.Pop()
		if !ok {
			break
		}
		// A nested TOC resolving to the source's own folder is the root
		// document again.
		if c.forest.Folder(req.Owner) == "" {
			continue
		}
		if err := c.crawlToc(ctx, req); err != nil {
			return nil, err
		}
	}

	c.report(ProgressEvent{Type: ProgressFinished})
	return &c.result, nil
}

// crawlToc fetches and parses one TOC document, crawls its tree, and
// queues the nested TOC documents it discovers.
func (c *sourceCrawl) crawlToc(ctx context.Context, req dashdoc.TocRequest) error {
	body, err := c.Tocs.Fetch(ctx, req.URL)
	if err != nil {
		return fmt.Errorf("fetch toc %s: %w", req.URL, err)
	}
	tree, err := c.forest.Parse([]byte(body), req.Owner, req.URL)
	if err != nil {
		return err
	}
	c.result.Tocs++

	found, err := c.crawlTree(ctx, tree)
	if err != nil {
		return err
	}
	for _, r := range found {
		c.frontier.Push(r)
	}
	c.report(ProgressEvent{Type: ProgressTocFetched, URL: req.URL})
	return nil
}

// crawlTree runs the per-node crawl step over every node of the tree and
// returns the nested TOC requests it discovered, deduplicated by URL in
// first-seen order.
func (c *sourceCrawl) crawlTree(ctx context.Context, tree dashdoc.TreeID) ([]dashdoc.TocRequest, error) {
	d := &discovery{
		folders: make(map[string]bool),
		urls:    make(map[string]bool),
	}
	for _, id := range c.forest.Tree(tree).Items {
		if err := c.crawlNode(ctx, id, d); err != nil {
			return nil, err
		}
	}
	return d.found, nil
}

// discovery collects nested TOC requests found in one tree.
type discovery struct {
	folders map[string]bool
	urls    map[string]bool
	found   []dashdoc.TocRequest
}

func (d *discovery) add(folder string, req dashdoc.TocRequest) {
	if d.folders[folder] || d.urls[req.URL] {
		return
	}
	d.folders[folder] = true
	d.urls[req.URL] = true
	d.found = append(d.found, req)
}

func (c *sourceCrawl) crawlNode(ctx context.Context, id dashdoc.NodeID, d *discovery) error {
	n := c.forest.Node(id)
	if err := c.ensureContent(ctx, n); err != nil {
		return err
	}
	if err := c.rewrite(n); err != nil {
		return err
	}

	if !c.forest.IsFile(id) {
		if u, ok := c.forest.TocURL(id); ok {
			d.add(c.forest.Folder(id), dashdoc.TocRequest{URL: u, Owner: id})
		}
	}

	for _, child := range n.Children {
		if err := c.crawlNode(ctx, child, d); err != nil {
			return err
		}
	}
	return nil
}

// ensureContent gives the node its page content, preferring content
// already held for the same file, then content stored by an earlier run,
// and fetching the page only when neither exists.
func (c *sourceCrawl) ensureContent(ctx context.Context, n *dashdoc.Node) error {
	if n.HasContent() {
		return nil
	}
	file := c.forest.File(n.ID)
	if content, ok := c.pages[file]; ok {
		n.Content = content
		c.result.Reused++
		c.report(ProgressEvent{Type: ProgressPageReused, URL: c.forest.URL(n.ID)})
		return nil
	}

	if c.Loader != nil {
		data, ok, err := c.Loader.LoadEntry(ctx, path.Join(dashdoc.DocumentsPath, file))
		if err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
		if ok {
			n.Content = data
			c.pages[file] = data
			c.result.Loaded++
			return nil
		}
	}

	u := c.forest.URL(n.ID)
	body, err := c.Pages.Fetch(ctx, u)
	if err != nil {
		return fmt.Errorf("fetch page %s: %w", u, err)
	}
	n.Content = []byte(body)
	c.pages[file] = n.Content
	c.result.Pages++
	c.report(ProgressEvent{Type: ProgressPageFetched, URL: u})
	return nil
}

// rewrite prepares the node's content for offline use and registers the
// theme assets it references on the source.
func (c *sourceCrawl) rewrite(n *dashdoc.Node) error {
	u := c.forest.URL(n.ID)
	if !n.HasContent() {
		return dashdoc.Errorf(dashdoc.ESTATE, "rewrite %s before fetch", u)
	}
	res, err := c.Rewriter.Rewrite(string(n.Content), dashdoc.RewriteContext{
		PageURL:   u,
		ThemeURL:  c.src.ThemeURL(),
		DomainURL: "https://" + c.src.Domain,
		Title:     n.Title,
		Type:      c.forest.EntryType(n.ID),
	})
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", u, err)
	}
	n.Content = []byte(res.HTML)
	c.pages[c.forest.File(n.ID)] = n.Content
	for _, a := range res.Assets {
		c.src.AddTheme(a)
	}
	return nil
}

func (c *sourceCrawl) report(ev ProgressEvent) {
	if c.Progress == nil {
		return
	}
	ev.Source = c.src.Title
	ev.Queued = c.frontier.Len()
	c.Progress(ev)
}
