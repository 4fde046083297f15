// Package goquery rewrites fetched documentation pages for offline use
// with PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/dashdoc"
	"golang.org/x/net/html"
)

// sourceAttr keeps the original URL of a rebased theme reference so that
// rewriting stored pages registers the same assets again.
const sourceAttr = "data-dashdoc-src"

var _ dashdoc.Rewriter = (*Rewriter)(nil)

// Rewriter implements dashdoc.Rewriter.
type Rewriter struct {
	chrome []string
}

// NewRewriter returns a Rewriter removing elements matched by rules.
func NewRewriter(rules []dashdoc.ChromeRule) *Rewriter {
	r := &Rewriter{}
	for _, rule := range rules {
		r.chrome = append(r.chrome, ruleSelector(rule))
	}
	return r
}

// ruleSelector converts a chrome rule into a CSS selector.
func ruleSelector(rule dashdoc.ChromeRule) string {
	keys := make([]string, 0, len(rule.Attrs))
	for k := range rule.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(rule.Tag)
	for _, k := range keys {
		v := rule.Attrs[k]
		if v == "" {
			b.WriteString("[" + k + "]")
			continue
		}
		b.WriteString("[" + k + "=" + quote(v) + "]")
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// Rewrite implements dashdoc.Rewriter.
func (r *Rewriter) Rewrite(page string, rc dashdoc.RewriteContext) (*dashdoc.RewriteResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, dashdoc.Errorf(dashdoc.EINVALID, "failed to parse HTML: %v", err)
	}

	themeBase, err := url.Parse(strings.TrimSuffix(rc.ThemeURL, "/") + "/")
	if err != nil {
		return nil, dashdoc.Errorf(dashdoc.EINVALID, "invalid theme URL: %v", err)
	}

	unlinkAbsolute(doc)
	for _, sel := range r.chrome {
		doc.Find(sel).Remove()
	}
	removeExternalScripts(doc)
	fixRelativeLinks(doc)
	assets := rebaseThemes(doc, themeBase, rc.DomainURL)
	addAnchor(doc, rc)

	out, err := doc.Html()
	if err != nil {
		return nil, dashdoc.Errorf(dashdoc.EINTERNAL, "failed to render HTML: %v", err)
	}
	return &dashdoc.RewriteResult{HTML: out, Assets: assets}, nil
}

// unlinkAbsolute replaces links into other documentation sets with their
// text, since they cannot resolve offline.
func unlinkAbsolute(doc *goquery.Document) {
	doc.Find(`a[data-linktype="` + dashdoc.LinkTypeAbsolutePath + `"]`).Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: s.Text()})
	})
}

func removeExternalScripts(doc *goquery.Document) {
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if isExternal(src) {
			s.Remove()
		}
	})
}

func isExternal(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.IsAbs()
}

// fixRelativeLinks points links between pages of the same set at the
// materialized files.
func fixRelativeLinks(doc *goquery.Document) {
	doc.Find(`a[data-linktype="` + dashdoc.LinkTypeRelativePath + `"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		s.SetAttr("href", LocalHref(href))
	})
}

// LocalHref maps a relative page link to the file it is stored in:
// directory links gain index.html and page links gain .html. Queries are
// dropped and fragments kept.
func LocalHref(href string) string {
	p, fragment := href, ""
	if i := strings.IndexByte(p, '#'); i >= 0 {
		p, fragment = p[:i], p[i:]
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	switch {
	case p == "" || strings.HasSuffix(p, ".html"):
	case strings.HasSuffix(p, "/"):
		p += dashdoc.IndexFileName
	default:
		p += ".html"
	}
	return p + fragment
}

// rebaseThemes points stylesheets and local scripts at the flat theme
// folder and returns the URLs of the assets they reference.
func rebaseThemes(doc *goquery.Document, themeBase *url.URL, domainURL string) []string {
	var assets []string
	seen := make(map[string]bool)
	rebase := func(s *goquery.Selection, attr string) {
		ref, ok := s.Attr(attr)
		if !ok || ref == "" || strings.HasPrefix(ref, "data:") {
			return
		}
		abs, ok := s.Attr(sourceAttr)
		if !ok {
			abs = resolveAsset(themeBase, domainURL, ref)
			if abs == "" {
				return
			}
			s.SetAttr(sourceAttr, abs)
		}
		s.SetAttr(attr, dashdoc.ThemeRef(dashdoc.ThemeName(abs)))
		if !seen[abs] {
			seen[abs] = true
			assets = append(assets, abs)
		}
	}

	doc.Find(`link[rel~="stylesheet"][href]`).Each(func(_ int, s *goquery.Selection) {
		rebase(s, "href")
	})
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		rebase(s, "src")
	})
	return assets
}

// resolveAsset returns the absolute URL of a theme reference. Root
// relative references resolve against the host, others against the theme.
func resolveAsset(themeBase *url.URL, domainURL, ref string) string {
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	if strings.HasPrefix(ref, "/") {
		return strings.TrimSuffix(domainURL, "/") + path.Clean(u.Path) + queryOf(u)
	}
	return themeBase.ResolveReference(u).String()
}

func queryOf(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	return "?" + u.RawQuery
}

// addAnchor marks the page for the viewer's per-page table of contents.
func addAnchor(doc *goquery.Document, rc dashdoc.RewriteContext) {
	if doc.Find("a.dashAnchor").Length() > 0 {
		return
	}
	doc.Find("body").First().PrependHtml(AnchorHTML(rc.Title, rc.Type))
}

// AnchorHTML returns the Dash anchor element for an entry.
func AnchorHTML(title string, t dashdoc.EntryType) string {
	name := "//apple_ref/cpp/" + t.String() + "/" + url.PathEscape(title)
	return `<a class="dashAnchor" name="` + html.EscapeString(name) + `"></a>`
}
