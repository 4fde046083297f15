package dashdoc

// RewriteContext carries what a page rewrite needs to know about the page.
type RewriteContext struct {
	// PageURL is the URL the page was fetched from.
	PageURL string
	// ThemeURL resolves relative theme references.
	ThemeURL string
	// DomainURL resolves root-relative references, e.g. https://host.
	DomainURL string
	// Title and Type name the page's Dash anchor.
	Title string
	Type  EntryType
}

// RewriteResult is a rewritten page and the theme assets it references.
type RewriteResult struct {
	HTML   string
	Assets []string
}

// Rewriter prepares fetched HTML for offline viewing: it strips site
// chrome, fixes relative links to the materialized layout, and rebases
// stylesheets and scripts into the flat theme folder.
// Rewriting already rewritten HTML must not change it.
type Rewriter interface {
	Rewrite(html string, rc RewriteContext) (*RewriteResult, error)
}

// ChromeRule matches navigation chrome by tag name and attribute values.
// An empty attribute value matches any element carrying the attribute.
type ChromeRule struct {
	Tag   string
	Attrs map[string]string
}

// ChromeRules lists the navigation elements removed from every page.
var ChromeRules = []ChromeRule{
	{Tag: "header"},
	{Tag: "footer"},
	{Tag: "nav", Attrs: map[string]string{"id": "article-header-breadcrumbs"}},
	{Tag: "div", Attrs: map[string]string{"id": "left-container"}},
	{Tag: "div", Attrs: map[string]string{"id": "ms--additional-resources"}},
	{Tag: "div", Attrs: map[string]string{"id": "site-user-feedback-footer"}},
	{Tag: "div", Attrs: map[string]string{"class": "feedback-verbatim"}},
	{Tag: "div", Attrs: map[string]string{"class": "binary-rating-buttons"}},
	{Tag: "div", Attrs: map[string]string{"data-bi-name": "open-source-feedback-section"}},
	{Tag: "section", Attrs: map[string]string{"id": "site-user-feedback-footer"}},
	{Tag: "ul", Attrs: map[string]string{"class": "metadata page-metadata"}},
}

// Link kinds the documentation host marks anchors with.
const (
	LinkTypeAbsolutePath = "absolute-path"
	LinkTypeRelativePath = "relative-path"
)
