package dashdoc

import (
	"path"
	"strings"
	"unicode"
)

// Default locations on the documentation host.
const (
	DefaultDomain   = "learn.microsoft.com"
	DefaultLanguage = "en-us"
	DefaultThemeURI = "_themes/docs.theme/master/en-us/_themes"
	DefaultTocURI   = "toc.json"
	DefaultIconURI  = "media/logos/logo-ms-social.png"
)

// Paths inside a docset bundle.
const (
	ManifestPath  = "Contents/Info.plist"
	IndexPath     = "Contents/Resources/docSet.dsidx"
	DocumentsPath = "Contents/Resources/Documents"
	IconPath      = "icon.png"
	ThemeFolder   = "_themes_"
	IndexFileName = "index.html"
)

// ThemeAsset is a stylesheet or script referenced by fetched pages.
type ThemeAsset struct {
	URL  string
	Name string
	Data []byte
}

// HasContent reports whether the asset has been fetched or loaded.
func (a *ThemeAsset) HasContent() bool { return a.Data != nil }

// DocSource is one crawl root of a docset.
type DocSource struct {
	Title    string
	BaseURI  string
	TocURI   string
	ThemeURI string
	Language string
	Domain   string

	// Forest holds the TOC trees discovered by the crawl.
	Forest *Forest

	themes []*ThemeAsset
	seen   map[string]int
}

// NewDocSource returns a source with defaults applied and its base and
// theme URIs normalized.
func NewDocSource(cfg SourceConfig) *DocSource {
	src := &DocSource{
		Title:    cfg.Title,
		BaseURI:  strings.Trim(cfg.BaseURI, "/"),
		TocURI:   cfg.TocURI,
		ThemeURI: strings.TrimPrefix(cfg.ThemeURI, "/"),
		Language: strings.Trim(cfg.Language, "/"),
		Domain:   cfg.Domain,
	}
	if src.TocURI == "" {
		src.TocURI = src.BaseURI + "/" + DefaultTocURI
	}
	src.TocURI = strings.TrimPrefix(src.TocURI, "/")
	if src.ThemeURI == "" {
		src.ThemeURI = DefaultThemeURI
	}
	if src.Language == "" {
		src.Language = DefaultLanguage
	}
	if src.Domain == "" {
		src.Domain = DefaultDomain
	}
	src.Forest = NewSourceForest(src)
	return src
}

// Validate returns an error if the source cannot be crawled.
func (s *DocSource) Validate() error {
	if s.Title == "" {
		return Errorf(EINVALID, "doc source title required")
	}
	if s.BaseURI == "" {
		return Errorf(EINVALID, "doc source %q: base uri required", s.Title)
	}
	return nil
}

// DomainURL returns the language root of the documentation host.
func (s *DocSource) DomainURL() string {
	return "https://" + s.Domain + "/" + s.Language
}

// BaseURL returns the URL every node path is resolved against.
func (s *DocSource) BaseURL() string {
	return s.DomainURL() + "/" + s.BaseURI
}

// TocURL returns the URL of the root TOC document. The TOC URI is
// relative to the language root; by default it sits below the base URI.
func (s *DocSource) TocURL() string {
	return s.DomainURL() + "/" + s.TocURI
}

// ThemeURL returns the URL relative theme references are resolved against.
func (s *DocSource) ThemeURL() string {
	return "https://" + s.Domain + "/" + s.ThemeURI
}

// AddTheme registers a theme asset URL and reports whether it was new.
// Assets keep their registration order.
func (s *DocSource) AddTheme(u string) bool {
	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = len(s.themes)
	s.themes = append(s.themes, &ThemeAsset{URL: u, Name: ThemeName(u)})
	return true
}

// Themes returns the registered theme assets.
func (s *DocSource) Themes() []*ThemeAsset { return s.themes }

// ThemeName returns the flat file name an asset URL is stored under.
func ThemeName(u string) string {
	p, _ := splitHref(u)
	return path.Base(p)
}

// ThemeRef returns the document-relative reference to a stored asset.
func ThemeRef(name string) string {
	return "/" + ThemeFolder + "/" + name
}

// DocSet is the packaging unit: one bundle built from one or more sources.
type DocSet struct {
	Title      string
	Identifier string
	Folder     string
	IconURL    string
	Sources    []*DocSource

	// Icon holds the bundle icon once fetched.
	Icon []byte
}

// NewDocSet builds a docset and its sources from configuration.
func NewDocSet(cfg DocsetConfig) (*DocSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	set := &DocSet{
		Title:      cfg.Title,
		Identifier: cfg.Identifier,
		IconURL:    cfg.IconURL,
	}
	if set.Identifier == "" {
		set.Identifier = Identifier(cfg.Title)
	}
	set.Folder = cfg.Folder
	if set.Folder == "" {
		set.Folder = set.Identifier
	}
	for _, sc := range cfg.Sources {
		src := NewDocSource(sc)
		if err := src.Validate(); err != nil {
			return nil, err
		}
		set.Sources = append(set.Sources, src)
	}
	if set.IconURL == "" {
		set.IconURL = "https://" + set.Sources[0].Domain + "/" + DefaultIconURI
	}
	return set, nil
}

// BundleName returns the directory name of the docset bundle.
func (d *DocSet) BundleName() string {
	return d.Title + ".docset"
}

// Manifest returns the bundle manifest for the docset.
func (d *DocSet) Manifest() *Manifest {
	m := &Manifest{
		Identifier:        d.Identifier,
		Name:              d.Title,
		Family:            "dashtoc",
		IndexFilePath:     IndexFileName,
		JavaScriptEnabled: true,
		DashDocset:        true,
	}
	if len(d.Sources) > 0 {
		m.FallbackURL = d.Sources[0].BaseURL()
	}
	return m
}

// Identifier derives a bundle identifier from a display title.
func Identifier(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Manifest describes a docset bundle to the documentation viewer.
type Manifest struct {
	Identifier        string
	Name              string
	Family            string
	FallbackURL       string
	IndexFilePath     string
	JavaScriptEnabled bool
	DashDocset        bool
}

// ManifestEncoder serializes a manifest into the bundle's property list.
type ManifestEncoder interface {
	EncodeManifest(m *Manifest) ([]byte, error)
}
