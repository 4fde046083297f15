package dashdoc

import "strings"

// SourceConfig configures one crawl root.
type SourceConfig struct {
	Title    string `mapstructure:"title"`
	BaseURI  string `mapstructure:"base_uri"`
	TocURI   string `mapstructure:"toc_uri"`
	ThemeURI string `mapstructure:"theme_uri"`
	Language string `mapstructure:"language"`
	Domain   string `mapstructure:"domain"`
}

// DocsetConfig configures one docset.
type DocsetConfig struct {
	Title      string         `mapstructure:"title"`
	Identifier string         `mapstructure:"identifier"`
	Folder     string         `mapstructure:"folder"`
	IconURL    string         `mapstructure:"icon_url"`
	Sources    []SourceConfig `mapstructure:"sources"`
}

// Validate returns an error if the docset cannot be built.
func (c DocsetConfig) Validate() error {
	if c.Title == "" {
		return Errorf(EINVALID, "docset title required")
	}
	if len(c.Sources) == 0 {
		return Errorf(EINVALID, "docset %q has no sources", c.Title)
	}
	return nil
}

// Catalog lists the docsets that can be built.
type Catalog struct {
	Docsets []DocsetConfig `mapstructure:"docsets"`
}

// Find returns the docset whose title or identifier matches name,
// ignoring case.
func (c *Catalog) Find(name string) (DocsetConfig, error) {
	for _, d := range c.Docsets {
		if strings.EqualFold(d.Title, name) || strings.EqualFold(Identifier(d.Title), name) ||
			(d.Identifier != "" && strings.EqualFold(d.Identifier, name)) {
			return d, nil
		}
	}
	return DocsetConfig{}, Errorf(ENOTFOUND, "docset %q not in catalog", name)
}

// DefaultCatalog returns the built-in catalog of Microsoft documentation.
func DefaultCatalog() *Catalog {
	return &Catalog{Docsets: []DocsetConfig{
		{
			Title: "Powershell",
			Sources: []SourceConfig{
				{Title: "PsDocs", BaseURI: "powershell/module", TocURI: "powershell/module/psdocs/toc.json"},
				{Title: "Ps2019", BaseURI: "powershell/module", TocURI: "powershell/module/windowsserver2019-ps/toc.json?view=windowsserver2019-ps"},
			},
		},
		{
			Title:   "Windows Desktop Api",
			Folder:  "Win32k",
			Sources: []SourceConfig{{Title: "Win32k", BaseURI: "windows/win32/api"}},
		},
		{
			Title:   "Windows Driver Framework",
			Folder:  "WDF",
			Sources: []SourceConfig{{Title: "WDF", BaseURI: "windows-hardware/drivers/wdf"}},
		},
		{
			Title:   "Kernel Mode Development",
			Folder:  "KMD",
			Sources: []SourceConfig{{Title: "KMD", BaseURI: "windows-hardware/drivers/kernel"}},
		},
	}}
}
