package crawl

import (
	"context"
	"fmt"
	"path"

	"github.com/fwojciec/dashdoc"
)

// FetchAssets fetches the docset icon and every theme asset registered by
// the crawl of its sources. Content stored by an earlier run is reused.
func (e *Engine) FetchAssets(ctx context.Context, set *dashdoc.DocSet) error {
	if set.Icon == nil {
		data, err := e.fetchAsset(ctx, dashdoc.IconPath, set.IconURL)
		if err != nil {
			return fmt.Errorf("fetch icon %s: %w", set.IconURL, err)
		}
		set.Icon = data
	}

	for _, src := range set.Sources {
		for _, a := range src.Themes() {
			if a.HasContent() {
				continue
			}
			data, err := e.fetchAsset(ctx, path.Join(dashdoc.DocumentsPath, dashdoc.ThemeFolder, a.Name), a.URL)
			if err != nil {
				return fmt.Errorf("fetch theme %s: %w", a.URL, err)
			}
			a.Data = data
		}
	}
	return nil
}

func (e *Engine) fetchAsset(ctx context.Context, name, url string) ([]byte, error) {
	if e.Loader != nil {
		data, ok, err := e.Loader.LoadEntry(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			return data, nil
		}
	}
	return e.Assets.FetchBinary(ctx, url)
}
