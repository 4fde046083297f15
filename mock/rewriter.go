package mock

import "github.com/fwojciec/dashdoc"

var _ dashdoc.Rewriter = (*Rewriter)(nil)

// Rewriter is a mock implementation of dashdoc.Rewriter.
type Rewriter struct {
	RewriteFn func(html string, rc dashdoc.RewriteContext) (*dashdoc.RewriteResult, error)
}

func (r *Rewriter) Rewrite(html string, rc dashdoc.RewriteContext) (*dashdoc.RewriteResult, error) {
	return r.RewriteFn(html, rc)
}

var _ dashdoc.ManifestEncoder = (*ManifestEncoder)(nil)

// ManifestEncoder is a mock implementation of dashdoc.ManifestEncoder.
type ManifestEncoder struct {
	EncodeManifestFn func(m *dashdoc.Manifest) ([]byte, error)
}

func (e *ManifestEncoder) EncodeManifest(m *dashdoc.Manifest) ([]byte, error) {
	return e.EncodeManifestFn(m)
}
