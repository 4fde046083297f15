// Package plist encodes docset manifests as Info.plist documents using
// beevik/etree.
package plist

import (
	"github.com/beevik/etree"
	"github.com/fwojciec/dashdoc"
)

const doctype = `DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd"`

var _ dashdoc.ManifestEncoder = (*Encoder)(nil)

// Encoder implements dashdoc.ManifestEncoder.
type Encoder struct{}

// NewEncoder returns an Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// EncodeManifest renders m as an XML property list.
func (e *Encoder) EncodeManifest(m *dashdoc.Manifest) ([]byte, error) {
	if m.Identifier == "" {
		return nil, dashdoc.Errorf(dashdoc.EINVALID, "manifest identifier required")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective(doctype)
	root := doc.CreateElement("plist")
	root.CreateAttr("version", "1.0")

	d := dict{root.CreateElement("dict")}
	d.str("CFBundleIdentifier", m.Identifier)
	d.str("CFBundleName", m.Name)
	d.str("DocSetPlatformFamily", m.Identifier)
	d.str("DashDocSetFamily", m.Family)
	d.str("dashIndexFilePath", m.IndexFilePath)
	if m.FallbackURL != "" {
		d.str("DashDocSetFallbackURL", m.FallbackURL)
	}
	d.boolean("isDashDocset", m.DashDocset)
	d.boolean("isJavaScriptEnabled", m.JavaScriptEnabled)

	doc.Indent(2)
	return doc.WriteToBytes()
}

type dict struct {
	el *etree.Element
}

func (d dict) str(key, value string) {
	d.el.CreateElement("key").SetText(key)
	d.el.CreateElement("string").SetText(value)
}

func (d dict) boolean(key string, value bool) {
	d.el.CreateElement("key").SetText(key)
	if value {
		d.el.CreateElement("true")
	} else {
		d.el.CreateElement("false")
	}
}
