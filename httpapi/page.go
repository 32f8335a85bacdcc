package httpapi

import (
	"bytes"
	"embed"
	"html"
	"io/fs"
	"strings"

	"pkt.systems/peek/schema"
)

//go:embed assets/*
var embeddedAssets embed.FS

var (
	assets    = mustSub(embeddedAssets, "assets")
	indexHTML = mustRead(assets, "index.html")
)

const (
	baseHrefPlaceholder = "<!-- BASE_HREF -->"
	themePlaceholder    = "PEEK_THEME"
)

// page is the preview document for one mount point. The base href is applied
// once; only the theme varies per request.
type page struct {
	mount  string
	origin string
	index  []byte
}

func newPage(baseURL, basePath string) *page {
	p := &page{
		mount:  mountPath(basePath),
		origin: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
	base := ""
	if href := p.href(); href != "" {
		base = `<base href="` + html.EscapeString(href) + `" />`
	}
	p.index = bytes.ReplaceAll(indexHTML, []byte(baseHrefPlaceholder), []byte(base))
	return p
}

// mountPath turns a configured base path into "/prefix" form, or "" for root.
func mountPath(value string) string {
	path := strings.Trim(strings.TrimSpace(value), "/")
	if path == "" {
		return ""
	}
	return "/" + path
}

// href is the document base: the public origin plus mount, always ending in
// a slash, or empty when the page is served at the root of its own origin.
func (p *page) href() string {
	if p.origin == "" && p.mount == "" {
		return ""
	}
	return p.origin + p.mount + "/"
}

// url is the address a view opens. A configured public origin wins over the
// listener address.
func (p *page) url(addr string, theme schema.ThemeName) string {
	origin := p.origin
	if origin == "" {
		origin = "http://" + addr
	}
	return origin + p.mount + "/?theme=" + string(theme)
}

func (p *page) render(theme schema.ThemeName) []byte {
	if theme == "" {
		theme = schema.DefaultTheme
	}
	return bytes.ReplaceAll(p.index, []byte(themePlaceholder), []byte(html.EscapeString(string(theme))))
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

func mustRead(fsys fs.FS, name string) []byte {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		panic(err)
	}
	return data
}
