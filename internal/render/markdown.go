// Package render converts raw comment markdown into sanitized HTML. The
// pipeline is: rewrite #id cross-references into markdown links, parse with
// goldmark, serialize with a custom image renderer, sanitize with bluemonday.
// All functions are pure and safe for concurrent use.
package render

import (
	"bytes"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// imageStyle is the inline style the custom image renderer adds so images
// never overflow the comment column.
const imageStyle = "max-width:100%;"

var imageStylePattern = regexp.MustCompile(`^max-width:\s*100%;$`)

// Renderer converts markdown into sanitized HTML fragments.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// New creates a Renderer with GFM extensions enabled. Only the inline image
// node is serialized differently from goldmark's defaults; every other node
// kind keeps its standard HTML output.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(newImageRenderer(html.WithUnsafe()), 500),
			),
		),
	)

	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowAttrs("style").Matching(imageStylePattern).OnElements("img")

	return &Renderer{md: md, sanitizer: sanitizer}
}

// Render converts a markdown string to a sanitized HTML fragment. Returns an
// empty string for empty input. Malformed markdown degrades per goldmark's
// recovery rules; if conversion fails outright the sanitized source text is
// returned instead, so Render never reports an error.
func (r *Renderer) Render(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return r.sanitizer.Sanitize(src)
	}

	return r.sanitizer.Sanitize(buf.String())
}

// imageRenderer overrides the serialization of ast.KindImage and nothing
// else. Registered at a higher priority than goldmark's default HTML
// renderer, so the default handles every other node kind.
type imageRenderer struct {
	html.Config
}

func newImageRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &imageRenderer{Config: html.NewConfig()}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

// RegisterFuncs registers the image render function. No other node kind is
// touched.
func (r *imageRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
}

// renderImage mirrors goldmark's default image output with the max-width
// style added: alt text is the plain-rendered child content, the link title
// (if any) becomes the title attribute, and node attributes the base
// serializer would emit are preserved.
func (r *imageRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	_, _ = w.WriteString(`<img src="`)
	if r.Unsafe || !html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_, _ = w.WriteString(`" style="` + imageStyle + `" alt="`)
	writeAltText(w, source, n)
	_ = w.WriteByte('"')

	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		r.Writer.Write(w, n.Title)
		_ = w.WriteByte('"')
	}
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.ImageAttributeFilter)
	}
	if r.XHTML {
		_, _ = w.WriteString(" />")
	} else {
		_, _ = w.WriteString(">")
	}

	return ast.WalkSkipChildren, nil
}

// writeAltText renders the image's child inlines as escaped plain text,
// dropping any markup they carry.
func writeAltText(w util.BufWriter, source []byte, n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			_, _ = w.Write(util.EscapeHTML(t.Segment.Value(source)))
		case *ast.String:
			_, _ = w.Write(util.EscapeHTML(t.Value))
		default:
			writeAltText(w, source, c)
		}
	}
}
