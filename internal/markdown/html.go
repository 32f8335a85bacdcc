package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type nodeRenderer struct {
	highlighter Highlighter
}

func newNodeRenderer(h Highlighter) renderer.NodeRenderer {
	return &nodeRenderer{highlighter: h}
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindFencedCodeBlock, r.renderCode)
	reg.Register(ast.KindCodeBlock, r.renderCode)
	reg.Register(KindDiagram, r.renderDiagram)
	reg.Register(KindMathContainer, r.renderMathContainer)
	reg.Register(KindMathBlock, r.renderMathBlock)
	reg.Register(KindMathInline, r.renderMathInline)
}

// renderLink writes every attribute, including the onclick handler the default
// link filter would drop.
func (r *nodeRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, nil)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.AutoLink)
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="` + inertHref + `"`)
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, nil)
	}
	_ = w.WriteByte('>')
	_, _ = w.Write(util.EscapeHTML(n.Label(source)))
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var lang []byte
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		lang = fenced.Language(source)
	}
	code := nodeLines(node, source)
	_, _ = w.WriteString("<pre")
	if node.Attributes() != nil {
		html.RenderAttributes(w, node, nil)
	}
	_, _ = w.WriteString("><code")
	if len(lang) > 0 {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML(lang))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	if highlighted, ok := r.highlight(string(code), string(lang)); ok {
		_, _ = w.WriteString(highlighted)
	} else {
		_, _ = w.Write(util.EscapeHTML(code))
	}
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) highlight(code, lang string) (string, bool) {
	if r.highlighter == nil || lang == "" {
		return "", false
	}
	return r.highlighter.Highlight(code, lang)
}

func (r *nodeRenderer) renderDiagram(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Diagram)
	_, _ = w.WriteString(`<div class="peek-mermaid-container"`)
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, nil)
	}
	_, _ = w.WriteString(">\n<div id=\"")
	_, _ = w.Write(util.EscapeHTML([]byte(n.ID)))
	_, _ = w.WriteString(`" data-graph="mermaid" data-graph-definition="`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.Definition)))
	_, _ = w.WriteString("\">\n<div class=\"peek-loader\"></div>\n</div>\n</div>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderMathContainer(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</div>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<div")
	if node.Attributes() != nil {
		html.RenderAttributes(w, node, nil)
	}
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderMathBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathBlock)
	if n.Eqno != "" {
		_, _ = w.WriteString(`<section class="eqno"><eqn>`)
	} else {
		_, _ = w.WriteString("<section><eqn>")
	}
	_, _ = w.Write(util.EscapeHTML(n.TeX))
	_, _ = w.WriteString("</eqn>")
	if n.Eqno != "" {
		_, _ = w.WriteString("<span>(")
		_, _ = w.Write(util.EscapeHTML([]byte(n.Eqno)))
		_, _ = w.WriteString(")</span>")
	}
	_, _ = w.WriteString("</section>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderMathInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<eq>")
	_, _ = w.Write(util.EscapeHTML(node.(*MathInline).TeX))
	_, _ = w.WriteString("</eq>")
	return ast.WalkSkipChildren, nil
}
