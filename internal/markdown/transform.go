package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

const inertHref = "javascript:return"

// transform rewrites the parsed document in place before serialization.
type transform func(doc ast.Node, rc *renderContext)

type renderContext struct {
	src   []byte
	lines lineIndex
	ids   *idGenerator
}

// collect returns every node of type T under root in document order. Transforms
// that replace nodes collect first and mutate afterwards.
func collect[T ast.Node](root ast.Node) []T {
	var out []T
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
		return ast.WalkContinue, nil
	})
	return out
}

// mathFences turns ```math fences into display math.
func mathFences(doc ast.Node, rc *renderContext) {
	for _, fence := range collect[*ast.FencedCodeBlock](doc) {
		if string(fence.Language(rc.src)) != "math" {
			continue
		}
		node := &MathBlock{
			Offset: fence.Info.Segment.Start,
			TeX:    bytes.TrimSpace(nodeLines(fence, rc.src)),
			closed: true,
		}
		fence.Parent().ReplaceChild(fence.Parent(), fence, node)
	}
}

// anchorLines tags each top-level block with its first source line. Blocks
// parsed without segments, such as thematic breaks and empty fences, are
// located in the source that follows the previous block.
func anchorLines(doc ast.Node, rc *renderContext) {
	next := 1
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == extast.KindFootnoteList {
			continue
		}
		line, ok := blockLine(n, rc)
		if !ok {
			line, ok = findLine(n, rc, next)
		}
		if ok {
			n.SetAttributeString(LineAttr, []byte(strconv.Itoa(line)))
			next = nextLine(n, rc, line)
		}
	}
}

// findLine scans forward from line from for the first line that can open n.
func findLine(n ast.Node, rc *renderContext, from int) (int, bool) {
	var match func([]byte) bool
	switch n.Kind() {
	case ast.KindThematicBreak:
		match = isThematicBreak
	case ast.KindFencedCodeBlock:
		match = isFence
	default:
		return 0, false
	}
	for line := from; line <= len(rc.lines)+1; line++ {
		if match(rc.lines.text(rc.src, line)) {
			return line, true
		}
	}
	return 0, false
}

// nextLine returns the line after block n, which begins on line begin. Closing
// fences and setext underlines carry no segment and are stepped over.
func nextLine(n ast.Node, rc *renderContext, begin int) int {
	last := begin
	if stop, ok := lastStop(n); ok {
		last = max(last, rc.lines.line(stop-1))
	}
	after := last + 1
	switch n.(type) {
	case *ast.FencedCodeBlock:
		if isFence(rc.lines.text(rc.src, after)) {
			after++
		}
	case *ast.Heading:
		if !bytes.HasPrefix(bytes.TrimLeft(rc.lines.text(rc.src, begin), " "), []byte("#")) &&
			isSetextUnderline(rc.lines.text(rc.src, after)) {
			after++
		}
	}
	return after
}

// lastStop returns the end offset of the last segment under n.
func lastStop(n ast.Node) (int, bool) {
	stop, found := 0, false
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			stop, found = max(stop, v.Segment.Stop), true
		case *ast.FencedCodeBlock:
			if v.Info != nil {
				stop, found = max(stop, v.Info.Segment.Stop), true
			}
		}
		if c.Type() == ast.TypeBlock {
			if lines := c.Lines(); lines != nil && lines.Len() > 0 {
				stop, found = max(stop, lines.At(lines.Len()-1).Stop), true
			}
		}
		return ast.WalkContinue, nil
	})
	return stop, found && stop > 0
}

// blockLine finds the first source line of a block, descending into containers
// that carry no lines of their own.
func blockLine(n ast.Node, rc *renderContext) (int, bool) {
	switch v := n.(type) {
	case *MathBlock:
		return rc.lines.line(v.Offset), true
	case *ast.FencedCodeBlock:
		if v.Info != nil {
			return rc.lines.line(v.Info.Segment.Start), true
		}
		if v.Lines().Len() > 0 {
			return rc.lines.line(v.Lines().At(0).Start) - 1, true
		}
		return 0, false
	case *ast.Text:
		return rc.lines.line(v.Segment.Start), true
	}
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return rc.lines.line(n.Lines().At(0).Start), true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if line, ok := blockLine(c, rc); ok {
			return line, true
		}
	}
	return 0, false
}

// slugHeadings gives every heading an id derived from its source text.
func slugHeadings(doc ast.Node, rc *renderContext) {
	for _, h := range collect[*ast.Heading](doc) {
		if id := Slug(string(nodeLines(h, rc.src))); id != "" {
			h.SetAttributeString("id", []byte(id))
		}
	}
}

// interceptLinks makes links inert. Fragment links keep working through an
// onclick handler that sets location.hash.
func interceptLinks(doc ast.Node, rc *renderContext) {
	for _, link := range collect[*ast.Link](doc) {
		dest := string(link.Destination)
		if strings.HasPrefix(dest, "#") {
			link.SetAttributeString("onclick", []byte("location.hash='"+jsQuote(dest)+"'"))
		}
		link.Destination = []byte(inertHref)
	}
}

func jsQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// wrapMath moves each display math node into a container repeating its line
// anchor.
func wrapMath(doc ast.Node, rc *renderContext) {
	for _, m := range collect[*MathBlock](doc) {
		container := &MathContainer{}
		if v, ok := m.AttributeString(LineAttr); ok {
			container.SetAttributeString(LineAttr, v)
		}
		parent := m.Parent()
		parent.ReplaceChild(parent, m, container)
		container.AppendChild(container, m)
	}
}

// markDiagrams replaces fenced diagram definitions with placeholders.
func (r *Renderer) markDiagrams(doc ast.Node, rc *renderContext) {
	for _, fence := range collect[*ast.FencedCodeBlock](doc) {
		content := strings.TrimSpace(string(nodeLines(fence, rc.src)))
		definition, ok := r.diagramDefinition(content)
		if !ok {
			continue
		}
		node := &Diagram{
			ID:         rc.ids.diagram(content),
			Definition: definition,
		}
		if v, ok := fence.AttributeString(LineAttr); ok {
			node.SetAttributeString(LineAttr, v)
		}
		fence.Parent().ReplaceChild(fence.Parent(), fence, node)
	}
}
