// Package markdown renders markdown documents into the HTML the preview view
// displays.
//
// Parsing is goldmark with GFM tables, strikethrough, task lists and linkify,
// footnotes, typographer, emoji and TeX math. Between parsing and HTML
// serialization an ordered list of transforms shapes the tree:
//
//   - top-level blocks get a data-line-begin attribute with their 1-based source
//     line, which the view uses to keep scroll position in sync with the editor
//   - headings get an id slug so in-document links resolve
//   - links are made inert; fragment links navigate through location.hash
//   - block math is wrapped in a container carrying the line anchor
//   - fenced blocks that open with a diagram keyword become diagram placeholders
//     rendered client-side
//
// Every call to Render uses a fresh id generator, so diagram ids differ between
// renders of the same input while the line count never does.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// LineAttr is the attribute recording a block's first source line.
const LineAttr = "data-line-begin"

// DefaultDiagramKeywords are the diagram openers recognised in fenced blocks.
var DefaultDiagramKeywords = []string{
	"flowchart",
	"sequenceDiagram",
	"gantt",
	"classDiagram",
	"stateDiagram",
	"pie",
	"journey",
	"C4Context",
	"erDiagram",
	"requirementDiagram",
	"gitGraph",
}

// Result is a rendered document.
type Result struct {
	HTML      string
	LineCount int
}

// Options configures a Renderer.
type Options struct {
	// Syntax enables highlighting of fenced code by language.
	Syntax bool
	// Highlighter replaces the default highlighter. It is used even when Syntax
	// is false.
	Highlighter Highlighter
	// Typographer converts quotes, dashes and ellipses.
	Typographer bool
	// Linkify turns bare URLs into links.
	Linkify bool
	// DiagramKeywords overrides DefaultDiagramKeywords when non-empty.
	DiagramKeywords []string
}

// DefaultOptions mirrors the settings the preview runs with.
func DefaultOptions() Options {
	return Options{
		Typographer:     true,
		Linkify:         true,
		DiagramKeywords: append([]string(nil), DefaultDiagramKeywords...),
	}
}

// Renderer converts markdown to preview HTML. It is safe for concurrent use.
type Renderer struct {
	md         goldmark.Markdown
	diagrams   *regexp.Regexp
	transforms []transform
}

// New builds a Renderer.
func New(opts Options) *Renderer {
	highlighter := opts.Highlighter
	if highlighter == nil && opts.Syntax {
		highlighter = NewChromaHighlighter()
	}
	exts := []goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Footnote,
		emoji.Emoji,
		Math,
	}
	if opts.Linkify {
		exts = append(exts, extension.Linkify)
	}
	if opts.Typographer {
		exts = append(exts, extension.Typographer)
	}
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				renderer.WithNodeRenderers(util.Prioritized(newNodeRenderer(highlighter), 100)),
			),
		),
		diagrams: diagramPattern(opts.DiagramKeywords),
	}
	r.transforms = []transform{
		mathFences,
		anchorLines,
		slugHeadings,
		interceptLinks,
		wrapMath,
		r.markDiagrams,
	}
	return r
}

// Render converts markdown to HTML.
func (r *Renderer) Render(markdown string) (Result, error) {
	src := []byte(markdown)
	doc := r.md.Parser().Parse(text.NewReader(src))
	rc := &renderContext{
		src:   src,
		lines: newLineIndex(src),
		ids:   &idGenerator{},
	}
	for _, t := range r.transforms {
		t(doc, rc)
	}
	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return Result{}, err
	}
	return Result{HTML: buf.String(), LineCount: LineCount(markdown)}, nil
}

// LineCount counts the lines of the source text: line breaks plus one. A CRLF
// pair is a single break, and a break ending the text terminates the last line
// instead of opening an empty one.
func LineCount(markdown string) int {
	n := strings.Count(markdown, "\n") + 1
	if n > 1 && strings.HasSuffix(markdown, "\n") {
		n--
	}
	return n
}

// diagramDefinition returns the definition of fenced block content that opens
// with a diagram keyword, after an optional front-matter block.
func (r *Renderer) diagramDefinition(content string) (string, bool) {
	m := r.diagrams.FindStringSubmatch(strings.TrimSpace(content))
	if m == nil {
		return "", false
	}
	return m[r.diagrams.SubexpIndex("content")], true
}

func diagramPattern(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		keywords = DefaultDiagramKeywords
	}
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			quoted = append(quoted, regexp.QuoteMeta(kw))
		}
	}
	if len(quoted) == 0 {
		return diagramPattern(DefaultDiagramKeywords)
	}
	return regexp.MustCompile(`^(?P<frontmatter>---[\s\S]+---)?\s*(?P<content>(?:` + strings.Join(quoted, "|") + `)[\s\S]+)`)
}

// nodeLines returns the raw source of a block's lines.
func nodeLines(n ast.Node, src []byte) []byte {
	lines := n.Lines()
	if lines == nil {
		return nil
	}
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}
