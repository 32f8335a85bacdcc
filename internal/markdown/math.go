package markdown

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Math adds $$ display math (with an optional "(n)" equation number after the
// closing delimiter) and $ inline math. Math fences are handled by the
// mathFences transform.
var Math goldmark.Extender = mathExtension{}

type mathExtension struct{}

func (mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(mathBlockParser{}, 750)),
		parser.WithInlineParsers(util.Prioritized(mathInlineParser{}, 500)),
	)
}

var (
	mathDelim = []byte("$$")
	mathClose = regexp.MustCompile(`^(.*?)\$\$\s*(?:\(([^()]*)\))?$`)
)

type mathBlockParser struct{}

func (mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], mathDelim) {
		return nil, parser.NoChildren
	}
	node := &MathBlock{Offset: segment.Start}
	rest := bytes.TrimSpace(line[pos+len(mathDelim):])
	if m := mathClose.FindSubmatch(rest); m != nil {
		node.TeX = append(node.TeX, m[1]...)
		node.Eqno = string(m[2])
		node.closed = true
	} else if len(rest) > 0 {
		node.TeX = append(node.TeX, rest...)
		node.TeX = append(node.TeX, '\n')
	}
	reader.Advance(segment.Len() - trailingNewline(line))
	return node, parser.NoChildren
}

func (mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*MathBlock)
	if n.closed {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	if m := mathClose.FindSubmatch(bytes.TrimSpace(line)); m != nil {
		n.TeX = append(n.TeX, m[1]...)
		n.Eqno = string(m[2])
		n.closed = true
		reader.Advance(segment.Len() - trailingNewline(line))
		return parser.Close
	}
	n.TeX = append(n.TeX, line...)
	reader.Advance(segment.Len() - trailingNewline(line))
	return parser.Continue | parser.NoChildren
}

func (mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	n := node.(*MathBlock)
	n.TeX = bytes.TrimSpace(n.TeX)
}

func (mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

func trailingNewline(line []byte) int {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return 1
	}
	return 0
}

type mathInlineParser struct{}

func (mathInlineParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse accepts $tex$ where tex does not start or end with a space and the
// closing $ is not followed by a digit, so prices like $5 and $10 stay text.
func (mathInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 3 || line[1] == '$' || isSpace(line[1]) {
		return nil
	}
	for i := 2; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '\n':
			return nil
		case '$':
			if isSpace(line[i-1]) {
				continue
			}
			if i+1 < len(line) && line[i+1] >= '0' && line[i+1] <= '9' {
				continue
			}
			node := &MathInline{TeX: append([]byte(nil), line[1:i]...)}
			block.Advance(i + 1)
			return node
		}
	}
	return nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
