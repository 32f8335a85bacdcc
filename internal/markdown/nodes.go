package markdown

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
)

var (
	// KindDiagram is the node kind of diagram placeholders.
	KindDiagram = ast.NewNodeKind("Diagram")
	// KindMathBlock is the node kind of display math.
	KindMathBlock = ast.NewNodeKind("MathBlock")
	// KindMathInline is the node kind of inline math.
	KindMathInline = ast.NewNodeKind("MathInline")
	// KindMathContainer is the node kind wrapping display math.
	KindMathContainer = ast.NewNodeKind("MathContainer")
)

// Diagram replaces a fenced block whose content is a diagram definition.
type Diagram struct {
	ast.BaseBlock
	ID         string
	Definition string
}

// Kind implements ast.Node.
func (n *Diagram) Kind() ast.NodeKind { return KindDiagram }

// Dump implements ast.Node.
func (n *Diagram) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"ID": n.ID}, nil)
}

// MathBlock is display math delimited by $$ or a math fence. Offset is a byte
// offset on the opening line.
type MathBlock struct {
	ast.BaseBlock
	Offset int
	TeX    []byte
	Eqno   string

	closed bool
}

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Offset": strconv.Itoa(n.Offset),
		"TeX":    string(n.TeX),
		"Eqno":   n.Eqno,
	}, nil)
}

// MathInline is $-delimited math inside a paragraph.
type MathInline struct {
	ast.BaseInline
	TeX []byte
}

// Kind implements ast.Node.
func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

// Dump implements ast.Node.
func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"TeX": string(n.TeX)}, nil)
}

// MathContainer wraps a MathBlock so it carries the line anchor.
type MathContainer struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *MathContainer) Kind() ast.NodeKind { return KindMathContainer }

// Dump implements ast.Node.
func (n *MathContainer) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}
