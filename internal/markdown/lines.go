package markdown

import (
	"bytes"
	"sort"
)

// lineIndex holds the byte offsets of every '\n' in a source.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	var idx lineIndex
	for i, b := range src {
		if b == '\n' {
			idx = append(idx, i)
		}
	}
	return idx
}

// line returns the 1-based line holding the byte at offset.
func (idx lineIndex) line(offset int) int {
	return sort.SearchInts(idx, offset) + 1
}

// start returns the offset of the first byte of line n, or size past the end.
func (idx lineIndex) start(n, size int) int {
	switch {
	case n <= 1:
		return 0
	case n-2 < len(idx):
		return idx[n-2] + 1
	default:
		return size
	}
}

// text returns line n without its terminator.
func (idx lineIndex) text(src []byte, n int) []byte {
	from := idx.start(n, len(src))
	to := len(src)
	if n-1 < len(idx) {
		to = idx[n-1]
	}
	if from >= to {
		return nil
	}
	return bytes.TrimRight(src[from:to], "\r")
}

// isThematicBreak reports whether a line is a "---", "***" or "___" rule.
func isThematicBreak(line []byte) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || (line[0] != '-' && line[0] != '*' && line[0] != '_') {
		return false
	}
	count := 0
	for _, b := range line {
		switch b {
		case line[0]:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// isFence reports whether a line opens or closes a fenced code block.
func isFence(line []byte) bool {
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	return bytes.HasPrefix(trimmed, []byte("```")) || bytes.HasPrefix(trimmed, []byte("~~~"))
}

// isSetextUnderline reports whether a line underlines a setext heading.
func isSetextUnderline(line []byte) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || (line[0] != '=' && line[0] != '-') {
		return false
	}
	return len(bytes.Trim(line, string(line[0]))) == 0
}
