package command

import (
	"bufio"
	"context"
	"io"
	"strings"
)

const maxLineBytes = 16 * 1024 * 1024

// LineDecoder reads the text form of the protocol, one "action:argument" per
// line. A show line carries a file path rather than the markdown itself.
type LineDecoder struct {
	scanner *bufio.Scanner
}

// NewLineDecoder reads lines from r. CRLF line endings are accepted.
func NewLineDecoder(r io.Reader) *LineDecoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineDecoder{scanner: scanner}
}

// Next returns the command on the next line.
func (d *LineDecoder) Next(ctx context.Context) (Command, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.scanner.Scan() {
		if err := d.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return ParseLine(d.scanner.Text()), nil
}

// ParseLine decodes a single "action:argument" line. Everything after the first
// colon is the argument, so Windows paths survive intact.
func ParseLine(line string) Command {
	name, arg, _ := strings.Cut(line, ":")
	switch action := Action(strings.TrimSpace(name)); action {
	case ActionShow:
		return Show{Path: arg, FromFile: true}
	case ActionScroll, ActionBase:
		return build(action, arg)
	default:
		return Unknown{Name: string(action)}
	}
}
