package frame

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
)

// Buffered is the buffered-push Source. Chunks arrive on a channel in any size;
// frames are cut out of the accumulated buffer once complete and any excess is
// kept for the next frame. A closed channel ends the stream.
type Buffered struct {
	chunks <-chan []byte
	opts   options
	buf    []byte
	off    int
	closed bool
}

// NewBuffered reads chunks until the channel is closed.
func NewBuffered(chunks <-chan []byte, opts ...Option) *Buffered {
	return &Buffered{chunks: chunks, opts: newOptions(opts)}
}

// Next returns the next complete frame, waiting for more chunks when needed.
func (b *Buffered) Next(ctx context.Context) (Frame, error) {
	for {
		frame, ok, err := b.take()
		if err != nil {
			return nil, err
		}
		if ok {
			return frame, nil
		}
		if b.closed {
			pending := len(b.buf) - b.off
			if pending == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: %d bytes pending", ErrUnexpectedEOF, pending)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case chunk, ok := <-b.chunks:
			if !ok {
				b.closed = true
				continue
			}
			b.push(chunk)
		}
	}
}

// Buffered returns the number of bytes received but not yet emitted.
func (b *Buffered) Buffered() int {
	return len(b.buf) - b.off
}

func (b *Buffered) take() (Frame, bool, error) {
	pending := b.buf[b.off:]
	if len(pending) < HeaderSize {
		return nil, false, nil
	}
	size := binary.BigEndian.Uint32(pending)
	if err := b.opts.check(size); err != nil {
		return nil, false, err
	}
	if uint64(len(pending)) < uint64(HeaderSize)+uint64(size) {
		return nil, false, nil
	}
	end := HeaderSize + int(size)
	frame := make(Frame, size)
	copy(frame, pending[HeaderSize:end])
	b.off += end
	if b.off == len(b.buf) {
		b.buf = b.buf[:0]
		b.off = 0
	}
	return frame, true, nil
}

// push compacts the retained remainder before appending. off is only non-zero
// after a frame was emitted, so the remainder moves at most once per frame.
func (b *Buffered) push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if b.off > 0 {
		n := copy(b.buf, b.buf[b.off:])
		b.buf = b.buf[:n]
		b.off = 0
	}
	b.buf = append(b.buf, chunk...)
}
