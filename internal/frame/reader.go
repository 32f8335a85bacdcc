package frame

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
)

const (
	maxEmptyReads = 100
	maxPrealloc   = 1 << 20
)

// Reader is the blocking-pull Source. Each Next call requests exactly the bytes
// still missing from the current frame and accumulates short reads.
type Reader struct {
	r      io.Reader
	opts   options
	header [HeaderSize]byte
}

// NewReader wraps r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{r: r, opts: newOptions(opts)}
}

// Next blocks until a full frame has been read. The context is only checked
// between reads; an in-flight Read on the underlying reader is not interrupted.
func (r *Reader) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := r.fill(ctx, r.header[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, unexpected(err, n, HeaderSize)
	}
	size := binary.BigEndian.Uint32(r.header[:])
	if err := r.opts.check(size); err != nil {
		return nil, err
	}
	return r.readBody(ctx, int(size))
}

// readBody grows the payload at most maxPrealloc bytes ahead of what has been read.
func (r *Reader) readBody(ctx context.Context, size int) (Frame, error) {
	body := make(Frame, 0, min(size, maxPrealloc))
	for len(body) < size {
		start := len(body)
		step := min(size-start, maxPrealloc)
		body = slices.Grow(body, step)[:start+step]
		n, err := r.fill(ctx, body[start:])
		if err != nil {
			return nil, unexpected(err, start+n, size)
		}
	}
	return body, nil
}

func (r *Reader) fill(ctx context.Context, buf []byte) (int, error) {
	read := 0
	empty := 0
	for read < len(buf) {
		if err := ctx.Err(); err != nil {
			return read, err
		}
		n, err := r.r.Read(buf[read:])
		read += n
		if read == len(buf) {
			return read, nil
		}
		if err != nil {
			return read, err
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return read, io.ErrNoProgress
			}
			continue
		}
		empty = 0
	}
	return read, nil
}

func unexpected(err error, got, want int) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: read %d of %d bytes", ErrUnexpectedEOF, got, want)
	}
	return err
}
