// Package frame decodes the length-prefixed byte stream the host editor writes to
// stdin.
//
// Every frame on the wire is a 4-byte big-endian unsigned length followed by that
// many payload bytes. There is no terminator frame: the stream ends when the host
// closes it. Two adapters implement Source over different input disciplines:
// Reader pulls exactly the bytes it needs from an io.Reader, Buffered accumulates
// pushed chunks. Both yield the same frames for the same bytes.
package frame

import (
	"context"
	"errors"
	"fmt"
)

// HeaderSize is the length of the big-endian size prefix.
const HeaderSize = 4

var (
	// ErrUnexpectedEOF indicates the stream ended inside a frame.
	ErrUnexpectedEOF = errors.New("frame: unexpected end of stream")
	// ErrFrameTooLarge indicates a declared length above the configured maximum.
	ErrFrameTooLarge = errors.New("frame: frame too large")
)

// Frame is one decoded payload. Callers must not modify it.
type Frame []byte

// String returns the payload as text.
func (f Frame) String() string {
	return string(f)
}

// Source yields frames in stream order. Next returns io.EOF when the stream ends
// on a frame boundary and an error wrapping ErrUnexpectedEOF when it ends inside
// one.
type Source interface {
	Next(ctx context.Context) (Frame, error)
}

// Option configures a Source.
type Option func(*options)

type options struct {
	maxSize uint64
}

// WithMaxSize rejects frames declaring more than n payload bytes. Zero or a
// negative n leaves frames unbounded.
func WithMaxSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			o.maxSize = 0
			return
		}
		o.maxSize = uint64(n)
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) check(size uint32) error {
	if o.maxSize > 0 && uint64(size) > o.maxSize {
		return fmt.Errorf("%w: %d bytes declared, limit %d", ErrFrameTooLarge, size, o.maxSize)
	}
	return nil
}
