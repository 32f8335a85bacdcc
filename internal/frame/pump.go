package frame

import (
	"context"
	"errors"
	"io"
)

// DefaultChunkSize is the read size used by Pump when none is given.
const DefaultChunkSize = 64 * 1024

// Pump feeds a Buffered source from an io.Reader on its own goroutine.
type Pump struct {
	ch  chan []byte
	err error
}

// NewPump starts reading r in chunks of up to size bytes. The channel returned by
// C is closed when r reports an error or ctx is cancelled.
func NewPump(ctx context.Context, r io.Reader, size int) *Pump {
	if size <= 0 {
		size = DefaultChunkSize
	}
	p := &Pump{ch: make(chan []byte, 4)}
	go p.run(ctx, r, size)
	return p
}

// C returns the chunk channel.
func (p *Pump) C() <-chan []byte {
	return p.ch
}

// Err reports the read error that stopped the pump. It is only meaningful once
// C has been closed; io.EOF is reported as nil.
func (p *Pump) Err() error {
	return p.err
}

func (p *Pump) run(ctx context.Context, r io.Reader, size int) {
	defer close(p.ch)
	for {
		buf := make([]byte, size)
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case p.ch <- buf[:n]:
			case <-ctx.Done():
				p.err = ctx.Err()
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.err = err
			}
			return
		}
	}
}
