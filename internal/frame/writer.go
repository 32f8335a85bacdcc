package frame

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Append encodes payload as a frame and appends it to dst.
func Append(dst, payload []byte) []byte {
	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	dst = append(dst, header[:]...)
	return append(dst, payload...)
}

// Writer encodes frames onto an io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes a single frame.
func (w *Writer) WriteFrame(payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	_, err := w.w.Write(Append(make([]byte, 0, HeaderSize+len(payload)), payload))
	return err
}

// WriteCommand writes an action frame followed by one frame per argument.
func (w *Writer) WriteCommand(action string, args ...string) error {
	if err := w.WriteFrame([]byte(action)); err != nil {
		return err
	}
	for _, arg := range args {
		if err := w.WriteFrame([]byte(arg)); err != nil {
			return err
		}
	}
	return nil
}
