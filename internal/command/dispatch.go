package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"pkt.systems/peek/internal/frame"
)

// Dispatcher reads commands from a frame source. Each known action is followed
// by exactly one argument frame; unknown actions stand alone.
type Dispatcher struct {
	src     frame.Source
	pending Action
}

// NewDispatcher reads from src.
func NewDispatcher(src frame.Source) *Dispatcher {
	return &Dispatcher{src: src}
}

// Next returns the next command. If reading the argument fails with a context
// error the action is kept, and the following call resumes with its argument.
func (d *Dispatcher) Next(ctx context.Context) (Command, error) {
	if d.pending == "" {
		f, err := d.src.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(f) {
			return nil, &DecodeError{Part: PartAction, Err: ErrInvalidText}
		}
		action := Action(f.String())
		if !action.Known() {
			return Unknown{Name: string(action)}, nil
		}
		d.pending = action
	}

	arg, err := d.src.Next(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s without argument", frame.ErrUnexpectedEOF, d.pending)
		}
		return nil, err
	}
	action := d.pending
	d.pending = ""
	if !utf8.Valid(arg) {
		return nil, &DecodeError{Action: action, Part: PartArgument, Err: ErrInvalidText}
	}
	return build(action, arg.String()), nil
}

// Pending reports the action waiting for its argument, if any.
func (d *Dispatcher) Pending() (Action, bool) {
	return d.pending, d.pending != ""
}
