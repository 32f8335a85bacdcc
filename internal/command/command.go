// Package command turns the host's input stream into typed preview commands.
package command

import (
	"context"
	"errors"
	"fmt"
)

// Action names a command on the wire.
type Action string

const (
	// ActionShow replaces the rendered document.
	ActionShow Action = "show"
	// ActionScroll moves the view to a source line.
	ActionScroll Action = "scroll"
	// ActionBase sets the directory relative links resolve against.
	ActionBase Action = "base"
)

// Known reports whether the action takes an argument frame.
func (a Action) Known() bool {
	switch a {
	case ActionShow, ActionScroll, ActionBase:
		return true
	default:
		return false
	}
}

// Command is a decoded host request: one of Show, Scroll, Base or Unknown.
type Command interface {
	Action() Action
	command()
}

// Show carries markdown to render. When FromFile is set the input only named
// a file: Path must be read and Content is unused.
type Show struct {
	Content  string
	Path     string
	FromFile bool
}

// Scroll carries the raw line token. It is passed through unvalidated.
type Scroll struct {
	Line string
}

// Base carries the document directory as sent by the host.
type Base struct {
	Path string
}

// Unknown is any other action. It has no argument and is ignored.
type Unknown struct {
	Name string
}

func (Show) Action() Action      { return ActionShow }
func (Scroll) Action() Action    { return ActionScroll }
func (Base) Action() Action      { return ActionBase }
func (u Unknown) Action() Action { return Action(u.Name) }

func (Show) command()    {}
func (Scroll) command()  {}
func (Base) command()    {}
func (Unknown) command() {}

// Decoder yields commands in input order. It returns io.EOF when the input ends
// cleanly; any other error except *DecodeError ends the input as well.
type Decoder interface {
	Next(ctx context.Context) (Command, error)
}

// ErrInvalidText indicates a frame that is not valid UTF-8.
var ErrInvalidText = errors.New("invalid utf-8")

// Part identifies which frame of a command failed to decode.
type Part string

const (
	// PartAction is the frame naming the action.
	PartAction Part = "action"
	// PartArgument is the frame following a known action.
	PartArgument Part = "argument"
)

// DecodeError reports a frame that could not be decoded as text. The frame has
// been consumed, so the stream is still aligned on the next command.
type DecodeError struct {
	Action Action
	Part   Part
	Err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "command decode error"
	}
	if e.Part == PartAction {
		return fmt.Sprintf("command: action frame: %v", e.Err)
	}
	return fmt.Sprintf("command: %s %s frame: %v", e.Action, e.Part, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func build(action Action, arg string) Command {
	switch action {
	case ActionShow:
		return Show{Content: arg}
	case ActionScroll:
		return Scroll{Line: arg}
	case ActionBase:
		return Base{Path: arg}
	default:
		return Unknown{Name: string(action)}
	}
}
