package schema

import "errors"

var (
	// ErrInvalidMessage indicates a malformed outbound message payload.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrUnknownAction indicates a message whose action is not show, scroll or base.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoView indicates a send with no view attached.
	ErrNoView = errors.New("no view attached")
	// ErrViewClosed indicates a send to a view that has disconnected.
	ErrViewClosed = errors.New("view closed")
	// ErrInvalidBase indicates an empty base path.
	ErrInvalidBase = errors.New("invalid base path")
)
