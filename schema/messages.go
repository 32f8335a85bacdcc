package schema

import (
	"encoding/json"
	"fmt"
)

// Action tags an outbound message.
type Action string

const (
	// ActionShow replaces the rendered document.
	ActionShow Action = "show"
	// ActionScroll moves the view to a source line.
	ActionScroll Action = "scroll"
	// ActionBase sets the directory relative links resolve against.
	ActionBase Action = "base"
)

// Message is one JSON object sent to the view.
type Message interface {
	MessageAction() Action
}

// ShowMessage carries a rendered document and its source line count.
type ShowMessage struct {
	Action Action `json:"action"`
	HTML   string `json:"html"`
	LCount int    `json:"lcount"`
}

// ScrollMessage carries the host's line token verbatim.
type ScrollMessage struct {
	Action Action `json:"action"`
	Line   string `json:"line"`
}

// BaseMessage carries the normalized document directory.
type BaseMessage struct {
	Action Action `json:"action"`
	Base   string `json:"base"`
}

// MessageAction implements Message.
func (m ShowMessage) MessageAction() Action { return ActionShow }

// MessageAction implements Message.
func (m ScrollMessage) MessageAction() Action { return ActionScroll }

// MessageAction implements Message.
func (m BaseMessage) MessageAction() Action { return ActionBase }

// NewShow builds a show message.
func NewShow(html string, lcount int) ShowMessage {
	return ShowMessage{Action: ActionShow, HTML: html, LCount: lcount}
}

// NewScroll builds a scroll message.
func NewScroll(line string) ScrollMessage {
	return ScrollMessage{Action: ActionScroll, Line: line}
}

// NewBase builds a base message from an already normalized path.
func NewBase(base string) BaseMessage {
	return BaseMessage{Action: ActionBase, Base: base}
}

// Encode marshals a message, forcing the action tag to match its type.
func Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case ShowMessage:
		m.Action = ActionShow
		return json.Marshal(m)
	case ScrollMessage:
		m.Action = ActionScroll
		return json.Marshal(m)
	case BaseMessage:
		m.Action = ActionBase
		return json.Marshal(m)
	case nil:
		return nil, ErrInvalidMessage
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidMessage, msg)
	}
}

// Decode parses a message produced by Encode.
func Decode(data []byte) (Message, error) {
	var head struct {
		Action Action `json:"action"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	var (
		msg Message
		err error
	)
	switch head.Action {
	case ActionShow:
		var m ShowMessage
		err = json.Unmarshal(data, &m)
		msg = m
	case ActionScroll:
		var m ScrollMessage
		err = json.Unmarshal(data, &m)
		msg = m
	case ActionBase:
		var m BaseMessage
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, head.Action)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return msg, nil
}
