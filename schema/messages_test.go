package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeWireShape(t *testing.T) {
	cases := []struct {
		msg  Message
		want string
	}{
		{NewShow("", 1), `{"action":"show","html":"","lcount":1}`},
		{NewShow("<p>a</p>", 2), `{"action":"show","html":"<p>a</p>","lcount":2}`},
		{NewScroll("42"), `{"action":"scroll","line":"42"}`},
		{ScrollMessage{Line: "x"}, `{"action":"scroll","line":"x"}`},
		{NewBase("/tmp/docs/"), `{"action":"base","base":"/tmp/docs/"}`},
	}
	for _, tc := range cases {
		data, err := Encode(tc.msg)
		if err != nil {
			t.Fatalf("encode %#v: %v", tc.msg, err)
		}
		if string(data) != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, data)
		}
		back, err := Decode(data)
		if err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		if back.MessageAction() != tc.msg.MessageAction() {
			t.Fatalf("expected action %q, got %q", tc.msg.MessageAction(), back.MessageAction())
		}
	}
}

func TestDecode(t *testing.T) {
	msg, err := Decode([]byte(`{"action":"show","html":"<h1>x</h1>","lcount":3}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(NewShow("<h1>x</h1>", 3), msg); diff != "" {
		t.Fatalf("unexpected message (-want +got):\n%s", diff)
	}
	if _, err := Decode([]byte(`{"action":"zoom"}`)); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := Decode([]byte(`{`)); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
	if _, err := Encode(nil); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage for nil, got %v", err)
	}
}
