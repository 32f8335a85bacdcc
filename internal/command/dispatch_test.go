package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pkt.systems/peek/internal/frame"
)

func frames(payloads ...string) []byte {
	var out []byte
	for _, p := range payloads {
		out = frame.Append(out, []byte(p))
	}
	return out
}

func collect(t *testing.T, dec Decoder) []Command {
	t.Helper()
	var out []Command
	for {
		cmd, err := dec.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, cmd)
	}
}

func TestDispatcherDecodesKnownActions(t *testing.T) {
	data := frames("show", "# A", "foo", "scroll", "42", "base", "/tmp/docs")
	got := collect(t, NewDispatcher(frame.NewReader(bytes.NewReader(data))))
	want := []Command{
		Show{Content: "# A"},
		Unknown{Name: "foo"},
		Scroll{Line: "42"},
		Base{Path: "/tmp/docs"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherArgumentsAreNotInterpreted(t *testing.T) {
	data := frames("scroll", "show", "show", "scroll")
	got := collect(t, NewDispatcher(frame.NewReader(bytes.NewReader(data))))
	want := []Command{Scroll{Line: "show"}, Show{Content: "scroll"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherUnknownDoesNotWaitForArgument(t *testing.T) {
	ch := make(chan []byte, 1)
	ch <- frames("foo")
	d := NewDispatcher(frame.NewBuffered(ch))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cmd, err := d.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if cmd != (Unknown{Name: "foo"}) {
		t.Fatalf("unexpected command: %#v", cmd)
	}
	if _, pending := d.Pending(); pending {
		t.Fatalf("unknown action must not wait for an argument")
	}
}

func TestDispatcherMissingArgumentIsFatal(t *testing.T) {
	d := NewDispatcher(frame.NewReader(bytes.NewReader(frames("show"))))
	_, err := d.Next(context.Background())
	if !errors.Is(err, frame.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestDispatcherResumesPendingArgument(t *testing.T) {
	ch := make(chan []byte, 2)
	ch <- frames("scroll")
	d := NewDispatcher(frame.NewBuffered(ch))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := d.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if action, pending := d.Pending(); !pending || action != ActionScroll {
		t.Fatalf("expected pending scroll, got %q %v", action, pending)
	}

	ch <- frames("7")
	close(ch)
	cmd, err := d.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if cmd != (Scroll{Line: "7"}) {
		t.Fatalf("unexpected command: %#v", cmd)
	}
}

func TestDispatcherInvalidUTF8(t *testing.T) {
	data := frames("base", "\xff\xfe", "scroll", "3")
	d := NewDispatcher(frame.NewReader(bytes.NewReader(data)))

	_, err := d.Next(context.Background())
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Action != ActionBase || decodeErr.Part != PartArgument {
		t.Fatalf("unexpected decode error: %+v", decodeErr)
	}
	if !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}

	cmd, err := d.Next(context.Background())
	if err != nil {
		t.Fatalf("Next after decode error: %v", err)
	}
	if cmd != (Scroll{Line: "3"}) {
		t.Fatalf("stream lost alignment: %#v", cmd)
	}
}

func TestUnknownActionName(t *testing.T) {
	if got := (Unknown{Name: "zoom"}).Action(); got != "zoom" {
		t.Fatalf("Action() = %q", got)
	}
	if Action("zoom").Known() {
		t.Fatalf("zoom must not be known")
	}
}
