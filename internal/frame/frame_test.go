package frame

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
)

func testPayloads() [][]byte {
	return [][]byte{
		[]byte("show"),
		[]byte("# Title\n\nbody text\r\nwith crlf\n"),
		{},
		[]byte("scroll"),
		[]byte("42"),
		bytes.Repeat([]byte("x"), 300),
		[]byte("base"),
		[]byte("/tmp/docs"),
	}
}

func encodeAll(payloads [][]byte) []byte {
	var out []byte
	for _, p := range payloads {
		out = Append(out, p)
	}
	return out
}

func split(data []byte, size int) [][]byte {
	if size <= 0 || size >= len(data) {
		return [][]byte{data}
	}
	var chunks [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

func chunkChannel(chunks [][]byte) <-chan []byte {
	ch := make(chan []byte, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func drain(t *testing.T, src Source) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		f, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, []byte(f))
	}
}

func TestReaderAndBufferedAgree(t *testing.T) {
	payloads := testPayloads()
	stream := encodeAll(payloads)

	pulled := drain(t, NewReader(bytes.NewReader(stream)))
	if diff := cmp.Diff(payloads, pulled); diff != "" {
		t.Fatalf("pull frames mismatch (-want +got):\n%s", diff)
	}

	for _, size := range []int{1, 3, 17, 0} {
		got := drain(t, NewBuffered(chunkChannel(split(stream, size))))
		if diff := cmp.Diff(pulled, got); diff != "" {
			t.Fatalf("chunk size %d: buffered frames differ (-pull +buffered):\n%s", size, diff)
		}
	}
}

func TestReaderAccumulatesShortReads(t *testing.T) {
	payloads := testPayloads()
	got := drain(t, NewReader(iotest.OneByteReader(bytes.NewReader(encodeAll(payloads)))))
	if diff := cmp.Diff(payloads, got); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderHandlesDataErrReader(t *testing.T) {
	payloads := testPayloads()
	got := drain(t, NewReader(iotest.DataErrReader(bytes.NewReader(encodeAll(payloads)))))
	if diff := cmp.Diff(payloads, got); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestEOFInsideFrame(t *testing.T) {
	stream := encodeAll([][]byte{[]byte("show"), []byte("content")})
	cases := []struct {
		name string
		data []byte
	}{
		{name: "inside-prefix", data: stream[:len(stream)-len("content")-2]},
		{name: "inside-body", data: stream[:len(stream)-3]},
	}
	for _, tc := range cases {
		pull := NewReader(bytes.NewReader(tc.data))
		push := NewBuffered(chunkChannel(split(tc.data, 5)))
		for name, src := range map[string]Source{"pull": pull, "push": push} {
			f, err := src.Next(context.Background())
			if err != nil || f.String() != "show" {
				t.Fatalf("%s/%s: first frame = %q, %v", tc.name, name, f, err)
			}
			_, err = src.Next(context.Background())
			if !errors.Is(err, ErrUnexpectedEOF) {
				t.Fatalf("%s/%s: expected ErrUnexpectedEOF, got %v", tc.name, name, err)
			}
		}
	}
}

func TestCleanEOF(t *testing.T) {
	for name, src := range map[string]Source{
		"pull": NewReader(strings.NewReader("")),
		"push": NewBuffered(chunkChannel(nil)),
	} {
		if _, err := src.Next(context.Background()); err != io.EOF {
			t.Fatalf("%s: expected io.EOF, got %v", name, err)
		}
	}
}

func TestOversizedLengthReportsEOF(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xf0, 'a', 'b'}
	if _, err := NewReader(bytes.NewReader(data)).Next(context.Background()); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("pull: expected ErrUnexpectedEOF, got %v", err)
	}
	if _, err := NewBuffered(chunkChannel([][]byte{data})).Next(context.Background()); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("push: expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestWithMaxSize(t *testing.T) {
	data := encodeAll([][]byte{[]byte("0123456789")})
	if _, err := NewReader(bytes.NewReader(data), WithMaxSize(4)).Next(context.Background()); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("pull: expected ErrFrameTooLarge, got %v", err)
	}
	if _, err := NewBuffered(chunkChannel([][]byte{data}), WithMaxSize(4)).Next(context.Background()); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("push: expected ErrFrameTooLarge, got %v", err)
	}
	f, err := NewReader(bytes.NewReader(data), WithMaxSize(0)).Next(context.Background())
	if err != nil || f.String() != "0123456789" {
		t.Fatalf("unbounded: got %q, %v", f, err)
	}
}

func TestBufferedRetainsRemainder(t *testing.T) {
	stream := encodeAll([][]byte{[]byte("one"), []byte("two")})
	ch := make(chan []byte, 2)
	ch <- stream[:len(stream)-2]
	src := NewBuffered(ch)

	f, err := src.Next(context.Background())
	if err != nil || f.String() != "one" {
		t.Fatalf("first frame = %q, %v", f, err)
	}
	if got, want := src.Buffered(), HeaderSize+1; got != want {
		t.Fatalf("buffered = %d, want %d", got, want)
	}
	ch <- stream[len(stream)-2:]
	close(ch)
	f, err = src.Next(context.Background())
	if err != nil || f.String() != "two" {
		t.Fatalf("second frame = %q, %v", f, err)
	}
	if src.Buffered() != 0 {
		t.Fatalf("expected empty buffer, got %d", src.Buffered())
	}
}

func TestBufferedHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewBuffered(make(chan []byte))
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPumpFeedsBuffered(t *testing.T) {
	payloads := testPayloads()
	pump := NewPump(context.Background(), iotest.HalfReader(bytes.NewReader(encodeAll(payloads))), 7)
	got := drain(t, NewBuffered(pump.C()))
	if diff := cmp.Diff(payloads, got); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
	if err := pump.Err(); err != nil {
		t.Fatalf("pump error: %v", err)
	}
}

func TestPumpReportsReadError(t *testing.T) {
	boom := errors.New("boom")
	pump := NewPump(context.Background(), iotest.ErrReader(boom), 8)
	for range pump.C() {
	}
	if !errors.Is(pump.Err(), boom) {
		t.Fatalf("expected boom, got %v", pump.Err())
	}
}

func TestWriterWriteCommand(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteCommand("scroll", "12"); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	want := []byte{0, 0, 0, 6, 's', 'c', 'r', 'o', 'l', 'l', 0, 0, 0, 2, '1', '2'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoded = %v, want %v", buf.Bytes(), want)
	}
}
