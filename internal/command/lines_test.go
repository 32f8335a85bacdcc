package command

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		want Command
	}{
		{"show:/tmp/a.md", Show{Path: "/tmp/a.md", FromFile: true}},
		{`show:C:\docs\a.md`, Show{Path: `C:\docs\a.md`, FromFile: true}},
		{"show:", Show{FromFile: true}},
		{"show", Show{FromFile: true}},
		{"scroll:12", Scroll{Line: "12"}},
		{"base:/tmp/docs", Base{Path: "/tmp/docs"}},
		{"base:", Base{Path: ""}},
		{"close", Unknown{Name: "close"}},
		{"", Unknown{Name: ""}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, ParseLine(tc.line)); diff != "" {
			t.Fatalf("ParseLine(%q) mismatch (-want +got):\n%s", tc.line, diff)
		}
	}
}

func TestLineDecoderHandlesCRLF(t *testing.T) {
	input := "show:/a.md\r\nscroll:4\r\nbase:/docs\n"
	got := collect(t, NewLineDecoder(strings.NewReader(input)))
	want := []Command{Show{Path: "/a.md", FromFile: true}, Scroll{Line: "4"}, Base{Path: "/docs"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}
