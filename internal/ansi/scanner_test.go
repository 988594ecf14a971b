package ansi

import (
	"reflect"
	"strings"
	"testing"

	"github.com/suryansh-23/btterm/internal/types"
)

func collect(chunks ...string) []Edit {
	d := NewDecoder(0)
	var out []Edit
	for _, chunk := range chunks {
		out = append(out, d.Feed([]byte(chunk))...)
	}
	return out
}

func render(edits []Edit) string {
	var buf []byte
	for _, e := range edits {
		switch e.Kind {
		case EditAppend:
			buf = append(buf, e.Bytes...)
		case EditSpaces:
			buf = append(buf, strings.Repeat(" ", e.Count)...)
		case EditErase:
			n := min(e.Count, len(buf))
			buf = buf[:len(buf)-n]
		case EditClear:
			buf = buf[:0]
		}
	}
	return string(buf)
}

func TestScanCursorRightInsertsSpaces(t *testing.T) {
	edits := collect("hi\x1b[3Cbye")
	want := []Edit{
		Append([]byte("hi"), types.StyleReceived),
		Spaces(3),
		Append([]byte("bye"), types.StyleReceived),
	}
	if !reflect.DeepEqual(edits, want) {
		t.Fatalf("edits = %#v", edits)
	}
	if got := render(edits); got != "hi   bye" {
		t.Fatalf("render = %q", got)
	}
}

func TestScanSequenceAcrossChunks(t *testing.T) {
	if got := render(collect("hi\x1b[3", "Cbye")); got != "hi   bye" {
		t.Fatalf("render = %q", got)
	}
}

func TestScanCursorLeftErases(t *testing.T) {
	edits := collect("abcdef\x1b[3D")
	want := []Edit{
		Append([]byte("abcdef"), types.StyleReceived),
		Erase(3),
	}
	if !reflect.DeepEqual(edits, want) {
		t.Fatalf("edits = %#v", edits)
	}
	if got := render(edits); got != "abc" {
		t.Fatalf("render = %q", got)
	}
}

func TestScanDefaultArgIsOne(t *testing.T) {
	if got := render(collect("abc\x1b[D")); got != "ab" {
		t.Fatalf("render = %q", got)
	}
	if got := render(collect("a\x1b[Cb")); got != "a b" {
		t.Fatalf("render = %q", got)
	}
	if got := render(collect("abc\x1b[0D")); got != "ab" {
		t.Fatalf("render = %q", got)
	}
}

func TestScanEraseClampsToBuffer(t *testing.T) {
	if got := render(collect("ab\x1b[10D")); got != "" {
		t.Fatalf("render = %q", got)
	}
}

func TestScanDiscardsSupportedNoops(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "save restore cursor", input: "a\x1b7b\x1b8c", want: "abc"},
		{name: "cursor up down", input: "a\x1b[2Ab\x1b[Bc", want: "abc"},
		{name: "home and clear", input: "a\x1b[H\x1b[2Jb", want: "ab"},
		{name: "erase line", input: "a\x1b[Kb", want: "ab"},
		{name: "style reset", input: "a\x1b[mb", want: "ab"},
		{name: "two parameter style", input: "a\x1b[1;32mb\x1b[0m", want: "ab"},
		{name: "device status", input: "a\x1b[6nb", want: "ab"},
		{name: "private mode reset", input: "a\x1b[?3lb", want: "ab"},
		{name: "unknown two byte", input: "a\x1bcb", want: "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(collect(tt.input)); got != tt.want {
				t.Fatalf("render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanMalformedReturnsToGround(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bad final byte", input: "a\x1b[5Zb", want: "ab"},
		{name: "separator then letter", input: "a\x1b[1;Xb", want: "ab"},
		{name: "private wrong digit", input: "a\x1b[?4lb", want: "alb"},
		{name: "private wrong final", input: "a\x1b[?3hb", want: "ab"},
		{name: "escape inside sequence", input: "a\x1b[\x1b[3Cb", want: "a[3Cb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(collect(tt.input)); got != tt.want {
				t.Fatalf("render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanSecondParameterUsedAtTerminator(t *testing.T) {
	// The separator resets the argument, so the last parameter wins.
	if got := render(collect("abcdef\x1b[1;2D")); got != "abcd" {
		t.Fatalf("render = %q", got)
	}
}

func TestScanReportsOpenOffset(t *testing.T) {
	edits, st, open := Scan([]byte("ok\x1b[12"), State{})
	if render(edits) != "ok" {
		t.Fatalf("edits = %#v", edits)
	}
	if st.Phase != PhaseParam || st.Arg != 12 {
		t.Fatalf("state = %+v", st)
	}
	if open != 2 {
		t.Fatalf("open = %d", open)
	}

	edits, st, open = Scan([]byte("C!"), st)
	if render(edits) != strings.Repeat(" ", 12)+"!" {
		t.Fatalf("edits = %#v", edits)
	}
	if st != (State{}) || open != 2 {
		t.Fatalf("state = %+v open = %d", st, open)
	}
}

func TestScanArgSaturates(t *testing.T) {
	_, st, _ := Scan([]byte("\x1b["+strings.Repeat("9", 40)), State{})
	if st.Arg != maxArg {
		t.Fatalf("arg = %d", st.Arg)
	}
}

func TestScanChunkBoundaryInvariance(t *testing.T) {
	inputs := []string{
		"hi\x1b[3Cbye",
		"abcdef\x1b[3Dxyz\x1b[?3l\x1b[1;32mgreen\x1b[0m\r\n",
		"\x1b7\x1b[2J\x1b[H> \x1b[K\x1b[6n\x1b8tail\x1b[12D",
		"\x1b[\x1b[;5Cq\x1b",
	}
	for _, input := range inputs {
		want := render(collect(input))
		for i := 0; i <= len(input); i++ {
			for j := i; j <= len(input); j++ {
				got := render(collect(input[:i], input[i:j], input[j:]))
				if got != want {
					t.Fatalf("split %d/%d of %q: render = %q, want %q", i, j, input, got, want)
				}
			}
		}
		var bytewise []string
		for k := 0; k < len(input); k++ {
			bytewise = append(bytewise, input[k:k+1])
		}
		if got := render(collect(bytewise...)); got != want {
			t.Fatalf("bytewise %q: render = %q, want %q", input, got, want)
		}
	}
}

func TestScanGroundIsIdempotent(t *testing.T) {
	d := NewDecoder(0)
	d.Feed([]byte("warmup\x1b[3D\x1b[?3l"))
	if st := d.State(); st != (State{}) {
		t.Fatalf("state = %+v", st)
	}
	if d.Pending() != nil {
		t.Fatalf("pending = %q", d.Pending())
	}
	chunk := []byte("next\x1b[2Cline")
	got := d.Feed(chunk)
	want := NewDecoder(0).Feed(chunk)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("edits = %#v, want %#v", got, want)
	}
}
