package display

import (
	"strings"
	"sync"

	"golang.org/x/text/encoding/charmap"

	"github.com/suryansh-23/btterm/internal/ansi"
	"github.com/suryansh-23/btterm/internal/types"
)

// DefaultScrollback is the rune cap used when none is configured.
const DefaultScrollback = 256 * 1024

// Span marks text[Start:End] as drawn in Style.
type Span struct {
	Start int
	End   int
	Style types.Style
}

// Segment is a styled run of display text.
type Segment struct {
	Text  string
	Style types.Style
}

// Buffer is the append-only scrollback shown to the user. Received bytes are
// mapped one byte to one rune through the configured charset. When the buffer
// grows past its limit the oldest text is dropped.
type Buffer struct {
	mu      sync.RWMutex
	text    []rune
	spans   []Span
	charmap *charmap.Charmap
	limit   int
	version uint64
}

// New returns an empty buffer. A non-positive limit selects DefaultScrollback.
func New(charset types.Charset, limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultScrollback
	}
	return &Buffer{charmap: lookupCharmap(charset), limit: limit}
}

func lookupCharmap(charset types.Charset) *charmap.Charmap {
	switch charset {
	case types.CharsetCP437:
		return charmap.CodePage437
	default:
		return charmap.ISO8859_1
	}
}

// Apply runs edits in order.
func (b *Buffer) Apply(edits []ansi.Edit) {
	if len(edits) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range edits {
		switch e.Kind {
		case ansi.EditAppend:
			b.appendLocked(b.decode(e.Bytes), e.Style)
		case ansi.EditErase:
			b.eraseLocked(e.Count)
		case ansi.EditSpaces:
			if e.Count > 0 {
				b.appendLocked([]rune(strings.Repeat(" ", e.Count)), types.StyleReceived)
			}
		case ansi.EditClear:
			b.clearLocked()
		}
	}
	b.trimLocked()
	b.version++
}

// AppendBytes appends raw device bytes in the given style.
func (b *Buffer) AppendBytes(p []byte, style types.Style) {
	b.Apply([]ansi.Edit{ansi.Append(p, style)})
}

// AppendString appends already-decoded text, such as status lines and
// echoed input.
func (b *Buffer) AppendString(s string, style types.Style) {
	if s == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked([]rune(s), style)
	b.trimLocked()
	b.version++
}

// Erase removes up to n trailing characters.
func (b *Buffer) Erase(n int) {
	b.Apply([]ansi.Edit{ansi.Erase(n)})
}

// Spaces appends n spaces.
func (b *Buffer) Spaces(n int) {
	b.Apply([]ansi.Edit{ansi.Spaces(n)})
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.Apply([]ansi.Edit{ansi.Clear()})
}

// Len returns the number of characters held.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// String returns the whole buffer without styling.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.text)
}

// Version increases on every mutation.
func (b *Buffer) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Spans returns a copy of the style spans.
func (b *Buffer) Spans() []Span {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Span(nil), b.spans...)
}

// Segments returns the buffer as styled runs in order.
func (b *Buffer) Segments() []Segment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Segment, 0, len(b.spans))
	for _, sp := range b.spans {
		out = append(out, Segment{Text: string(b.text[sp.Start:sp.End]), Style: sp.Style})
	}
	return out
}

func (b *Buffer) decode(p []byte) []rune {
	out := make([]rune, len(p))
	for i, c := range p {
		out[i] = b.charmap.DecodeByte(c)
	}
	return out
}

func (b *Buffer) appendLocked(r []rune, style types.Style) {
	if len(r) == 0 {
		return
	}
	start := len(b.text)
	b.text = append(b.text, r...)
	if n := len(b.spans); n > 0 && b.spans[n-1].Style == style && b.spans[n-1].End == start {
		b.spans[n-1].End = len(b.text)
		return
	}
	b.spans = append(b.spans, Span{Start: start, End: len(b.text), Style: style})
}

func (b *Buffer) eraseLocked(n int) {
	if n <= 0 {
		return
	}
	n = min(n, len(b.text))
	b.text = b.text[:len(b.text)-n]
	end := len(b.text)
	for len(b.spans) > 0 {
		last := &b.spans[len(b.spans)-1]
		if last.Start >= end {
			b.spans = b.spans[:len(b.spans)-1]
			continue
		}
		last.End = min(last.End, end)
		break
	}
}

func (b *Buffer) clearLocked() {
	b.text = b.text[:0]
	b.spans = b.spans[:0]
}

func (b *Buffer) trimLocked() {
	excess := len(b.text) - b.limit
	if excess <= 0 {
		return
	}
	b.text = append(b.text[:0], b.text[excess:]...)
	kept := b.spans[:0]
	for _, sp := range b.spans {
		if sp.End <= excess {
			continue
		}
		sp.Start = max(sp.Start-excess, 0)
		sp.End -= excess
		kept = append(kept, sp)
	}
	b.spans = kept
}
