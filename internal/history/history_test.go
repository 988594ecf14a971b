package history

import (
	"testing"
	"time"
)

func TestPushAndRecall(t *testing.T) {
	h := New(10)
	h.Push("help")
	h.Push("ls")
	h.Push("version")

	for _, want := range []string{"version", "ls", "help"} {
		got, ok := h.Prev()
		if !ok || got != want {
			t.Fatalf("prev = %q, %v, want %q", got, ok, want)
		}
	}
	if _, ok := h.Prev(); ok {
		t.Fatalf("expected no older entry")
	}
	got, ok := h.Next()
	if !ok || got != "ls" {
		t.Fatalf("next = %q, %v", got, ok)
	}
	got, ok = h.Next()
	if !ok || got != "version" {
		t.Fatalf("next = %q, %v", got, ok)
	}
	if _, ok := h.Next(); ok {
		t.Fatalf("expected recall to end past newest")
	}
	if got, _ := h.Prev(); got != "version" {
		t.Fatalf("prev after end = %q", got)
	}
}

func TestPushMovesDuplicateToFront(t *testing.T) {
	h := New(10)
	base := time.Unix(100, 0)
	h.now = func() time.Time { return base }
	h.Push("a")
	h.Push("b")
	h.now = func() time.Time { return base.Add(time.Minute) }
	h.Push("a")

	entries := h.Entries()
	if len(entries) != 2 || entries[0].Text != "a" || entries[1].Text != "b" {
		t.Fatalf("entries = %#v", entries)
	}
	if !entries[0].SentAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("sent at = %v", entries[0].SentAt)
	}
}

func TestEvictsOldest(t *testing.T) {
	h := New(2)
	h.Push("one")
	h.Push("two")
	h.Push("three")
	entries := h.Entries()
	if len(entries) != 2 || entries[1].Text != "two" {
		t.Fatalf("entries = %#v", entries)
	}
	h.SetMax(1)
	if h.Len() != 1 {
		t.Fatalf("len = %d", h.Len())
	}
}

func TestEmptyAndNil(t *testing.T) {
	h := New(0)
	h.Push("")
	if h.Len() != 0 {
		t.Fatalf("empty line stored")
	}
	if _, ok := h.Prev(); ok {
		t.Fatalf("prev on empty history")
	}
	var nilHistory *History
	nilHistory.Push("x")
	if nilHistory.Len() != 0 || nilHistory.Entries() != nil {
		t.Fatalf("nil history not inert")
	}
}

func TestPushResetsCursor(t *testing.T) {
	h := New(5)
	h.Push("a")
	h.Push("b")
	_, _ = h.Prev()
	_, _ = h.Prev()
	h.Push("c")
	if got, _ := h.Prev(); got != "c" {
		t.Fatalf("prev = %q", got)
	}
}
