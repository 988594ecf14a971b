package history

import (
	"container/list"
	"sync"
	"time"
)

// DefaultSize is used when a non-positive size is configured.
const DefaultSize = 100

// Entry is one line sent to the device.
type Entry struct {
	Text   string
	SentAt time.Time
}

// History keeps recently sent lines, newest first, for up/down recall.
// Sending a line that is already present moves it to the front. When the
// history is full the oldest line is dropped.
type History struct {
	mu     sync.Mutex
	lru    *list.List
	byText map[string]*list.Element
	max    int
	now    func() time.Time
	cursor *list.Element
}

// New creates an empty history holding at most size lines.
func New(size int) *History {
	if size <= 0 {
		size = DefaultSize
	}
	return &History{
		lru:    list.New(),
		byText: make(map[string]*list.Element),
		max:    size,
		now:    time.Now,
	}
}

// Push records text as the newest line and ends any recall in progress.
func (h *History) Push(text string) {
	if h == nil || text == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = nil
	entry := Entry{Text: text, SentAt: h.now()}
	if elem, ok := h.byText[text]; ok {
		elem.Value = entry
		h.lru.MoveToFront(elem)
		return
	}
	h.byText[text] = h.lru.PushFront(entry)
	h.evictLocked()
}

// Prev steps to the next older line. It reports false when there is
// nothing older, leaving the cursor on the oldest line.
func (h *History) Prev() (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	next := h.lru.Front()
	if h.cursor != nil {
		next = h.cursor.Next()
	}
	if next == nil {
		return "", false
	}
	h.cursor = next
	return next.Value.(Entry).Text, true
}

// Next steps to the next newer line. Stepping past the newest line ends the
// recall and reports false, so the caller can restore its draft.
func (h *History) Next() (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == nil {
		return "", false
	}
	h.cursor = h.cursor.Prev()
	if h.cursor == nil {
		return "", false
	}
	return h.cursor.Value.(Entry).Text, true
}

// Reset ends any recall in progress.
func (h *History) Reset() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.cursor = nil
	h.mu.Unlock()
}

// Entries returns the lines, newest first.
func (h *History) Entries() []Entry {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, 0, h.lru.Len())
	for elem := h.lru.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(Entry))
	}
	return out
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lru.Len()
}

// SetMax changes the capacity, dropping the oldest lines if needed.
func (h *History) SetMax(size int) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if size <= 0 {
		size = DefaultSize
	}
	h.max = size
	h.evictLocked()
}

func (h *History) evictLocked() {
	for h.lru.Len() > h.max {
		back := h.lru.Back()
		if back == h.cursor {
			h.cursor = nil
		}
		delete(h.byText, back.Value.(Entry).Text)
		h.lru.Remove(back)
	}
}
