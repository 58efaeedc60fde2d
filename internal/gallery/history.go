package gallery

// DefaultHistorySize is the number of images kept for back/forward navigation.
const DefaultHistorySize = 20

// History is a bounded back/forward stack of image URLs.
type History struct {
	entries  []string
	pos      int // current position in the stack, -1 when empty
	capacity int
}

// NewHistory creates an empty history holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		entries:  make([]string, 0, capacity),
		pos:      -1,
		capacity: capacity,
	}
}

// Push adds a new URL to the history, truncating any forward entries.
// When the history is full the oldest entry is evicted.
func (h *History) Push(url string) {
	// If we're not at the end, truncate forward history.
	if h.pos < len(h.entries)-1 {
		h.entries = h.entries[:h.pos+1]
	}
	h.entries = append(h.entries, url)

	if len(h.entries) > h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.pos = len(h.entries) - 1
}

// Back moves one step back in history. Returns the URL and true if possible.
func (h *History) Back() (string, bool) {
	if !h.CanGoBack() {
		return "", false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Forward moves one step forward in history. Returns the URL and true if possible.
func (h *History) Forward() (string, bool) {
	if !h.CanGoForward() {
		return "", false
	}
	h.pos++
	return h.entries[h.pos], true
}

// Current returns the current URL, or false if history is empty.
func (h *History) Current() (string, bool) {
	if h.pos < 0 || h.pos >= len(h.entries) {
		return "", false
	}
	return h.entries[h.pos], true
}

// CanGoBack reports whether there is a previous entry.
func (h *History) CanGoBack() bool {
	return h.pos > 0
}

// CanGoForward reports whether there is a next entry.
func (h *History) CanGoForward() bool {
	return len(h.entries) > 0 && h.pos < len(h.entries)-1
}

// Position returns the zero-based cursor, or -1 if history is empty.
func (h *History) Position() int {
	return h.pos
}

// Len returns the total number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Cap returns the maximum number of entries retained.
func (h *History) Cap() int {
	return h.capacity
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear resets the history.
func (h *History) Clear() {
	h.entries = h.entries[:0]
	h.pos = -1
}
