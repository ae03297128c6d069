// Package ngram implements the sliding-window ngram and skip-gram enumeration
// core. A Walker slides a fixed-capacity Window over one column's token keys
// and routes every discovered ngram through a caller-supplied Finder.
package ngram

// Window is a fixed-capacity ring buffer of token keys, oldest first.
//
// The capacity is set at construction and never changes. It holds exactly the
// trailing ngramLength+skipLength tokens needed to emit every ngram and
// skip-gram that starts at the current oldest element.
type Window struct {
	buf   []uint32
	head  int // index of the oldest element
	count int
}

// NewWindow creates a window with the given capacity.
// Capacity must be at least 1; the Walker constructor validates its inputs
// before sizing the window, so this is asserted rather than returned.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		panic("ngram: window capacity must be at least 1")
	}
	return &Window{buf: make([]uint32, capacity)}
}

// Cap returns the fixed capacity.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Len returns the number of buffered keys.
func (w *Window) Len() int {
	return w.count
}

// Full reports whether the window holds Cap() keys.
func (w *Window) Full() bool {
	return w.count == len(w.buf)
}

// AddLast appends a key, evicting the oldest key if the window is full.
func (w *Window) AddLast(key uint32) {
	tail := w.head + w.count
	if tail >= len(w.buf) {
		tail -= len(w.buf)
	}
	w.buf[tail] = key
	if w.count == len(w.buf) {
		// Evict: the slot we just wrote was the old head.
		w.head++
		if w.head == len(w.buf) {
			w.head = 0
		}
	} else {
		w.count++
	}
}

// RemoveFirst drops the oldest key. No-op on an empty window.
func (w *Window) RemoveFirst() {
	if w.count == 0 {
		return
	}
	w.head++
	if w.head == len(w.buf) {
		w.head = 0
	}
	w.count--
}

// Clear logically resets the window in O(1).
func (w *Window) Clear() {
	w.head = 0
	w.count = 0
}

// At returns the i-th buffered key, 0 being the oldest.
// Precondition: 0 <= i < Len().
func (w *Window) At(i int) uint32 {
	idx := w.head + i
	if idx >= len(w.buf) {
		idx -= len(w.buf)
	}
	return w.buf[idx]
}
