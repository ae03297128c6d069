package ngram

import "iter"

// MaxSkipNgramLength is the maximum supported value of ngramLength+skipLength.
// It bounds both the window capacity and the skip-DFS recursion depth.
const MaxSkipNgramLength = 10

// Finder maps one ngram to a slot id.
//
// gram is the walker's reused buffer truncated to the valid length; callers
// that retain a gram beyond the call must copy it. col is the source-column
// ordinal. A return of -1 means the ngram maps to no slot and nothing is
// recorded. Setting *more to false tells the walker to stop enumerating
// further ngrams; the walker then aborts the remainder of the row, so finders
// should clear it only when nothing later in the row can matter.
type Finder func(gram []uint32, col int, more *bool) int32

// Emit receives every non-negative slot id resolved by the Finder.
type Emit func(slot int32)

// Walker enumerates all ngrams and skip-grams of a token stream.
//
// It owns a Window of exactly ngramLength+skipLength keys and a reused gram
// buffer of ngramLength keys. A Walker is not safe for concurrent use; create
// one per worker.
type Walker struct {
	ngramLength int
	skipLength  int
	window      *Window
	gram        []uint32
	finder      Finder
	emit        Emit
}

// NewWalker creates a walker. Arguments are assumed validated by the caller:
// ngramLength >= 1, skipLength >= 0, and their sum at most MaxSkipNgramLength.
func NewWalker(ngramLength, skipLength int, finder Finder, emit Emit) *Walker {
	if ngramLength < 1 || skipLength < 0 || ngramLength+skipLength > MaxSkipNgramLength {
		panic("ngram: invalid walker geometry")
	}
	return &Walker{
		ngramLength: ngramLength,
		skipLength:  skipLength,
		window:      NewWindow(ngramLength + skipLength),
		gram:        make([]uint32, ngramLength),
		finder:      finder,
		emit:        emit,
	}
}

// Run feeds one column's token keys through the window and emits every ngram
// and skip-gram starting at every position. Keys above keyMax are remapped to
// 0. Returns false if a finder aborted the row early.
func (w *Walker) Run(keys iter.Seq[uint32], col int, keyMax uint32) bool {
	w.window.Clear()
	for key := range keys {
		if key > keyMax {
			key = 0
		}
		w.window.AddLast(key)
		if w.window.Full() {
			if !w.emitFromWindow(col) {
				w.window.Clear()
				return false
			}
			w.window.RemoveFirst()
		}
	}
	// Drain: emit ngrams starting at each remaining position.
	for w.window.Len() > 0 {
		if !w.emitFromWindow(col) {
			w.window.Clear()
			return false
		}
		w.window.RemoveFirst()
	}
	return true
}

// emitFromWindow emits every ngram starting at the window's oldest key: the
// unigram first, then either the contiguous extension loop (skipLength == 0)
// or the skip DFS. Returns false once a finder clears more.
func (w *Walker) emitFromWindow(col int) bool {
	count := w.window.Len()
	if count == 0 {
		return true
	}
	more := true
	w.gram[0] = w.window.At(0)
	if slot := w.finder(w.gram[:1], col, &more); slot >= 0 {
		w.emit(slot)
	}
	if w.ngramLength == 1 || !more {
		return more
	}
	if w.skipLength > 0 {
		return w.emitSkip(col, 1, 0)
	}
	for i := 1; i < w.ngramLength && i < count; i++ {
		w.gram[i] = w.window.At(i)
		if slot := w.finder(w.gram[:i+1], col, &more); slot >= 0 {
			w.emit(slot)
		}
		if !more {
			return false
		}
	}
	return true
}

// emitSkip extends the gram one term at a time. lim is the number of terms
// already chosen, skips the skips already spent; each extension retries every
// skip offset from skips up to skipLength, bounded by the window length.
// Recursion depth is bounded by ngramLength.
func (w *Walker) emitSkip(col, lim, skips int) bool {
	count := w.window.Len()
	more := true
	for k := skips; k <= w.skipLength && lim+k < count; k++ {
		w.gram[lim] = w.window.At(lim + k)
		if slot := w.finder(w.gram[:lim+1], col, &more); slot >= 0 {
			w.emit(slot)
		}
		if lim+1 < w.ngramLength && more {
			if !w.emitSkip(col, lim+1, k) {
				return false
			}
		}
		if !more {
			return false
		}
	}
	return true
}
