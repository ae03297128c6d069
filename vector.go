package gramvec

import "iter"

// FeatureVector accumulates additive float counts by slot index.
//
// It is built once per output column and reused row to row: Reset is O(1)
// amortized via generation marking, so clearing between rows never rescans
// the previous row's contents. Not safe for concurrent use.
type FeatureVector struct {
	values  []float64
	mark    []uint32
	gen     uint32
	touched []int32
}

// NewFeatureVector creates a vector with the given fixed width.
func NewFeatureVector(width int) *FeatureVector {
	return &FeatureVector{
		values: make([]float64, width),
		mark:   make([]uint32, width),
		gen:    1,
	}
}

// Width returns the fixed slot count.
func (v *FeatureVector) Width() int {
	return len(v.values)
}

// AddFeature adds weight to the given slot.
// Precondition: 0 <= slot < Width().
func (v *FeatureVector) AddFeature(slot int32, weight float64) {
	if v.mark[slot] != v.gen {
		v.mark[slot] = v.gen
		v.values[slot] = 0
		v.touched = append(v.touched, slot)
	}
	v.values[slot] += weight
}

// Reset clears the vector for the next row without rescanning slots.
func (v *FeatureVector) Reset() {
	v.gen++
	if v.gen == 0 {
		// Generation counter wrapped; invalidate all stale marks.
		clear(v.mark)
		v.gen = 1
	}
	v.touched = v.touched[:0]
}

// Value returns the accumulated weight at slot, 0 if untouched this row.
func (v *FeatureVector) Value(slot int32) float64 {
	if v.mark[slot] != v.gen {
		return 0
	}
	return v.values[slot]
}

// Len returns the number of slots touched since the last Reset.
func (v *FeatureVector) Len() int {
	return len(v.touched)
}

// NonZero iterates the touched slots and their weights in first-touch order.
func (v *FeatureVector) NonZero() iter.Seq2[int32, float64] {
	return func(yield func(int32, float64) bool) {
		for _, slot := range v.touched {
			if !yield(slot, v.values[slot]) {
				return
			}
		}
	}
}

// CopyTo densifies the vector into dst, which is grown if needed, and
// returns it. Untouched slots are zero.
func (v *FeatureVector) CopyTo(dst []float64) []float64 {
	if cap(dst) < len(v.values) {
		dst = make([]float64, len(v.values))
	}
	dst = dst[:len(v.values)]
	clear(dst)
	for _, slot := range v.touched {
		dst[slot] = v.values[slot]
	}
	return dst
}

// scale multiplies every touched slot by f(slot). Used to apply IDF weighting
// after term counting.
func (v *FeatureVector) scale(f func(slot int32) float64) {
	for _, slot := range v.touched {
		v.values[slot] *= f(slot)
	}
}

// assign replaces every touched slot's value with f(slot). Used for
// indicator-style weighting.
func (v *FeatureVector) assign(f func(slot int32) float64) {
	for _, slot := range v.touched {
		v.values[slot] = f(slot)
	}
}
