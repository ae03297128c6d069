package gramvec

import (
	"iter"
	"math"
)

// UnboundedKeyMax disables key-range clamping for a column: every uint32 key
// is considered valid.
const UnboundedKeyMax = uint32(math.MaxUint32)

// Tokens holds one source column's token keys for a single row, either as a
// dense slice or as sparse index/value pairs with implicit zeros elsewhere.
//
// Key 0 is the "missing/out of range" key; it participates in enumeration
// like any other key. Keys above KeyMax are remapped to 0 by the enumerator.
type Tokens struct {
	dense   []uint32
	indices []int
	values  []uint32
	sparse  bool
	length  int
	keyMax  uint32
}

// NewTokens wraps a dense key slice. The slice is not copied; callers must
// not modify it while the row is being processed.
func NewTokens(keys []uint32, keyMax uint32) Tokens {
	return Tokens{dense: keys, length: len(keys), keyMax: keyMax}
}

// NewSparseTokens wraps a sparse column of the given logical length.
// indices must be strictly increasing positions in [0, length); values[i] is
// the key at indices[i]. Positions without an explicit value hold key 0.
// Neither slice is copied.
func NewSparseTokens(length int, indices []int, values []uint32, keyMax uint32) Tokens {
	return Tokens{indices: indices, values: values, sparse: true, length: length, keyMax: keyMax}
}

// Len returns the logical number of tokens in the column.
func (t Tokens) Len() int {
	return t.length
}

// KeyMax returns the column's upper bound on valid keys.
func (t Tokens) KeyMax() uint32 {
	return t.keyMax
}

// Keys iterates the column's keys in position order, expanding implicit
// zeros for sparse columns.
func (t Tokens) Keys() iter.Seq[uint32] {
	if !t.sparse {
		return func(yield func(uint32) bool) {
			for _, k := range t.dense {
				if !yield(k) {
					return
				}
			}
		}
	}
	return func(yield func(uint32) bool) {
		next := 0
		for pos := 0; pos < t.length; pos++ {
			key := uint32(0)
			if next < len(t.indices) && t.indices[next] == pos {
				key = t.values[next]
				next++
			}
			if !yield(key) {
				return
			}
		}
	}
}
