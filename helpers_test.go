package gramvec

import (
	"encoding/binary"
	"hash/fnv"
	"iter"
	"math/rand/v2"
	"testing"
)

const (
	testSeed1 = 0x9ae16a3b2f90404f
	testSeed2 = 0xc3a5c85c97cb3127
)

// newTestRNG returns a deterministic RNG seeded from the test name so each
// test gets an independent but reproducible stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.BigEndian.Uint64(sum[:8])
	s2 := binary.BigEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// rowOf wraps one dense key slice as a single-column row with unbounded keys.
func rowOf(keys ...uint32) []Tokens {
	return []Tokens{NewTokens(keys, UnboundedKeyMax)}
}

// corpusOf turns prebuilt rows into the one-pass sequence Fit consumes.
func corpusOf(rows ...[]Tokens) iter.Seq[[]Tokens] {
	return func(yield func([]Tokens) bool) {
		for _, row := range rows {
			if !yield(row) {
				return
			}
		}
	}
}

// randomRows generates single-column rows of random keys in [1, vocab].
func randomRows(rng *rand.Rand, n, tokens int, vocab uint32) [][]Tokens {
	rows := make([][]Tokens, n)
	for i := range rows {
		keys := make([]uint32, tokens)
		for j := range keys {
			keys[j] = rng.Uint32N(vocab) + 1
		}
		rows[i] = rowOf(keys...)
	}
	return rows
}

// transformDense featurizes one row and densifies the result.
func transformDense(t *testing.T, tr Transformer, row []Tokens) []float64 {
	t.Helper()
	vec, err := tr.Transform(row)
	if err != nil {
		t.Fatalf("Transform() = %v", err)
	}
	return vec.CopyTo(nil)
}
