package gramvec

import (
	"encoding/binary"
	"math/bits"

	"github.com/spaolacci/murmur3"

	"github.com/tamirms/gramvec/internal/ngram"
)

// MurmurHash3 x86/32 constants, shared by the round and mix steps so that
// folding a scalar into a content hash stays in the same family as the hash
// itself.
const (
	murmurC1 = 0xcc9e2d51
	murmurC2 = 0x1b873593
)

// gramHasher computes seeded, order-sensitive content hashes of ngrams.
// It owns a reused byte scratch buffer and is not safe for concurrent use.
type gramHasher struct {
	seed    uint32
	scratch []byte
}

func newGramHasher(seed uint32, maxLen int) *gramHasher {
	return &gramHasher{seed: seed, scratch: make([]byte, 4*maxLen)}
}

// hash returns the seeded MurmurHash3 of the gram's little-endian bytes.
// Deterministic across runs for a given seed: persisted models are scored
// against the same hash space they were built in.
func (g *gramHasher) hash(gram []uint32) uint32 {
	buf := g.scratch[:4*len(gram)]
	for i, k := range gram {
		binary.LittleEndian.PutUint32(buf[4*i:], k)
	}
	return murmur3.Sum32WithSeed(buf, g.seed)
}

// hashRound folds one scalar into a running hash using a single MurmurHash3
// block round. Cheap, but weak on its own: callers must finish with hashMix.
func hashRound(h, k uint32) uint32 {
	k *= murmurC1
	k = bits.RotateLeft32(k, 15)
	k *= murmurC2
	h ^= k
	h = bits.RotateLeft32(h, 13)
	return h*5 + 0xe6546b64
}

// hashMix is the MurmurHash3 finalizer. Applied after hashRound so the cheap
// ordinal fold does not produce trivial collisions in the masked slot space.
func hashMix(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// newHashFinder builds the slot resolver for a hashing column, specialized
// once at setup over the configured boolean axes so the per-ngram hot path
// carries no redundant branches.
//
// The essential behaviors:
//   - strict length (!allLengths, ngramLength > 1): grams shorter than the
//     configured length resolve to -1
//   - raw unigrams (!rehashUnigrams): a single key's numeric value is the
//     pre-mask value, saving a hash call
//   - ordered: the source column ordinal is folded in via one hash round,
//     then the mix finalizer is applied
func newHashFinder(cfg *config) ngram.Finder {
	mask := uint32(1)<<cfg.hashBits - 1
	hasher := newGramHasher(cfg.seed, cfg.ngramLength)

	if cfg.ngramLength == 1 {
		switch {
		case !cfg.rehashUnigrams && !cfg.ordered:
			return func(gram []uint32, col int, more *bool) int32 {
				return int32(gram[0] & mask)
			}
		case !cfg.rehashUnigrams && cfg.ordered:
			return func(gram []uint32, col int, more *bool) int32 {
				return int32(hashMix(hashRound(gram[0], uint32(col))) & mask)
			}
		case cfg.rehashUnigrams && !cfg.ordered:
			return func(gram []uint32, col int, more *bool) int32 {
				return int32(hasher.hash(gram) & mask)
			}
		default:
			return func(gram []uint32, col int, more *bool) int32 {
				return int32(hashMix(hashRound(hasher.hash(gram), uint32(col))) & mask)
			}
		}
	}

	if !cfg.allLengths {
		// Only full-length grams are featurized; shorter windows resolve to
		// nothing and the walker keeps extending.
		n := cfg.ngramLength
		if !cfg.ordered {
			return func(gram []uint32, col int, more *bool) int32 {
				if len(gram) < n {
					return -1
				}
				return int32(hasher.hash(gram) & mask)
			}
		}
		return func(gram []uint32, col int, more *bool) int32 {
			if len(gram) < n {
				return -1
			}
			return int32(hashMix(hashRound(hasher.hash(gram), uint32(col))) & mask)
		}
	}

	switch {
	case !cfg.rehashUnigrams && !cfg.ordered:
		return func(gram []uint32, col int, more *bool) int32 {
			if len(gram) == 1 {
				return int32(gram[0] & mask)
			}
			return int32(hasher.hash(gram) & mask)
		}
	case !cfg.rehashUnigrams && cfg.ordered:
		return func(gram []uint32, col int, more *bool) int32 {
			var h uint32
			if len(gram) == 1 {
				h = gram[0]
			} else {
				h = hasher.hash(gram)
			}
			return int32(hashMix(hashRound(h, uint32(col))) & mask)
		}
	case cfg.rehashUnigrams && !cfg.ordered:
		return func(gram []uint32, col int, more *bool) int32 {
			return int32(hasher.hash(gram) & mask)
		}
	default:
		return func(gram []uint32, col int, more *bool) int32 {
			return int32(hashMix(hashRound(hasher.hash(gram), uint32(col))) & mask)
		}
	}
}
