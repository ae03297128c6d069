package gramvec

import (
	gramerrors "github.com/tamirms/gramvec/errors"
	"github.com/tamirms/gramvec/internal/ngram"
)

// HashingVectorizer converts rows of token keys into fixed-size count vectors
// via the hashing trick: each ngram is mapped to one of 1<<hashBits slots by
// a seeded content hash, with no dictionary state.
//
// A HashingVectorizer owns reused enumeration buffers and is NOT safe for
// concurrent use; use Clone to obtain independent instances for parallel row
// processing.
type HashingVectorizer struct {
	cfg    *config
	walker *ngram.Walker
	vec    *FeatureVector
	invert *invertCollector // nil unless WithInvertHash(!=0)
}

// NewHashingVectorizer creates a hashing vectorizer. All configuration errors
// surface here, never at first use.
func NewHashingVectorizer(opts ...Option) (*HashingVectorizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validateHashing(); err != nil {
		return nil, err
	}
	return newHashingVectorizer(cfg), nil
}

// newHashingVectorizer assembles an instance from a validated config.
// Also the Clone path: every instance gets its own finder (the gram hasher
// scratch buffer is mutable), walker, and vector.
func newHashingVectorizer(cfg *config) *HashingVectorizer {
	h := &HashingVectorizer{
		cfg: cfg,
		vec: NewFeatureVector(1 << cfg.hashBits),
	}
	finder := newHashFinder(cfg)
	if cfg.maxInverts != 0 {
		h.invert = newInvertCollector(cfg.maxInverts)
		finder = h.invert.wrap(finder)
	}
	h.walker = ngram.NewWalker(cfg.ngramLength, cfg.skipLength, finder, func(slot int32) {
		h.vec.AddFeature(slot, 1)
	})
	return h
}

// OutputWidth returns the output vector length, 1<<hashBits.
func (h *HashingVectorizer) OutputWidth() int {
	return 1 << h.cfg.hashBits
}

// Transform featurizes one row (one Tokens per source column) and returns the
// vectorizer's internal feature vector. The result is valid until the next
// Transform call; use CopyTo to retain it.
func (h *HashingVectorizer) Transform(row []Tokens) (*FeatureVector, error) {
	h.vec.Reset()
	for col, toks := range row {
		h.walker.Run(toks.Keys(), col, toks.KeyMax())
	}
	return h.vec, nil
}

// SlotNames renders one human-readable name per hash slot from the ngrams
// recorded by invert hashing. colNames may be nil when a single source column
// feeds the output. Returns ErrInversionDisabled unless the vectorizer was
// built with WithInvertHash.
func (h *HashingVectorizer) SlotNames(keyText KeyText, colNames []string) ([]string, error) {
	if h.invert == nil {
		return nil, gramerrors.ErrInversionDisabled
	}
	return h.invert.slotNames(h.OutputWidth(), keyText, colNames), nil
}

// Clone returns an independent vectorizer sharing only the immutable
// configuration. Clones do not collect inverted-hash records; slot naming is
// a single-pass, single-instance concern.
func (h *HashingVectorizer) Clone() Transformer {
	cfg := *h.cfg
	cfg.maxInverts = 0
	return newHashingVectorizer(&cfg)
}
