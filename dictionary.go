package gramvec

import (
	"context"
	"iter"
	"math"

	gramerrors "github.com/tamirms/gramvec/errors"
	"github.com/tamirms/gramvec/internal/ngram"
	"github.com/tamirms/gramvec/internal/pool"
)

// contextCheckInterval is how often Fit and TransformBatch poll the context
// for cancellation, in rows.
const contextCheckInterval = 10000

// DictionaryVectorizer converts rows of token keys into count vectors over an
// explicit ngram dictionary built from a training corpus.
//
// Lifecycle: construct, Fit once over the full corpus, then Transform rows.
// After Fit the trained artifacts (sequence pool, per-order emptiness flags,
// idf table) are immutable and safely shared by Clone instances; the
// vectorizer's own enumeration buffers are not, so a single instance is NOT
// safe for concurrent use.
type DictionaryVectorizer struct {
	cfg *config

	// Trained state, immutable after Fit.
	pool      *pool.SequencePool
	counts    []int  // retained ngrams per order
	nonEmpty  []bool // per order: any entry retained
	idf       []float64
	totalDocs int64
	fitted    bool

	// Fit-time state, released when Fit completes.
	full      []bool
	allFull   bool
	docCounts []int64
	lastSeen  []int64
	docSerial int64

	// Per-instance transform state.
	walker *ngram.Walker
	vec    *FeatureVector
}

// NewDictionaryVectorizer creates an unfitted dictionary vectorizer. All
// configuration errors surface here.
func NewDictionaryVectorizer(opts ...Option) (*DictionaryVectorizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validateDictionary(); err != nil {
		return nil, err
	}
	return &DictionaryVectorizer{
		cfg:    cfg,
		pool:   pool.New(cfg.poolSeed),
		counts: make([]int, cfg.ngramLength),
		full:   initialFull(cfg),
	}, nil
}

// initialFull seeds the per-order "cap reached" flags. When only full-length
// ngrams are wanted, shorter orders start out capped at zero entries.
func initialFull(cfg *config) []bool {
	full := make([]bool, cfg.ngramLength)
	if !cfg.allLengths {
		for i := 0; i < cfg.ngramLength-1; i++ {
			full[i] = true
		}
	}
	return full
}

// Fit builds the ngram dictionary over the training corpus: one pass that
// inserts ngrams subject to the per-order caps and, for idf-weighted modes,
// tallies per-document frequencies. Each corpus element is one row ([]Tokens,
// one entry per source column); a row is one document for idf purposes.
//
// The context is polled every contextCheckInterval rows.
func (v *DictionaryVectorizer) Fit(ctx context.Context, corpus iter.Seq[[]Tokens]) error {
	if v.fitted {
		return gramerrors.ErrAlreadyFitted
	}
	needIdf := v.cfg.weighting != Tf
	walker := ngram.NewWalker(v.cfg.ngramLength, v.cfg.skipLength,
		v.buildFinder(needIdf), v.tallyDocCount)

	rows := 0
	for row := range corpus {
		v.docSerial++
		rows++
		if rows%contextCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		for col, toks := range row {
			if !walker.Run(toks.Keys(), col, toks.KeyMax()) {
				// Finder aborted: every order is capped and idf is not
				// needed, so the rest of the row teaches us nothing.
				break
			}
		}
		if v.allFull && !needIdf {
			// Nothing left to learn from the remaining corpus either.
			break
		}
	}
	v.totalDocs = int64(rows)

	if v.pool.Count() == 0 {
		return gramerrors.ErrEmptyCorpus
	}

	v.nonEmpty = make([]bool, v.cfg.ngramLength)
	for i, n := range v.counts {
		v.nonEmpty[i] = n > 0
	}
	if needIdf {
		v.idf = make([]float64, v.pool.Count())
		for id, dc := range v.docCounts {
			if dc > 0 {
				v.idf[id] = math.Log(float64(v.totalDocs) / float64(dc))
			}
		}
	}

	// Release fit-only state and switch to lookup mode.
	v.full = nil
	v.docCounts = nil
	v.lastSeen = nil
	v.fitted = true
	v.initTransformState()
	return nil
}

// buildFinder returns the training-mode resolver. While an ngram's order is
// under its cap, candidates are inserted; once capped, occurrences still
// resolve to their existing id when idf is required (every row must be fully
// scanned for document counting), otherwise they resolve to nothing and, once
// every order is capped, the resolver signals the walker to stop.
func (v *DictionaryVectorizer) buildFinder(needIdf bool) ngram.Finder {
	return func(gram []uint32, col int, more *bool) int32 {
		order := len(gram) - 1
		if !v.full[order] {
			id, added := v.pool.TryAdd(gram)
			if added {
				v.counts[order]++
				v.docCounts = append(v.docCounts, 0)
				v.lastSeen = append(v.lastSeen, 0)
				if v.counts[order] >= v.cfg.limits[order] {
					v.full[order] = true
					v.allFull = true
					for _, f := range v.full {
						v.allFull = v.allFull && f
					}
				}
			}
			return id
		}
		if needIdf {
			return v.pool.Get(gram)
		}
		if v.allFull {
			*more = false
		}
		return -1
	}
}

// tallyDocCount is the fit-pass emit hook: each id counts at most once per
// document. docSerial acts as the per-row dedupe reset.
func (v *DictionaryVectorizer) tallyDocCount(slot int32) {
	if v.lastSeen[slot] != v.docSerial {
		v.lastSeen[slot] = v.docSerial
		v.docCounts[slot]++
	}
}

// initTransformState builds the lookup-mode walker and output vector.
// Called after Fit and by restore/clone paths once trained state is in place.
func (v *DictionaryVectorizer) initTransformState() {
	v.vec = NewFeatureVector(v.pool.Count())
	finder := func(gram []uint32, col int, more *bool) int32 {
		// An order with no retained entries is skipped without a lookup.
		if !v.nonEmpty[len(gram)-1] {
			return -1
		}
		return v.pool.Get(gram)
	}
	v.walker = ngram.NewWalker(v.cfg.ngramLength, v.cfg.skipLength, finder, func(slot int32) {
		v.vec.AddFeature(slot, 1)
	})
}

// Transform featurizes one row against the trained dictionary and returns the
// vectorizer's internal feature vector of width Count(). The result is valid
// until the next Transform call; use CopyTo to retain it.
//
// Weighting is applied at read time: Tf leaves raw term counts, Idf replaces
// each present term's count with its stored idf, TfIdf multiplies them.
func (v *DictionaryVectorizer) Transform(row []Tokens) (*FeatureVector, error) {
	if !v.fitted {
		return nil, gramerrors.ErrNotFitted
	}
	v.vec.Reset()
	for col, toks := range row {
		v.walker.Run(toks.Keys(), col, toks.KeyMax())
	}
	switch v.cfg.weighting {
	case Idf:
		v.vec.assign(func(slot int32) float64 { return v.idf[slot] })
	case TfIdf:
		v.vec.scale(func(slot int32) float64 { return v.idf[slot] })
	}
	return v.vec, nil
}

// OutputWidth returns the trained output vector length (the pool size), or 0
// before Fit.
func (v *DictionaryVectorizer) OutputWidth() int {
	if !v.fitted {
		return 0
	}
	return v.pool.Count()
}

// Count returns the number of retained ngrams across all orders.
func (v *DictionaryVectorizer) Count() int {
	return v.pool.Count()
}

// OrderCounts returns the number of retained ngrams per order (index 0 =
// unigrams).
func (v *DictionaryVectorizer) OrderCounts() []int {
	out := make([]int, len(v.counts))
	copy(out, v.counts)
	return out
}

// NonEmptyOrders reports, per order, whether any ngram was retained.
// Only meaningful after Fit.
func (v *DictionaryVectorizer) NonEmptyOrders() []bool {
	out := make([]bool, len(v.nonEmpty))
	copy(out, v.nonEmpty)
	return out
}

// Sequence returns the stored key sequence for a slot id as a read-only view.
// Precondition: 0 <= id < Count().
func (v *DictionaryVectorizer) Sequence(id int32) []uint32 {
	return v.pool.Sequence(id)
}

// IDF returns the stored inverse document frequency for a slot id, 0 when the
// weighting mode carries no idf table or the id was never observed.
func (v *DictionaryVectorizer) IDF(id int32) float64 {
	if v.idf == nil {
		return 0
	}
	return v.idf[id]
}

// TotalDocs returns the number of documents observed during Fit.
func (v *DictionaryVectorizer) TotalDocs() int64 {
	return v.totalDocs
}

// Weighting returns the configured read-time weighting mode.
func (v *DictionaryVectorizer) Weighting() Weighting {
	return v.cfg.weighting
}

// Fitted reports whether Fit has completed.
func (v *DictionaryVectorizer) Fitted() bool {
	return v.fitted
}

// Validate checks the trained dictionary's internal consistency. Intended as
// a hook for serialization layers after reload.
func (v *DictionaryVectorizer) Validate() error {
	return v.pool.Validate()
}

// SlotNames renders one name per dictionary slot directly from the stored
// sequences, using the caller's key-to-text table. Dictionary slots are
// column-agnostic, so keyText takes only the key.
func (v *DictionaryVectorizer) SlotNames(keyText func(key uint32) string) ([]string, error) {
	if !v.fitted {
		return nil, gramerrors.ErrNotFitted
	}
	names := make([]string, v.pool.Count())
	for id := range names {
		seq := v.pool.Sequence(int32(id))
		name := keyText(seq[0])
		for _, key := range seq[1:] {
			name += "|" + keyText(key)
		}
		names[id] = name
	}
	return names, nil
}

// Clone returns an independent vectorizer sharing the immutable trained
// artifacts (pool, idf table, emptiness flags) with fresh enumeration
// buffers. Cloning an unfitted vectorizer yields an independent unfitted one.
func (v *DictionaryVectorizer) Clone() Transformer {
	c := &DictionaryVectorizer{
		cfg:       v.cfg,
		pool:      v.pool,
		counts:    v.counts,
		nonEmpty:  v.nonEmpty,
		idf:       v.idf,
		totalDocs: v.totalDocs,
		fitted:    v.fitted,
	}
	if !v.fitted {
		c.pool = pool.New(v.cfg.poolSeed)
		c.counts = make([]int, v.cfg.ngramLength)
		c.full = initialFull(v.cfg)
		return c
	}
	c.initTransformState()
	return c
}
