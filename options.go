package gramvec

import (
	"fmt"

	gramerrors "github.com/tamirms/gramvec/errors"
	"github.com/tamirms/gramvec/internal/ngram"
)

const (
	// defaultMaxTermsPerOrder caps each ngram order's dictionary size when no
	// explicit limit is configured.
	defaultMaxTermsPerOrder = 10_000_000

	// maxOrderedHashBits is the hashBits ceiling. 31 would require a vector
	// of length 2^31; inversion additionally reserves a bit for slot-name
	// bookkeeping, capping at 30.
	maxHashBits       = 31
	maxInvertHashBits = 30
)

// Weighting selects how dictionary slot values are computed at read time.
type Weighting uint8

const (
	// Tf is the raw term frequency.
	Tf Weighting = iota
	// Idf is an indicator scaled by inverse document frequency: 0 if the
	// term is absent, its stored idf otherwise.
	Idf
	// TfIdf is the product of term frequency and inverse document frequency.
	TfIdf
)

// String returns the weighting name.
func (w Weighting) String() string {
	switch w {
	case Tf:
		return "tf"
	case Idf:
		return "idf"
	case TfIdf:
		return "tfidf"
	default:
		return "unknown"
	}
}

// Option is a functional option for configuring vectorizers.
type Option func(*config)

type config struct {
	ngramLength    int
	skipLength     int
	allLengths     bool
	hashBits       int
	seed           uint32
	ordered        bool
	rehashUnigrams bool
	maxInverts     int // 0 disables inversion, -1 unbounded
	weighting      Weighting
	limits         []int // per-order dictionary caps; nil = default for all
	poolSeed       uint64
}

func defaultConfig() *config {
	return &config{
		ngramLength: 2,
		skipLength:  0,
		allLengths:  true,
		hashBits:    16,
		seed:        314489979, // Arbitrary default; overridden via WithSeed
		ordered:     true,
		weighting:   Tf,
		poolSeed:    0x9b4e1c5d2f8a6073,
	}
}

// WithNgramLength sets the maximum ngram length (number of terms).
func WithNgramLength(n int) Option {
	return func(c *config) {
		c.ngramLength = n
	}
}

// WithSkipLength sets the maximum number of tokens that may be skipped when
// constructing an ngram.
func WithSkipLength(n int) Option {
	return func(c *config) {
		c.skipLength = n
	}
}

// WithAllLengths controls whether all ngram lengths up to the maximum are
// featurized (true) or only the maximum length (false).
func WithAllLengths(all bool) Option {
	return func(c *config) {
		c.allLengths = all
	}
}

// WithHashBits sets the number of bits of the hashing output space; the
// output vector has 1<<bits slots.
func WithHashBits(bits int) Option {
	return func(c *config) {
		c.hashBits = bits
	}
}

// WithSeed sets the hashing seed. Models scored against a persisted hash
// space must be built with the same seed.
func WithSeed(seed uint32) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithOrdered controls whether the source column ordinal is folded into the
// hash, disambiguating identical ngrams from different source columns.
func WithOrdered(ordered bool) Option {
	return func(c *config) {
		c.ordered = ordered
	}
}

// WithRehashUnigrams controls whether unigram keys are hashed rather than
// used directly as the pre-mask value.
func WithRehashUnigrams(rehash bool) Option {
	return func(c *config) {
		c.rehashUnigrams = rehash
	}
}

// WithInvertHash enables invert hashing: up to maxInverts distinct ngrams are
// remembered per hash slot for slot naming. -1 means unbounded, 0 disables.
func WithInvertHash(maxInverts int) Option {
	return func(c *config) {
		c.maxInverts = maxInverts
	}
}

// WithWeighting sets the dictionary read-time weighting mode.
func WithWeighting(w Weighting) Option {
	return func(c *config) {
		c.weighting = w
	}
}

// WithMaxTermsPerOrder caps how many distinct ngrams of each order the
// dictionary retains. A single value applies to every order; otherwise one
// value per order (length must equal the ngram length) is required.
// The limits slice is copied.
func WithMaxTermsPerOrder(limits ...int) Option {
	return func(c *config) {
		c.limits = append([]int(nil), limits...)
	}
}

// WithPoolSeed sets the sequence pool's content-hash seed.
func WithPoolSeed(seed uint64) Option {
	return func(c *config) {
		c.poolSeed = seed
	}
}

// validateGeometry checks the enumeration geometry shared by both
// vectorizers.
func (c *config) validateGeometry() error {
	if c.ngramLength < 1 {
		return fmt.Errorf("%w: got %d", gramerrors.ErrInvalidNgramLength, c.ngramLength)
	}
	if c.skipLength < 0 {
		return fmt.Errorf("%w: got %d", gramerrors.ErrInvalidSkipLength, c.skipLength)
	}
	if c.ngramLength+c.skipLength > ngram.MaxSkipNgramLength {
		return fmt.Errorf("%w: got %d+%d", gramerrors.ErrNgramTooLong, c.ngramLength, c.skipLength)
	}
	return nil
}

// validateHashing checks hashing-specific configuration.
func (c *config) validateHashing() error {
	if err := c.validateGeometry(); err != nil {
		return err
	}
	if c.maxInverts < -1 {
		return fmt.Errorf("%w: got %d", gramerrors.ErrInvalidMaxInverts, c.maxInverts)
	}
	limit := maxHashBits
	if c.maxInverts != 0 {
		limit = maxInvertHashBits
	}
	if c.hashBits < 1 || c.hashBits > limit {
		return fmt.Errorf("%w: got %d, want 1..%d", gramerrors.ErrInvalidHashBits, c.hashBits, limit)
	}
	return nil
}

// validateDictionary checks dictionary-specific configuration and expands the
// per-order limits to one entry per order.
func (c *config) validateDictionary() error {
	if err := c.validateGeometry(); err != nil {
		return err
	}
	if c.weighting > TfIdf {
		return fmt.Errorf("%w: got %d", gramerrors.ErrInvalidWeighting, c.weighting)
	}
	switch len(c.limits) {
	case 0:
		c.limits = make([]int, c.ngramLength)
		for i := range c.limits {
			c.limits[i] = defaultMaxTermsPerOrder
		}
	case 1:
		one := c.limits[0]
		c.limits = make([]int, c.ngramLength)
		for i := range c.limits {
			c.limits[i] = one
		}
	case c.ngramLength:
	default:
		return fmt.Errorf("%w: got %d limits for ngram length %d",
			gramerrors.ErrLimitsMismatch, len(c.limits), c.ngramLength)
	}
	for i, lim := range c.limits {
		if lim < 1 {
			return fmt.Errorf("%w: order %d has limit %d", gramerrors.ErrInvalidLimit, i+1, lim)
		}
	}
	return nil
}
