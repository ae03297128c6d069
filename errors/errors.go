// Package errors defines all exported error sentinels for the gramvec library.
//
// This is the single source of truth for error values. Both the top-level
// gramvec package and internal packages import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// Configuration errors (surfaced at construction, never deferred to first use)
var (
	ErrInvalidNgramLength = errors.New("gramvec: ngram length must be at least 1")
	ErrInvalidSkipLength  = errors.New("gramvec: skip length must be non-negative")
	ErrNgramTooLong       = errors.New("gramvec: ngram length plus skip length exceeds maximum (10)")
	ErrInvalidHashBits    = errors.New("gramvec: hash bits out of range")
	ErrInvalidMaxInverts  = errors.New("gramvec: max inverts must be -1 or greater")
	ErrLimitsMismatch     = errors.New("gramvec: per-order limit count does not match ngram length")
	ErrInvalidLimit       = errors.New("gramvec: per-order limit must be at least 1")
	ErrInvalidWeighting   = errors.New("gramvec: unknown weighting mode")
)

// Lifecycle errors
var (
	ErrInversionDisabled = errors.New("gramvec: invert hashing was not enabled")

	ErrNotFitted     = errors.New("gramvec: vectorizer has not been fitted")
	ErrAlreadyFitted = errors.New("gramvec: vectorizer is already fitted")
	ErrEmptyCorpus   = errors.New("gramvec: training corpus produced no retained ngrams")
)

// Model file errors
var (
	ErrInvalidMagic   = errors.New("gramvec: invalid magic number")
	ErrInvalidVersion = errors.New("gramvec: unsupported model version")
	ErrTruncatedFile  = errors.New("gramvec: model file is truncated")
	ErrCorruptedModel = errors.New("gramvec: model data is corrupted")
	ErrChecksumFailed = errors.New("gramvec: model checksum verification failed")
)

// Internal consistency errors (exposed for serialization-layer validation hooks)
var (
	ErrPoolInconsistent = errors.New("gramvec: sequence pool is internally inconsistent")
)
