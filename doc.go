// Package gramvec extracts ngram and skip-gram features from sequences of
// integer token keys and converts them into sparse numeric count vectors,
// either via the hashing trick or via an explicit trained dictionary.
//
// The input contract is deliberately small: each row delivers, per source
// column, a sequence of uint32 token keys (dense or sparse with implicit
// zeros) plus that column's key-space bound. Tokenization, normalization and
// schema management belong to the caller.
//
// # Basic Usage
//
// Hashing featurization (stateless, fixed 1<<bits output width):
//
//	hv, err := gramvec.NewHashingVectorizer(
//	    gramvec.WithNgramLength(2),
//	    gramvec.WithHashBits(16),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vec, _ := hv.Transform([]gramvec.Tokens{gramvec.NewTokens(keys, keyMax)})
//	dense := vec.CopyTo(nil)
//
// Dictionary featurization (one Fit pass over the training corpus, then
// lookup-only transforms):
//
//	dv, err := gramvec.NewDictionaryVectorizer(
//	    gramvec.WithNgramLength(2),
//	    gramvec.WithWeighting(gramvec.TfIdf),
//	    gramvec.WithMaxTermsPerOrder(100000),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := dv.Fit(ctx, corpus); err != nil {
//	    log.Fatal(err)
//	}
//	vec, err := dv.Transform(row)
//
// Trained dictionaries round-trip through model files:
//
//	if err := dv.SaveModel("ngrams.grvc"); err != nil {
//	    log.Fatal(err)
//	}
//	dv2, err := gramvec.OpenModel("ngrams.grvc")
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Public API: hashing_vectorizer.go, dictionary.go, tokens.go, vector.go
//   - Configuration: options.go (Option, With* functions)
//   - Hashing: hashing.go (content hash, round/mix, finder specialization)
//   - Slot naming: invert.go (invert-hash collection)
//   - Serialization: header.go, model_writer.go, model.go
//   - Parallel transform: batch.go (Transformer, TransformBatch)
//   - Enumeration core: internal/ngram (window + skip-gram walker)
//   - Dictionary store: internal/pool (sequence pool)
//   - Platform: fallocate_*.go, fadvise_*.go (OS-specific optimizations)
package gramvec
