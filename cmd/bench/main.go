// Bench is a benchmarking tool for measuring gramvec fit and transform
// throughput and memory usage on a synthetic token corpus.
//
// Usage:
//
//	go run ./cmd/bench -rows 100000 -mode dict -ngram 2 -skip 1
//
// Flags:
//
//	-rows     Number of corpus rows (default: 100,000)
//	-tokens   Tokens per row (default: 200)
//	-vocab    Vocabulary size, keys are drawn uniformly (default: 50,000)
//	-mode     Featurizer: hash or dict (default: hash)
//	-ngram    Maximum ngram length (default: 2)
//	-skip     Maximum skip length (default: 0)
//	-bits     Hash bits for hash mode (default: 16)
//	-weight   Weighting for dict mode: tf, idf, tfidf (default: tf)
//	-workers  Transform workers (default: 1)
package main

import (
	"context"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/tamirms/gramvec"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

func main() {
	rowsFlag := flag.Int("rows", 100_000, "number of corpus rows")
	tokensFlag := flag.Int("tokens", 200, "tokens per row")
	vocabFlag := flag.Int("vocab", 50_000, "vocabulary size")
	modeFlag := flag.String("mode", "hash", "featurizer: hash or dict")
	ngramFlag := flag.Int("ngram", 2, "maximum ngram length")
	skipFlag := flag.Int("skip", 0, "maximum skip length")
	bitsFlag := flag.Int("bits", 16, "hash bits (hash mode)")
	weightFlag := flag.String("weight", "tf", "weighting for dict mode: tf, idf, tfidf")
	workersFlag := flag.Int("workers", 1, "transform workers")
	flag.Parse()

	keyMax := uint32(*vocabFlag)
	rng := mrand.New(mrand.NewPCG(20240711, 42))
	rows := make([][]gramvec.Tokens, *rowsFlag)
	for i := range rows {
		keys := make([]uint32, *tokensFlag)
		for j := range keys {
			keys[j] = uint32(rng.IntN(*vocabFlag)) + 1
		}
		rows[i] = []gramvec.Tokens{gramvec.NewTokens(keys, keyMax)}
	}
	totalTokens := *rowsFlag * *tokensFlag
	fmt.Printf("corpus: %d rows x %d tokens, vocab %d\n", *rowsFlag, *tokensFlag, *vocabFlag)

	var tr gramvec.Transformer
	switch *modeFlag {
	case "hash":
		hv, err := gramvec.NewHashingVectorizer(
			gramvec.WithNgramLength(*ngramFlag),
			gramvec.WithSkipLength(*skipFlag),
			gramvec.WithHashBits(*bitsFlag),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hashing vectorizer: %v\n", err)
			os.Exit(1)
		}
		tr = hv
	case "dict":
		var weighting gramvec.Weighting
		switch *weightFlag {
		case "tf":
			weighting = gramvec.Tf
		case "idf":
			weighting = gramvec.Idf
		case "tfidf":
			weighting = gramvec.TfIdf
		default:
			fmt.Fprintf(os.Stderr, "unknown weighting %q\n", *weightFlag)
			os.Exit(1)
		}
		dv, err := gramvec.NewDictionaryVectorizer(
			gramvec.WithNgramLength(*ngramFlag),
			gramvec.WithSkipLength(*skipFlag),
			gramvec.WithWeighting(weighting),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dictionary vectorizer: %v\n", err)
			os.Exit(1)
		}

		fitStart := time.Now()
		if err := dv.Fit(context.Background(), func(yield func([]gramvec.Tokens) bool) {
			for _, row := range rows {
				if !yield(row) {
					return
				}
			}
		}); err != nil {
			fmt.Fprintf(os.Stderr, "fit: %v\n", err)
			os.Exit(1)
		}
		fitDur := time.Since(fitStart)
		fmt.Printf("fit:       %8.2fs  %10.0f tokens/s  pool %d\n",
			fitDur.Seconds(), float64(totalTokens)/fitDur.Seconds(), dv.Count())
		tr = dv
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *modeFlag)
		os.Exit(1)
	}

	start := time.Now()
	out, err := gramvec.TransformBatch(context.Background(), tr, rows, *workersFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transform: %v\n", err)
		os.Exit(1)
	}
	dur := time.Since(start)

	nonZero := 0
	for _, vec := range out {
		for _, v := range vec {
			if v != 0 {
				nonZero++
			}
		}
	}
	fmt.Printf("transform: %8.2fs  %10.0f rows/s  %10.0f tokens/s\n",
		dur.Seconds(), float64(len(rows))/dur.Seconds(), float64(totalTokens)/dur.Seconds())
	fmt.Printf("output:    width %d, %.1f non-zero slots/row\n",
		tr.OutputWidth(), float64(nonZero)/float64(len(rows)))
	fmt.Printf("peak RSS:  %.1f MiB\n", float64(getMaxRSS())/(1<<20))
}
