package gramvec

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	gramerrors "github.com/tamirms/gramvec/errors"
)

func fitDictionary(t *testing.T, corpus [][]Tokens, opts ...Option) *DictionaryVectorizer {
	t.Helper()
	dv, err := NewDictionaryVectorizer(opts...)
	if err != nil {
		t.Fatalf("NewDictionaryVectorizer() = %v", err)
	}
	if err := dv.Fit(context.Background(), corpusOf(corpus...)); err != nil {
		t.Fatalf("Fit() = %v", err)
	}
	return dv
}

func TestDictionaryFitAssignsFirstSeenIds(t *testing.T) {
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2, 3)}, WithNgramLength(2))

	// Enumeration order from [1,2,3]: {1}, {1,2}, {2}, {2,3}, {3}.
	wantSeqs := [][]uint32{{1}, {1, 2}, {2}, {2, 3}, {3}}
	if dv.Count() != len(wantSeqs) {
		t.Fatalf("Count() = %d, want %d", dv.Count(), len(wantSeqs))
	}
	if dv.OutputWidth() != len(wantSeqs) {
		t.Fatalf("OutputWidth() = %d, want %d", dv.OutputWidth(), len(wantSeqs))
	}
	for id, want := range wantSeqs {
		if got := dv.Sequence(int32(id)); !slices.Equal(got, want) {
			t.Errorf("Sequence(%d) = %v, want %v", id, got, want)
		}
	}
	if got := dv.OrderCounts(); !slices.Equal(got, []int{3, 2}) {
		t.Errorf("OrderCounts() = %v, want [3 2]", got)
	}
	if got := dv.TotalDocs(); got != 1 {
		t.Errorf("TotalDocs() = %d, want 1", got)
	}
}

func TestDictionaryTransformCounts(t *testing.T) {
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2, 3)}, WithNgramLength(2))

	dense := transformDense(t, dv, rowOf(1, 2, 1, 2))
	// Grams of [1,2,1,2]: {1},{1,2},{2},{2,1},{1},{1,2},{2}. {2,1} is unknown.
	want := []float64{2, 2, 2, 0, 0}
	if !slices.Equal(dense, want) {
		t.Fatalf("dense = %v, want %v", dense, want)
	}

	// Unseen rows produce the zero vector, not an error.
	dense = transformDense(t, dv, rowOf(8, 9))
	if !slices.Equal(dense, make([]float64, 5)) {
		t.Fatalf("dense = %v, want all zeros", dense)
	}
}

func TestDictionaryPerOrderCaps(t *testing.T) {
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2, 3)},
		WithNgramLength(2), WithMaxTermsPerOrder(2, 1))

	// Insertion order {1}, {1,2}, {2} fills both caps; {2,3} and {3} are
	// rejected. First seen wins.
	if got := dv.OrderCounts(); !slices.Equal(got, []int{2, 1}) {
		t.Fatalf("OrderCounts() = %v, want [2 1]", got)
	}
	wantSeqs := [][]uint32{{1}, {1, 2}, {2}}
	if dv.Count() != len(wantSeqs) {
		t.Fatalf("Count() = %d, want %d", dv.Count(), len(wantSeqs))
	}
	for id, want := range wantSeqs {
		if got := dv.Sequence(int32(id)); !slices.Equal(got, want) {
			t.Errorf("Sequence(%d) = %v, want %v", id, got, want)
		}
	}
}

func TestDictionaryStopsEarlyWhenCapped(t *testing.T) {
	// With tf weighting and every order capped by the first row, the rest of
	// the corpus is skipped entirely.
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2), rowOf(3, 4), rowOf(5, 6)},
		WithNgramLength(2), WithMaxTermsPerOrder(1, 1))

	if got := dv.TotalDocs(); got != 1 {
		t.Fatalf("TotalDocs() = %d, want 1 after early stop", got)
	}
	if dense := transformDense(t, dv, rowOf(3, 4)); !slices.Equal(dense, make([]float64, dv.Count())) {
		t.Fatalf("later rows leaked into the dictionary: %v", dense)
	}
}

func TestDictionaryIdfScansFullCorpusWhenCapped(t *testing.T) {
	// Idf weighting needs document counts, so capping must not cut the pass
	// short.
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2), rowOf(1, 2), rowOf(1, 2)},
		WithNgramLength(2), WithMaxTermsPerOrder(1, 1), WithWeighting(Idf))

	if got := dv.TotalDocs(); got != 3 {
		t.Fatalf("TotalDocs() = %d, want 3", got)
	}
	// {1} appears in all 3 docs: idf = ln(3/3) = 0.
	if got := dv.IDF(0); got != 0 {
		t.Fatalf("IDF(0) = %v, want 0", got)
	}
}

func TestDictionaryIdfValues(t *testing.T) {
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2), rowOf(1)},
		WithNgramLength(1), WithWeighting(Idf))

	// ids: {1}=0 (2 docs), {2}=1 (1 doc). idf: ln(2/2)=0, ln(2/1)=ln 2.
	if got := dv.IDF(0); got != 0 {
		t.Errorf("IDF(0) = %v, want 0", got)
	}
	if got, want := dv.IDF(1), math.Log(2); got != want {
		t.Errorf("IDF(1) = %v, want %v", got, want)
	}

	// Idf weighting is an indicator: repeats do not multiply.
	dense := transformDense(t, dv, rowOf(2, 2, 2))
	if !slices.Equal(dense, []float64{0, math.Log(2)}) {
		t.Fatalf("dense = %v, want [0 %v]", dense, math.Log(2))
	}
}

func TestDictionaryIdfCountsDocumentOncePerRow(t *testing.T) {
	// {1} repeats within the first document but counts it once.
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 1, 1), rowOf(2)},
		WithNgramLength(1), WithWeighting(Idf))

	if got, want := dv.IDF(0), math.Log(2); got != want {
		t.Fatalf("IDF(0) = %v, want %v", got, want)
	}
}

func TestDictionaryTfIdf(t *testing.T) {
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2), rowOf(1)},
		WithNgramLength(1), WithWeighting(TfIdf))

	dense := transformDense(t, dv, rowOf(2, 2, 1))
	want := []float64{1 * 0, 2 * math.Log(2)}
	if !slices.Equal(dense, want) {
		t.Fatalf("dense = %v, want %v", dense, want)
	}
	if got := dv.Weighting(); got != TfIdf {
		t.Fatalf("Weighting() = %v, want tfidf", got)
	}
}

func TestDictionaryMaxLengthOnly(t *testing.T) {
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2, 3)},
		WithNgramLength(2), WithAllLengths(false))

	if got := dv.OrderCounts(); !slices.Equal(got, []int{0, 2}) {
		t.Fatalf("OrderCounts() = %v, want [0 2]", got)
	}
	if got := dv.NonEmptyOrders(); !slices.Equal(got, []bool{false, true}) {
		t.Fatalf("NonEmptyOrders() = %v, want [false true]", got)
	}
	dense := transformDense(t, dv, rowOf(1, 2))
	if !slices.Equal(dense, []float64{1, 0}) {
		t.Fatalf("dense = %v, want [1 0]", dense)
	}
}

func TestDictionaryKeyMaxRemap(t *testing.T) {
	// Keys above the column bound train and score as key 0.
	corpus := [][]Tokens{{NewTokens([]uint32{500, 1}, 10)}}
	dv := fitDictionary(t, corpus, WithNgramLength(1))

	if got := dv.Sequence(0); !slices.Equal(got, []uint32{0}) {
		t.Fatalf("Sequence(0) = %v, want [0]", got)
	}
	dense := transformDense(t, dv, []Tokens{NewTokens([]uint32{77}, 10)})
	if !slices.Equal(dense, []float64{1, 0}) {
		t.Fatalf("dense = %v, want [1 0]", dense)
	}
}

func TestDictionaryLifecycleErrors(t *testing.T) {
	dv, err := NewDictionaryVectorizer()
	if err != nil {
		t.Fatalf("NewDictionaryVectorizer() = %v", err)
	}
	if _, err := dv.Transform(rowOf(1)); !errors.Is(err, gramerrors.ErrNotFitted) {
		t.Errorf("Transform before Fit = %v, want ErrNotFitted", err)
	}
	if _, err := dv.SlotNames(func(uint32) string { return "" }); !errors.Is(err, gramerrors.ErrNotFitted) {
		t.Errorf("SlotNames before Fit = %v, want ErrNotFitted", err)
	}
	if dv.Fitted() {
		t.Error("Fitted() = true before Fit")
	}
	if dv.OutputWidth() != 0 {
		t.Errorf("OutputWidth() = %d before Fit, want 0", dv.OutputWidth())
	}

	if err := dv.Fit(context.Background(), corpusOf(rowOf(1, 2))); err != nil {
		t.Fatalf("Fit() = %v", err)
	}
	if !dv.Fitted() {
		t.Error("Fitted() = false after Fit")
	}
	if err := dv.Fit(context.Background(), corpusOf(rowOf(1, 2))); !errors.Is(err, gramerrors.ErrAlreadyFitted) {
		t.Errorf("second Fit = %v, want ErrAlreadyFitted", err)
	}
}

func TestDictionaryEmptyCorpus(t *testing.T) {
	for _, tc := range []struct {
		name   string
		corpus [][]Tokens
	}{
		{"no rows", nil},
		{"rows without tokens", [][]Tokens{rowOf(), rowOf()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dv, err := NewDictionaryVectorizer()
			if err != nil {
				t.Fatalf("NewDictionaryVectorizer() = %v", err)
			}
			if err := dv.Fit(context.Background(), corpusOf(tc.corpus...)); !errors.Is(err, gramerrors.ErrEmptyCorpus) {
				t.Fatalf("Fit() = %v, want ErrEmptyCorpus", err)
			}
		})
	}
}

func TestDictionaryFitHonorsContext(t *testing.T) {
	dv, err := NewDictionaryVectorizer(WithNgramLength(1))
	if err != nil {
		t.Fatalf("NewDictionaryVectorizer() = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := make([][]Tokens, contextCheckInterval+1)
	for i := range rows {
		rows[i] = rowOf(uint32(i))
	}
	if err := dv.Fit(ctx, corpusOf(rows...)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fit() = %v, want context.Canceled", err)
	}
}

func TestDictionarySlotNames(t *testing.T) {
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2)}, WithNgramLength(2))
	names, err := dv.SlotNames(func(key uint32) string { return string(rune('a' + key)) })
	if err != nil {
		t.Fatalf("SlotNames() = %v", err)
	}
	want := []string{"b", "b|c", "c"}
	if !slices.Equal(names, want) {
		t.Fatalf("SlotNames() = %v, want %v", names, want)
	}
}

func TestDictionaryTransformReuse(t *testing.T) {
	rng := newTestRNG(t)
	corpus := randomRows(rng, 50, 30, 20)
	dv := fitDictionary(t, corpus, WithNgramLength(2), WithSkipLength(1))

	first := transformDense(t, dv, corpus[0])
	for _, row := range corpus[1:] {
		transformDense(t, dv, row)
	}
	if again := transformDense(t, dv, corpus[0]); !slices.Equal(first, again) {
		t.Fatal("repeated transform of the same row changed after unrelated rows")
	}
}

func TestDictionaryCloneSharesTraining(t *testing.T) {
	rng := newTestRNG(t)
	corpus := randomRows(rng, 30, 20, 15)
	dv := fitDictionary(t, corpus, WithNgramLength(2), WithWeighting(TfIdf))

	clone := dv.Clone()
	if clone.OutputWidth() != dv.OutputWidth() {
		t.Fatalf("clone OutputWidth() = %d, want %d", clone.OutputWidth(), dv.OutputWidth())
	}
	for _, row := range corpus {
		if !slices.Equal(transformDense(t, dv, row), transformDense(t, clone, row)) {
			t.Fatal("clone disagrees with original")
		}
	}
}

func TestDictionaryCloneUnfitted(t *testing.T) {
	dv, err := NewDictionaryVectorizer(WithNgramLength(2))
	if err != nil {
		t.Fatalf("NewDictionaryVectorizer() = %v", err)
	}
	clone := dv.Clone().(*DictionaryVectorizer)
	if clone.Fitted() {
		t.Fatal("clone of unfitted vectorizer reports fitted")
	}
	if err := clone.Fit(context.Background(), corpusOf(rowOf(1, 2))); err != nil {
		t.Fatalf("clone Fit() = %v", err)
	}
	// The original stays unfitted and independently fittable.
	if dv.Fitted() {
		t.Fatal("fitting the clone fitted the original")
	}
	if err := dv.Fit(context.Background(), corpusOf(rowOf(3, 4))); err != nil {
		t.Fatalf("original Fit() = %v", err)
	}
	if got := dv.Sequence(0); !slices.Equal(got, []uint32{3}) {
		t.Fatalf("Sequence(0) = %v, want [3]", got)
	}
}

func TestDictionaryValidate(t *testing.T) {
	dv := fitDictionary(t, [][]Tokens{rowOf(1, 2, 3)}, WithNgramLength(2))
	if err := dv.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}
