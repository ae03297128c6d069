package gramvec

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestTransformBatchMatchesSequential(t *testing.T) {
	rng := newTestRNG(t)
	rows := randomRows(rng, 100, 20, 50)

	hv, err := NewHashingVectorizer(WithNgramLength(2), WithSkipLength(1), WithHashBits(10))
	if err != nil {
		t.Fatalf("NewHashingVectorizer() = %v", err)
	}
	want := make([][]float64, len(rows))
	for i, row := range rows {
		want[i] = transformDense(t, hv, row)
	}

	for _, workers := range []int{1, 4, 0, len(rows) + 7} {
		got, err := TransformBatch(context.Background(), hv, rows, workers)
		if err != nil {
			t.Fatalf("TransformBatch(workers=%d) = %v", workers, err)
		}
		if len(got) != len(rows) {
			t.Fatalf("TransformBatch(workers=%d) returned %d vectors, want %d", workers, len(got), len(rows))
		}
		for i := range rows {
			if !slices.Equal(got[i], want[i]) {
				t.Fatalf("workers=%d: row %d differs from sequential transform", workers, i)
			}
		}
	}
}

func TestTransformBatchDictionary(t *testing.T) {
	rng := newTestRNG(t)
	rows := randomRows(rng, 60, 25, 30)
	dv := fitDictionary(t, rows, WithNgramLength(2), WithWeighting(TfIdf))

	got, err := TransformBatch(context.Background(), dv, rows, 4)
	if err != nil {
		t.Fatalf("TransformBatch() = %v", err)
	}
	for i, row := range rows {
		if want := transformDense(t, dv, row); !slices.Equal(got[i], want) {
			t.Fatalf("row %d: batch %v, sequential %v", i, got[i], want)
		}
	}
}

func TestTransformBatchEmpty(t *testing.T) {
	hv, err := NewHashingVectorizer()
	if err != nil {
		t.Fatalf("NewHashingVectorizer() = %v", err)
	}
	out, err := TransformBatch(context.Background(), hv, nil, 4)
	if err != nil {
		t.Fatalf("TransformBatch() = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0", len(out))
	}
}

func TestTransformBatchHonorsContext(t *testing.T) {
	rng := newTestRNG(t)
	rows := randomRows(rng, 10, 5, 10)
	hv, err := NewHashingVectorizer()
	if err != nil {
		t.Fatalf("NewHashingVectorizer() = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := TransformBatch(ctx, hv, rows, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("TransformBatch() = %v, want context.Canceled", err)
	}
}
