package gramvec

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Transformer is the row-featurization surface shared by both vectorizers.
type Transformer interface {
	// OutputWidth returns the output vector length.
	OutputWidth() int
	// Transform featurizes one row into the instance's reused vector.
	Transform(row []Tokens) (*FeatureVector, error)
	// Clone returns an independent instance for parallel row processing,
	// sharing only immutable trained artifacts.
	Clone() Transformer
}

// TransformBatch featurizes rows in parallel and returns one dense vector per
// row. Each worker gets its own Clone of tr, since a vectorizer's enumeration
// state must never be shared across goroutines. The context is polled every
// contextCheckInterval rows per worker.
func TransformBatch(ctx context.Context, tr Transformer, rows [][]Tokens, workers int) ([][]float64, error) {
	out := make([][]float64, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(rows) {
		workers = len(rows)
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(rows) + workers - 1) / workers
	for w := range workers {
		start := w * chunk
		end := min(start+chunk, len(rows))
		if start >= end {
			break
		}
		worker := tr
		if w > 0 {
			worker = tr.Clone()
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%contextCheckInterval == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				vec, err := worker.Transform(rows[i])
				if err != nil {
					return err
				}
				out[i] = vec.CopyTo(nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
