package assessment

import (
	"context"

	"golang.org/x/sync/errgroup"

	"robkit/internal/answerset"
	"robkit/internal/logging"
)

// BatchOptions controls EvaluateBatch.
type BatchOptions struct {
	// Concurrency bounds the files evaluated at once. Below one means one.
	Concurrency int
	// Instrument and Variant apply to files that do not name their own.
	Instrument string
	Variant    string
}

// BatchResult is the outcome for one file. Exactly one of Assessment and Err
// is set.
type BatchResult struct {
	Path       string      `json:"path" yaml:"path"`
	Assessment *Assessment `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	Err        error       `json:"-" yaml:"-"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// EvaluateBatch evaluates answer files concurrently. A file that fails does
// not stop the others; its error is kept in its result. Results follow the
// order of paths. The returned error is non-nil only when ctx ends first.
func EvaluateBatch(ctx context.Context, paths []string, opts BatchOptions) ([]BatchResult, error) {
	log := logging.Get(logging.CategoryBatch)
	timer := logging.StartTimer(logging.CategoryBatch, "batch")
	defer timer.Stop()

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]BatchResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateFile(path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("evaluated %d files, %d failed", len(paths), failed)
	return results, nil
}

func evaluateFile(path string, opts BatchOptions) BatchResult {
	r := BatchResult{Path: path}
	s, err := answerset.Load(path)
	if err == nil {
		r.Assessment, err = EvaluateSet(s.WithDefaults(opts.Instrument, opts.Variant))
	}
	if err != nil {
		r.Err = err
		r.Error = err.Error()
		logging.Get(logging.CategoryBatch).Warn("%s: %v", path, err)
	}
	return r
}
