// Package concurrent runs work over iterators on bounded sets of goroutines.
package concurrent

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/dataconverter/pkg/sequence"
)

// Workers normalizes a worker count: zero or less means one per CPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// ParallelMap applies mapFn to each element on at most workers goroutines,
// preserving order. The first error cancels ctx for the remaining calls and
// is returned; elements not yet started are skipped.
func ParallelMap[T, R any](ctx context.Context, i *sequence.Iterator[T], workers int, mapFn func(ctx context.Context, index int, value T) (R, error)) ([]R, error) {
	in := i.Collect()
	out := make([]R, len(in))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(Workers(workers))

	for idx, val := range in {
		if gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := mapFn(gctx, idx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}
