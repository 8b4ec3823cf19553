package potential

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor runs fn for every index in [0, n) on at most workers
// goroutines. The first error cancels the remaining work and is returned.
func ParallelFor(ctx context.Context, n, workers int, fn func(ctx context.Context, idx int) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
