package simulator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// executor spreads independent simulations over a bounded number of goroutines. Each task
// writes only its own result slot, so callers get results back in input order.
type executor struct {
	workers int
}

func newExecutor(workers int) *executor {
	if workers < 1 {
		workers = 1
	}
	return &executor{workers: workers}
}

// dispatch runs f(0..n-1) and waits for all of them. The first error cancels the rest.
func (e *executor) dispatch(ctx context.Context, n int, f func(i int) error) (time.Duration, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return f(i)
		})
	}
	if err := g.Wait(); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), ctx.Err()
}
