package lensfun

import (
	"context"
	"sync"
)

// RunRows partitions an h-row image into n goroutines (n = runtime's
// GOMAXPROCS-equivalent choice left to the caller) and calls fn once per
// row with its row index, waiting for all rows to finish before returning.
// This supplements the per-row-only contract in SPEC_FULL.md §5: the
// contract explicitly permits callers to parallelize row-disjoint Apply*
// calls, and this is the thin worker-pool wrapper around that invitation.
// It performs no synchronization beyond waiting for completion: fn must
// write only to its own row's slice of the caller's output buffer.
func RunRows(h, workers int, fn func(row int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		for row := 0; row < h; row++ {
			fn(row)
		}
		return
	}

	var wg sync.WaitGroup
	rowsCh := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rowsCh {
				fn(row)
			}
		}()
	}
	for row := 0; row < h; row++ {
		rowsCh <- row
	}
	close(rowsCh)
	wg.Wait()
}

// RunRowsContext is RunRows with early abandonment: once ctx is done, workers
// stop pulling new rows and RunRowsContext returns ctx.Err() once the
// in-flight rows finish. fn itself receives no context; it is expected to be
// a pure per-row pixel loop, so cancellation is only checked between rows,
// matching the same between-step (not mid-step) cancellation granularity the
// rest of this codebase uses for ctx.Err() checks.
func RunRowsContext(ctx context.Context, h, workers int, fn func(row int)) error {
	if workers < 1 {
		workers = 1
	}
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		for row := 0; row < h; row++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(row)
		}
		return ctx.Err()
	}

	var wg sync.WaitGroup
	rowsCh := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rowsCh {
				fn(row)
			}
		}()
	}
loop:
	for row := 0; row < h; row++ {
		select {
		case <-ctx.Done():
			break loop
		case rowsCh <- row:
		}
	}
	close(rowsCh)
	wg.Wait()
	return ctx.Err()
}
