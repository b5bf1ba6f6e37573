package analysis

import (
	"context"
	"runtime"
	"sync"
)

// minChunk is the smallest number of points worth a goroutine.
const minChunk = 4

// ParallelFor runs fn over [0, n) in contiguous chunks, one goroutine per
// chunk. Once ctx is done or any fn fails, every chunk stops before its
// next index. It returns the first error by index among the indices that
// ran.
func ParallelFor(ctx context.Context, n int, fn func(k int) error) error {
	inner, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, n)
	run := func(start, end int) {
		for k := start; k < end; k++ {
			if inner.Err() != nil {
				// A sibling failure is reported by the sibling.
				errs[k] = ctx.Err()
				return
			}
			if errs[k] = fn(k); errs[k] != nil {
				cancel()
				return
			}
		}
	}

	workers := runtime.GOMAXPROCS(0)
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		run(0, n)
	} else {
		chunkSize := (n + workers - 1) / workers

		var wg sync.WaitGroup
		for start := 0; start < n; start += chunkSize {
			end := min(start+chunkSize, n)
			wg.Add(1)
			go func(s, e int) {
				defer wg.Done()
				run(s, e)
			}(start, end)
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
