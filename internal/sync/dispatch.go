package sync

import (
	"context"
	stdsync "sync"
)

// fanOut runs task once per item with at most workers goroutines in flight
// and collects the results keyed by key(item). It returns only after every
// task has finished, so callers can apply the results single-threaded.
func fanOut[T any, K comparable, R any](ctx context.Context, workers int, items []T, key func(T) K, task func(context.Context, T) R) map[K]R {
	if workers < 1 {
		workers = 1
	}

	var (
		mu  stdsync.Mutex
		wg  stdsync.WaitGroup
		sem = make(chan struct{}, workers)
		out = make(map[K]R, len(items))
	)
	for _, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(item T) {
			defer wg.Done()
			defer func() { <-sem }()

			r := task(ctx, item)
			mu.Lock()
			out[key(item)] = r
			mu.Unlock()
		}(item)
	}
	wg.Wait()
	return out
}
