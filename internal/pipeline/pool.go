package pipeline

import (
	"context"
	"sync"

	"github.com/calistenia/catalog/internal/catalog"
)

// itemResult is the tagged outcome one worker reports for one item. Workers
// never touch shared slices; the collector owns all aggregation.
type itemResult struct {
	key     string
	name    string
	entry   *catalog.ManifestEntry
	err     error
	skipped bool
	reason  string
}

// runPool fans items out to a fixed set of workers and collects every tagged
// result. Cancellation stops feeding new items; workers finish the item they
// hold.
func runPool[T any](ctx context.Context, workers int, items []T, work func(context.Context, T) itemResult) []itemResult {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan T)
	results := make(chan itemResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- work(ctx, item)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			select {
			case jobs <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]itemResult, 0, len(items))
	for res := range results {
		out = append(out, res)
	}
	return out
}
