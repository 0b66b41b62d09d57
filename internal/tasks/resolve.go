package tasks

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"syncra/internal/models"
)

const (
	defaultWorkers = 5
	maxWorkers     = 10
	defaultRate    = 5.0
)

// resolveAll resolves every ref concurrently through a rate-limited worker
// pool. The result slice is position-indexed so source order survives the
// concurrency; refs left unprocessed after cancellation come back as search
// failures.
func (e *Engine) resolveAll(ctx context.Context, progress chan<- ProgressUpdate, refs []models.RawTrackRef) []models.ResolvedTrack {
	results := make([]models.ResolvedTrack, len(refs))
	if len(refs) == 0 {
		return results
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers > len(refs) {
		workers = len(refs)
	}

	rps := e.cfg.RateLimit
	if rps <= 0 {
		rps = defaultRate
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	jobs := make(chan int, len(refs))
	for i := range refs {
		jobs <- i
	}
	close(jobs)

	var completed int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					results[i] = models.ResolvedTrack{Ref: refs[i], Reason: models.UnresolvedSearch}
					continue
				}

				results[i] = e.resolver.Resolve(ctx, refs[i])

				n := atomic.AddInt64(&completed, 1)
				e.sendProgress(progress, resolveTrackUpdate(int(n), len(refs), refs[i]))
			}
		}()
	}
	wg.Wait()

	return results
}
