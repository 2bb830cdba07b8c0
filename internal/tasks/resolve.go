package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultResolveWorkers = 4
	maxResolveWorkers     = 10
	defaultCatalogRate    = 10.0
)

// ResolveOpts configures concurrent detail lookups.
type ResolveOpts struct {
	NumWorkers int     // Concurrent workers (default: 4)
	RateLimit  float64 // Catalog requests per second (default: 10)
}

type resolveJob struct {
	index int
	id    string
}

// resolveResult is the outcome of one detail lookup. Err wraps [shared.ErrCatalog].
type resolveResult struct {
	index   int
	id      string
	summary *models.PlaylistSummary
	err     error
}

// resolveDetails fetches catalog detail for every id with a bounded worker pool.
//
// Results are returned in the order of ids regardless of completion order.
func resolveDetails(ctx context.Context, catalog services.Catalog, ids []string, opts ResolveOpts) []resolveResult {
	if len(ids) == 0 {
		return nil
	}

	workers := opts.NumWorkers
	if workers <= 0 {
		workers = defaultResolveWorkers
	}
	workers = min(workers, maxResolveWorkers, len(ids))
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultCatalogRate
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), workers)
	jobs := make(chan resolveJob, len(ids))
	results := make(chan resolveResult, len(ids))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go resolveWorker(ctx, &wg, catalog, limiter, jobs, results)
	}

	for i, id := range ids {
		jobs <- resolveJob{index: i, id: id}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]resolveResult, len(ids))
	for res := range results {
		ordered[res.index] = res
	}
	return ordered
}

func resolveWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	catalog services.Catalog,
	limiter *rate.Limiter,
	jobs <-chan resolveJob,
	results chan<- resolveResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := resolveResult{index: job.index, id: job.id}

		if err := limiter.Wait(ctx); err != nil {
			res.err = fmt.Errorf("%w: %s: %v", shared.ErrCatalog, job.id, err)
			results <- res
			continue
		}

		summary, err := catalog.PlaylistDetail(ctx, job.id)
		if err != nil {
			res.err = fmt.Errorf("%w: %s: %v", shared.ErrCatalog, job.id, err)
		} else {
			res.summary = summary
		}
		results <- res
	}
}
