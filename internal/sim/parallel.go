package sim

import (
	"context"
	"sync"
)

// Ensemble runs several jobs at once. Every job gets its own session, so
// nothing is shared between the goroutines except the read-only material
// values.
type Ensemble struct {
	base *Simulator
	jobs []Job
}

func NewEnsemble(s *Simulator, jobs ...Job) *Ensemble {
	return &Ensemble{base: s, jobs: jobs}
}

// Run returns results in job order. The first error wins.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.jobs))
	errs := make([]error, len(e.jobs))

	var wg sync.WaitGroup
	for i, job := range e.jobs {
		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()

			s := New(e.base.machine, e.base.logger)
			s.metricsFunc = e.base.metricsFunc

			results[idx], errs[idx] = s.Run(ctx, job.Material, job.Kind, cfg)
		}(i, job)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
