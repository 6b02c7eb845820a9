package experiment

import (
	"context"
	"sync"
)

// Ensemble runs one configuration over consecutive placement seeds in
// parallel. Chemistry is identical across runs; only particle placement
// differs.
type Ensemble struct {
	cfg       Config
	numRuns   int
	seedStart int64
	observers func(run int) []Observer
}

// NewEnsemble seeds run i with seedStart+i. A zero seed means a clock seed,
// so seedStart should normally be positive.
func NewEnsemble(cfg Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart}
}

// WithObservers sets a factory called once per run, so observers are never
// shared between goroutines.
func (e *Ensemble) WithObservers(f func(run int) []Observer) *Ensemble {
	e.observers = f
	return e
}

// Run returns one result per run in seed order, or the first error.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, nil
	}
	if err := e.cfg.validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := e.cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			exp, err := New(cfgCopy)
			if err != nil {
				errs[idx] = err
				return
			}
			if e.observers != nil {
				for _, o := range e.observers(idx) {
					exp.AddObserver(o)
				}
			}

			results[idx], errs[idx] = exp.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
