package flowfield

import (
	"runtime"
	"sync"
)

// pool splits per-row stage work across worker goroutines. Rows are
// partitioned into disjoint stripes, so stripes never write the same cell;
// run does not return until every stripe has completed, which is the global
// barrier between stages.
type pool struct {
	workers int
	ny      int
}

func newPool(workers, ny int) pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > ny {
		workers = ny
	}
	return pool{workers: workers, ny: ny}
}

// run executes fn over each row stripe and waits for all of them.
func (p pool) run(fn func(y0, y1 int)) {
	var wg sync.WaitGroup
	chunk := p.ny / p.workers
	for w := 0; w < p.workers; w++ {
		y0 := w * chunk
		y1 := y0 + chunk
		if w == p.workers-1 {
			y1 = p.ny
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}

// runErr is run for stages that can fail. Every stripe completes regardless;
// the error from the lowest stripe wins so that reporting is deterministic
// across worker counts.
func (p pool) runErr(fn func(y0, y1 int) *StepError) *StepError {
	errs := make([]*StepError, p.workers)
	var wg sync.WaitGroup
	chunk := p.ny / p.workers
	for w := 0; w < p.workers; w++ {
		y0 := w * chunk
		y1 := y0 + chunk
		if w == p.workers-1 {
			y1 = p.ny
		}
		wg.Add(1)
		go func(w, y0, y1 int) {
			defer wg.Done()
			errs[w] = fn(y0, y1)
		}(w, y0, y1)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
