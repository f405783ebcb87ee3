package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "marketgate/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Rejected  int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Rejected
}

// RunConcurrent runs fn in parallel goroutines. Errors carrying an admission
// rejection code (locked out, rate limited) count as Rejected; anything else
// counts as Errors.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, rejected atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeRateLimited), dErrors.HasCode(err, dErrors.CodeLockedOut):
				rejected.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Rejected:  rejected.Load(),
	}
}
