// Package worker provides ordered concurrent fan-out for batch file loads.
// The digest scan uses it to read relay envelopes across runs in parallel
// without losing the sorted run order.
package worker

import (
	"runtime"
	"sync"
)

// Outcome pairs a mapped value with its input index. Per-item errors are
// captured here rather than aborting the whole batch.
type Outcome[O any] struct {
	Index int
	Value O
	Err   error
}

// Map applies fn to every item using at most concurrency goroutines and
// returns outcomes in input order. If concurrency <= 0 it defaults to
// runtime.NumCPU().
func Map[I, O any](items []I, concurrency int, fn func(I) (O, error)) []Outcome[O] {
	if len(items) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	indexes := make(chan int, len(items))
	outcomes := make([]Outcome[O], len(items))

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				value, err := fn(items[i])
				outcomes[i] = Outcome[O]{Index: i, Value: value, Err: err}
			}
		}()
	}

	for i := range items {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return outcomes
}
