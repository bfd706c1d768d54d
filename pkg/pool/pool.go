// Package pool provides a bounded, index-stable concurrent map primitive.
//
// A fixed number of workers pull the next unprocessed index from a shared
// cursor until the input is exhausted. Results land in a pre-sized slice at
// the position of their input item, so output order matches input order
// regardless of completion order.
package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Result pairs one item's outcome with any error it produced. Per-item
// errors never abort the whole run.
type Result[R any] struct {
	Value R
	Err   error
}

// Map applies fn to every item with at most concurrency in-flight calls.
// The returned slice is index-correlated with items. Context cancellation
// stops workers from pulling new indices; already-claimed items record the
// context error.
func Map[T, R any](ctx context.Context, items []T, concurrency int, fn func(ctx context.Context, item T, idx int) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	var cursor atomic.Int64
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for w := 0; w < concurrency; w++ {
		go func() {
			defer wg.Done()
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= len(items) {
					return
				}
				if err := ctx.Err(); err != nil {
					results[idx] = Result[R]{Err: fmt.Errorf("pool map canceled: %w", err)}
					continue
				}
				results[idx].Value, results[idx].Err = safeCall(ctx, items[idx], idx, fn)
			}
		}()
	}
	wg.Wait()
	return results
}

// safeCall isolates a panicking fn to its own result slot.
func safeCall[T, R any](ctx context.Context, item T, idx int, fn func(ctx context.Context, item T, idx int) (R, error)) (out R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pool fn panicked at index %d: %v", idx, r)
		}
	}()
	return fn(ctx, item, idx)
}
