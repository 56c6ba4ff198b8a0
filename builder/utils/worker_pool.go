package utils

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// MaxWorkers bounds every pool regardless of configuration.
const MaxWorkers = 32

// Workers clamps n to [1, MaxWorkers]; n <= 0 means one per CPU.
func Workers(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return min(n, MaxWorkers)
}

// Result is the outcome of one item passed to Map.
type Result[R any] struct {
	Value R
	Err   error
}

// PanicError is the Err of an item whose function panicked.
type PanicError struct {
	Index int
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("item %d panicked: %v", e.Index, e.Value)
}

// Map runs fn over items on a bounded set of goroutines and returns the
// results in input order. A panic fails only its own item. Items not yet
// started when ctx is cancelled get ctx.Err().
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := Workers(workers); w > 0; w-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = call(ctx, i, items[i], fn)
			}
		}()
	}

	next := 0
feed:
	for ; next < len(items); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(items); i++ {
		results[i].Err = ctx.Err()
	}
	return results
}

func call[T, R any](ctx context.Context, i int, item T, fn func(context.Context, T) (R, error)) (res Result[R]) {
	defer func() {
		if r := recover(); r != nil {
			res = Result[R]{Err: &PanicError{Index: i, Value: r}}
		}
	}()
	v, err := fn(ctx, item)
	return Result[R]{Value: v, Err: err}
}
