package util

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsEveryJob(t *testing.T) {
	pool := NewWorkerPool(3)
	var ran int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() { atomic.AddInt64(&ran, 1) })
	}
	pool.Wait()
	if ran != 20 {
		t.Fatalf("ran %d jobs, want 20", ran)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)
	var mu sync.Mutex
	active, peak := 0, 0
	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		})
	}
	pool.Wait()
	if peak > 2 {
		t.Fatalf("observed %d concurrent jobs, limit is 2", peak)
	}
}

func TestWorkerPoolMinimumOneWorker(t *testing.T) {
	pool := NewWorkerPool(0)
	done := false
	pool.Submit(func() { done = true })
	pool.Wait()
	if !done {
		t.Fatal("job did not run")
	}
}
