package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4, 16)

	var ran int64
	go func() {
		for i := 0; i < 16; i++ {
			pool.Submit(func(context.Context) error {
				atomic.AddInt64(&ran, 1)
				return nil
			})
		}
		pool.Close()
	}()

	results := 0
	for res := range pool.Run(context.Background()) {
		if res.Err != nil {
			t.Fatalf("unexpected task error: %v", res.Err)
		}
		results++
	}

	if ran != 16 || results != 16 {
		t.Fatalf("expected 16 tasks and results, got %d/%d", ran, results)
	}
}

func TestWorkerPool_ReportsTaskErrors(t *testing.T) {
	pool := NewWorkerPool(2, 4)
	taskErr := errors.New("boom")

	go func() {
		pool.Submit(func(context.Context) error { return taskErr })
		pool.Submit(func(context.Context) error { return nil })
		pool.Close()
	}()

	var failed int
	for res := range pool.Run(context.Background()) {
		if res.Err != nil {
			failed++
			if !errors.Is(res.Err, taskErr) {
				t.Fatalf("unexpected error: %v", res.Err)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one failure, got %d", failed)
	}
}

func TestWorkerPool_NilReceiver(t *testing.T) {
	var pool *WorkerPool

	out := pool.Run(context.Background())
	if _, open := <-out; open {
		t.Fatalf("nil pool must return a closed result channel")
	}

	// Nil-safe no-ops.
	pool.Submit(func(context.Context) error { return nil })
	pool.SetRateLimit(10)
	pool.Close()
}

func TestWorkerPool_CancelStopsWorkers(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	ctx, cancel := context.WithCancel(context.Background())

	out := pool.Run(ctx)
	cancel()

	select {
	case _, open := <-out:
		if open {
			t.Fatalf("no results expected after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatalf("pool did not drain after cancellation")
	}
}
