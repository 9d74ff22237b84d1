// Copyright 2026 The sparsepoly Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestParallelForErr(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	results := make([]int, n)

	err := pool.ParallelForErr(context.Background(), n, func(_ context.Context, i int) error {
		results[i] = i * 2
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelForErr() error = %v", err)
	}

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestParallelForErrPropagates(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	sentinel := errors.New("boom")
	err := pool.ParallelForErr(context.Background(), 100, func(_ context.Context, i int) error {
		if i == 42 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("ParallelForErr() error = %v, want %v", err, sentinel)
	}
}

func TestParallelForErrCancelsPeers(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	// Once one call fails, the context handed to its peers must be
	// cancelled: the second call blocks until the first call's error
	// releases it.
	sentinel := errors.New("boom")
	err := pool.ParallelForErr(context.Background(), 2, func(ctx context.Context, i int) error {
		if i == 0 {
			return sentinel
		}
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("ParallelForErr() error = %v, want %v", err, sentinel)
	}
}

func TestParallelForErrCanceledContext(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	err := pool.ParallelForErr(ctx, 100, func(_ context.Context, i int) error {
		ran.Add(1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ParallelForErr() error = %v, want context.Canceled", err)
	}
	if ran.Load() != 0 {
		t.Errorf("%d calls ran under a pre-cancelled context, want 0", ran.Load())
	}
}

func TestParallelForErrZeroN(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var called bool
	err := pool.ParallelForErr(context.Background(), 0, func(_ context.Context, i int) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelForErr() error = %v", err)
	}
	if called {
		t.Error("ParallelForErr with n=0 should not call fn")
	}
}

func TestParallelForErrSmallN(t *testing.T) {
	pool := New(8)
	defer pool.Close()

	// n smaller than workers, including the single-index inline path.
	for _, n := range []int{1, 3} {
		var count atomic.Int32
		err := pool.ParallelForErr(context.Background(), n, func(_ context.Context, i int) error {
			count.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("ParallelForErr(n=%d) error = %v", n, err)
		}
		if count.Load() != int32(n) {
			t.Errorf("count = %d, want %d", count.Load(), n)
		}
	}
}

func TestCloseMultipleTimes(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close() // Should not panic
}

func TestClosedPoolFallback(t *testing.T) {
	pool := New(4)
	pool.Close()

	n := 100
	results := make([]int, n)

	// Should still work (sequential fallback)
	err := pool.ParallelForErr(context.Background(), n, func(_ context.Context, i int) error {
		results[i] = i * 2
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelForErr() error = %v", err)
	}

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestClosedPoolFallbackStopsAtError(t *testing.T) {
	pool := New(4)
	pool.Close()

	sentinel := errors.New("boom")
	ran := 0
	err := pool.ParallelForErr(context.Background(), 100, func(_ context.Context, i int) error {
		ran++
		if i == 10 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("ParallelForErr() error = %v, want %v", err, sentinel)
	}
	if ran != 11 {
		t.Errorf("sequential fallback ran %d calls, want 11 (stop at first error)", ran)
	}
}

func BenchmarkParallelForErr(b *testing.B) {
	pool := New(0) // Use GOMAXPROCS
	defer pool.Close()

	n := 1000

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pool.ParallelForErr(context.Background(), n, func(_ context.Context, j int) error {
			// Simulate work
			_ = j * j
			return nil
		})
	}
}
