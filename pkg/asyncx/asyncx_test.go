package asyncx_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ledgerline/identity/pkg/asyncx"
)

func TestAllSettled_OrderAndNoShortCircuit(t *testing.T) {
	boom := errors.New("boom")

	results := asyncx.AllSettled(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context) (int, error) { return 3, nil },
	)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].OK() || results[0].Value != 1 {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].OK() || !errors.Is(results[1].Err, boom) {
		t.Fatalf("expected the middle result to fail, got %+v", results[1])
	}
	if !results[2].OK() || results[2].Value != 3 {
		t.Fatalf("a failure must not stop later fns: %+v", results[2])
	}
}

func TestPool_InputOrderPreserved(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	results := asyncx.Pool(context.Background(), 4, items, func(_ context.Context, n int) (string, error) {
		if n%7 == 0 {
			return "", fmt.Errorf("reject %d", n)
		}
		return fmt.Sprintf("item-%d", n), nil
	})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if i%7 == 0 {
			if r.OK() {
				t.Fatalf("item %d: expected failure", i)
			}
			continue
		}
		if !r.OK() || r.Value != fmt.Sprintf("item-%d", i) {
			t.Fatalf("item %d: expected item-%d in place, got %+v", i, i, r)
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 3
	var current, peak int64

	items := make([]int, 30)
	asyncx.Pool(context.Background(), workers, items, func(context.Context, int) (struct{}, error) {
		n := atomic.AddInt64(&current, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		atomic.AddInt64(&current, -1)
		return struct{}{}, nil
	})

	if got := atomic.LoadInt64(&peak); got > workers {
		t.Fatalf("concurrency exceeded the bound: peak %d > %d", got, workers)
	}
}

func TestPool_Empty(t *testing.T) {
	results := asyncx.Pool(context.Background(), 4, nil, func(context.Context, int) (int, error) {
		t.Fatal("fn must not be called for an empty input")
		return 0, nil
	})
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
