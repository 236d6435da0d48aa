package maintenance_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ledgerline/identity/pkg/identity/maintenance"
	"github.com/ledgerline/identity/pkg/jobx"
)

// fakePurger counts sweep invocations.
type fakePurger struct {
	mu    sync.Mutex
	calls int
	fail  error
}

func (p *fakePurger) PurgeExpiredSecrets(_ context.Context, _ time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return 0, p.fail
	}
	p.calls++
	return 2, nil
}

func (p *fakePurger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// chanQueue is a minimal jobx.Queue that feeds immediate jobs through a
// channel and records delayed ones.
type chanQueue struct {
	mu      sync.Mutex
	seq     int
	ready   chan *jobx.JobInfo
	delayed []jobx.Job
}

func newChanQueue() *chanQueue {
	return &chanQueue{ready: make(chan *jobx.JobInfo, 16)}
}

func (q *chanQueue) Enqueue(_ context.Context, job jobx.Job) (string, error) {
	q.mu.Lock()
	q.seq++
	id := fmt.Sprintf("job-%d", q.seq)
	q.mu.Unlock()
	q.ready <- &jobx.JobInfo{ID: id, Type: job.Type, Queue: job.Queue, MaxRetries: job.MaxRetries}
	return id, nil
}

func (q *chanQueue) EnqueueDelayed(_ context.Context, job jobx.Job, _ time.Duration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	q.delayed = append(q.delayed, job)
	return fmt.Sprintf("job-%d", q.seq), nil
}

func (q *chanQueue) GetJob(context.Context, string) (*jobx.JobInfo, error) {
	return nil, errors.New("not supported")
}

func (q *chanQueue) Dequeue(ctx context.Context, _ []string, timeout time.Duration) (*jobx.JobInfo, error) {
	select {
	case job := <-q.ready:
		return job, nil
	case <-ctx.Done():
		return nil, nil
	case <-time.After(timeout):
		return nil, nil
	}
}

func (q *chanQueue) Complete(context.Context, string) error              { return nil }
func (q *chanQueue) Fail(context.Context, string, string) (bool, error) { return false, nil }
func (q *chanQueue) Retry(context.Context, string, time.Duration) error { return nil }
func (q *chanQueue) PromoteScheduled(context.Context, []string) error   { return nil }

func (q *chanQueue) delayedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.delayed)
}

func TestSweeper_PurgesAndRechains(t *testing.T) {
	queue := newChanQueue()
	client := jobx.NewClient(queue, jobx.Options{
		Concurrency:    1,
		PollInterval:   5 * time.Millisecond,
		DequeueTimeout: 10 * time.Millisecond,
	})

	purger := &fakePurger{}
	sweeper := maintenance.NewSweeper(purger, client, time.Hour)

	if err := sweeper.Schedule(context.Background()); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if purger.count() > 0 && queue.delayedCount() > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if purger.count() == 0 {
		t.Fatal("the sweep never ran")
	}
	if queue.delayedCount() == 0 {
		t.Fatal("a completed sweep must schedule the next one")
	}

	queue.mu.Lock()
	next := queue.delayed[0]
	queue.mu.Unlock()
	if next.Type != maintenance.JobTypeSweep {
		t.Fatalf("expected a chained sweep job, got %q", next.Type)
	}
}

func TestSweeper_PurgeFailureDoesNotPanic(t *testing.T) {
	queue := newChanQueue()
	client := jobx.NewClient(queue, jobx.Options{
		Concurrency:    1,
		PollInterval:   5 * time.Millisecond,
		DequeueTimeout: 10 * time.Millisecond,
	})

	purger := &fakePurger{fail: errors.New("db down")}
	sweeper := maintenance.NewSweeper(purger, client, time.Hour)

	if err := sweeper.Schedule(context.Background()); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	client.Start(ctx)

	// a failed sweep must not chain a successor; the next restart recovers
	if queue.delayedCount() != 0 {
		t.Fatalf("failed sweep must not schedule a successor, got %d", queue.delayedCount())
	}
}
