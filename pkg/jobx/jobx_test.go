package jobx_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ledgerline/identity/pkg/jobx"
)

// memQueue is an in-memory jobx.Queue for runner tests.
type memQueue struct {
	mu        sync.Mutex
	seq       int
	jobs      map[string]*jobx.JobInfo
	ready     []string
	scheduled map[string]time.Time
}

func newMemQueue() *memQueue {
	return &memQueue{
		jobs:      make(map[string]*jobx.JobInfo),
		scheduled: make(map[string]time.Time),
	}
}

func (q *memQueue) add(job jobx.Job) *jobx.JobInfo {
	q.seq++
	info := &jobx.JobInfo{
		ID:         fmt.Sprintf("job-%d", q.seq),
		Type:       job.Type,
		Queue:      job.Queue,
		Payload:    job.Payload,
		Status:     jobx.JobStatusPending,
		MaxRetries: job.MaxRetries,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	q.jobs[info.ID] = info
	return info
}

func (q *memQueue) Enqueue(_ context.Context, job jobx.Job) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info := q.add(job)
	q.ready = append(q.ready, info.ID)
	return info.ID, nil
}

func (q *memQueue) EnqueueDelayed(_ context.Context, job jobx.Job, delay time.Duration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info := q.add(job)
	q.scheduled[info.ID] = time.Now().Add(delay)
	return info.ID, nil
}

func (q *memQueue) GetJob(_ context.Context, jobID string) (*jobx.JobInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info, ok := q.jobs[jobID]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *info
	return &cp, nil
}

func (q *memQueue) Dequeue(ctx context.Context, _ []string, timeout time.Duration) (*jobx.JobInfo, error) {
	deadline := time.Now().Add(timeout)
	for {
		q.mu.Lock()
		if len(q.ready) > 0 {
			id := q.ready[0]
			q.ready = q.ready[1:]
			info := q.jobs[id]
			info.Status = jobx.JobStatusActive
			info.Attempts++
			cp := *info
			q.mu.Unlock()
			return &cp, nil
		}
		q.mu.Unlock()

		if time.Now().After(deadline) || ctx.Err() != nil {
			return nil, nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (q *memQueue) Complete(_ context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[jobID].Status = jobx.JobStatusCompleted
	return nil
}

func (q *memQueue) Fail(_ context.Context, jobID string, errMsg string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info := q.jobs[jobID]
	info.Error = errMsg
	if info.Attempts < info.MaxRetries {
		info.Status = jobx.JobStatusRetrying
		return true, nil
	}
	info.Status = jobx.JobStatusFailed
	return false, nil
}

func (q *memQueue) Retry(_ context.Context, jobID string, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.scheduled[jobID] = time.Now().Add(delay)
	return nil
}

func (q *memQueue) PromoteScheduled(_ context.Context, _ []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now()
	for id, due := range q.scheduled {
		if now.After(due) {
			delete(q.scheduled, id)
			q.jobs[id].Status = jobx.JobStatusPending
			q.ready = append(q.ready, id)
		}
	}
	return nil
}

func (q *memQueue) status(jobID string) jobx.JobStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.jobs[jobID].Status
}

func runnerOptions() jobx.Options {
	return jobx.Options{
		Concurrency:     1,
		PollInterval:    5 * time.Millisecond,
		DequeueTimeout:  10 * time.Millisecond,
		RetryDelay:      time.Millisecond,
		ShutdownTimeout: time.Second,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEnqueue_AppliesDefaults(t *testing.T) {
	queue := newMemQueue()
	client := jobx.NewClient(queue, runnerOptions())

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "noop"})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	info, err := queue.GetJob(context.Background(), id)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if info.Queue != "default" {
		t.Fatalf("expected default queue, got %q", info.Queue)
	}
	if info.MaxRetries != 3 {
		t.Fatalf("expected default retries, got %d", info.MaxRetries)
	}
}

func TestStart_ProcessesAndCompletes(t *testing.T) {
	queue := newMemQueue()
	client := jobx.NewClient(queue, runnerOptions())

	done := make(chan string, 1)
	client.Register("greet", func(_ context.Context, job *jobx.JobInfo) error {
		done <- string(job.Payload)
		return nil
	})

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "greet", Payload: []byte(`"hi"`)})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	select {
	case payload := <-done:
		if payload != `"hi"` {
			t.Fatalf("unexpected payload: %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was never processed")
	}

	waitFor(t, "completion", func() bool { return queue.status(id) == jobx.JobStatusCompleted })
}

func TestStart_RetriesUntilExhausted(t *testing.T) {
	queue := newMemQueue()
	client := jobx.NewClient(queue, runnerOptions())

	var mu sync.Mutex
	attempts := 0
	client.Register("flaky", func(context.Context, *jobx.JobInfo) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("still broken")
	})

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "flaky", MaxRetries: 2})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	waitFor(t, "exhaustion", func() bool { return queue.status(id) == jobx.JobStatusFailed })

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestStart_PromotesDelayedJobs(t *testing.T) {
	queue := newMemQueue()
	client := jobx.NewClient(queue, runnerOptions())

	done := make(chan struct{}, 1)
	client.Register("later", func(context.Context, *jobx.JobInfo) error {
		done <- struct{}{}
		return nil
	})

	if _, err := client.EnqueueDelayed(context.Background(), jobx.Job{Type: "later"}, 10*time.Millisecond); err != nil {
		t.Fatalf("EnqueueDelayed failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delayed job was never promoted")
	}
}

func TestStart_UnknownTypeFails(t *testing.T) {
	queue := newMemQueue()
	client := jobx.NewClient(queue, runnerOptions())

	id, err := client.Enqueue(context.Background(), jobx.Job{Type: "mystery", MaxRetries: 1})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	waitFor(t, "failure", func() bool { return queue.status(id) == jobx.JobStatusFailed })
}
