// Package jobx is a small background-job runner over a pluggable queue.
// The identity service uses it for maintenance work that must not run on
// a request path, such as sweeping expired one-time secrets.
package jobx

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ledgerline/identity/pkg/logx"
)

// JobStatus is the current state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// Job is a unit of work to enqueue.
type Job struct {
	Type    string          `json:"type"`
	Queue   string          `json:"queue"`
	Payload json.RawMessage `json:"payload"`

	// MaxRetries caps retry attempts. Zero means the default of 3.
	MaxRetries int `json:"max_retries"`
}

// JobInfo is the stored representation of a job.
type JobInfo struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Queue      string          `json:"queue"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status"`
	Error      string          `json:"error,omitempty"`
	MaxRetries int             `json:"max_retries"`
	Attempts   int             `json:"attempts"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// HandlerFunc processes one job. A nil return completes the job; an error
// triggers retry until MaxRetries is exhausted.
type HandlerFunc func(ctx context.Context, job *JobInfo) error

// Queue is the storage backend contract.
type Queue interface {
	Enqueue(ctx context.Context, job Job) (string, error)
	EnqueueDelayed(ctx context.Context, job Job, delay time.Duration) (string, error)
	GetJob(ctx context.Context, jobID string) (*JobInfo, error)

	Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*JobInfo, error)
	Complete(ctx context.Context, jobID string) error
	Fail(ctx context.Context, jobID string, errMsg string) (retry bool, err error)
	Retry(ctx context.Context, jobID string, delay time.Duration) error
	PromoteScheduled(ctx context.Context, queues []string) error
}

// Options configures the runner.
type Options struct {
	Queues          []string
	Concurrency     int
	PollInterval    time.Duration
	DequeueTimeout  time.Duration
	RetryDelay      time.Duration
	ShutdownTimeout time.Duration
}

func (o *Options) withDefaults() {
	if len(o.Queues) == 0 {
		o.Queues = []string{"default"}
	}
	if o.Concurrency < 1 {
		o.Concurrency = 2
	}
	if o.PollInterval == 0 {
		o.PollInterval = time.Second
	}
	if o.DequeueTimeout == 0 {
		o.DequeueTimeout = 5 * time.Second
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = 30 * time.Second
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
}

// Client enqueues jobs and runs the worker loop.
type Client struct {
	queue    Queue
	opts     Options
	handlers map[string]HandlerFunc
	mu       sync.RWMutex
}

// NewClient creates a job client over the given backend.
func NewClient(queue Queue, opts Options) *Client {
	opts.withDefaults()
	return &Client{
		queue:    queue,
		opts:     opts,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds the handler for a job type. Register before Start.
func (c *Client) Register(jobType string, handler HandlerFunc) {
	c.mu.Lock()
	c.handlers[jobType] = handler
	c.mu.Unlock()
}

// Enqueue queues a job for immediate processing.
func (c *Client) Enqueue(ctx context.Context, job Job) (string, error) {
	normalize(&job)
	return c.queue.Enqueue(ctx, job)
}

// EnqueueDelayed queues a job that becomes ready after delay.
func (c *Client) EnqueueDelayed(ctx context.Context, job Job, delay time.Duration) (string, error) {
	normalize(&job)
	return c.queue.EnqueueDelayed(ctx, job, delay)
}

func normalize(job *Job) {
	if job.Queue == "" {
		job.Queue = "default"
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = 3
	}
}

// Start runs the scheduler and workers until ctx is cancelled, then drains
// in-flight jobs up to the shutdown timeout.
func (c *Client) Start(ctx context.Context) {
	logx.Infof("jobx: starting %d workers on queues %v", c.opts.Concurrency, c.opts.Queues)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.schedulerLoop(ctx)
	}()

	for i := 0; i < c.opts.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.workerLoop(ctx, id)
		}(i)
	}

	<-ctx.Done()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logx.Info("jobx: workers stopped")
	case <-time.After(c.opts.ShutdownTimeout):
		logx.Warn("jobx: shutdown timed out")
	}
}

// schedulerLoop promotes delayed jobs to their ready queues.
func (c *Client) schedulerLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.queue.PromoteScheduled(ctx, c.opts.Queues); err != nil && ctx.Err() == nil {
				logx.WithError(err).Warn("jobx: promote failed")
			}
		}
	}
}

func (c *Client) workerLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := c.queue.Dequeue(ctx, c.opts.Queues, c.opts.DequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.WithError(err).Warnf("jobx: worker %d dequeue failed", id)
			time.Sleep(c.opts.PollInterval)
			continue
		}
		if job == nil {
			continue
		}

		c.processJob(ctx, job)
	}
}

func (c *Client) processJob(ctx context.Context, job *JobInfo) {
	c.mu.RLock()
	handler, ok := c.handlers[job.Type]
	c.mu.RUnlock()

	if !ok {
		logx.Warnf("jobx: no handler for job type %q (id=%s)", job.Type, job.ID)
		_, _ = c.queue.Fail(ctx, job.ID, "no handler registered")
		return
	}

	if err := handler(ctx, job); err != nil {
		logx.WithError(err).Warnf("jobx: job %s (%s) failed", job.ID, job.Type)

		retry, failErr := c.queue.Fail(ctx, job.ID, err.Error())
		if failErr != nil {
			logx.WithError(failErr).Errorf("jobx: marking job %s failed", job.ID)
			return
		}
		if retry {
			if err := c.queue.Retry(ctx, job.ID, c.opts.RetryDelay); err != nil {
				logx.WithError(err).Errorf("jobx: retrying job %s", job.ID)
			}
		}
		return
	}

	if err := c.queue.Complete(ctx, job.ID); err != nil {
		logx.WithError(err).Errorf("jobx: completing job %s", job.ID)
	}
}
