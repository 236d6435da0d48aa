// Package maintenance holds the background housekeeping jobs of the
// identity service.
package maintenance

import (
	"context"
	"time"

	"github.com/ledgerline/identity/pkg/jobx"
	"github.com/ledgerline/identity/pkg/logx"
)

// JobTypeSweep is the job type of the expired-secret sweep.
const JobTypeSweep = "expired_secret_sweep"

// SecretPurger bulk-clears expired one-time secrets.
type SecretPurger interface {
	PurgeExpiredSecrets(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically nulls expired verification tokens and one-time
// codes. Expired secrets are rejected at use time regardless; the sweep
// keeps stale hashes and tokens from lingering at rest.
type Sweeper struct {
	users    SecretPurger
	jobs     *jobx.Client
	interval time.Duration
}

// NewSweeper creates the sweeper and registers its job handler.
func NewSweeper(users SecretPurger, jobs *jobx.Client, interval time.Duration) *Sweeper {
	if interval == 0 {
		interval = time.Hour
	}

	s := &Sweeper{users: users, jobs: jobs, interval: interval}
	jobs.Register(JobTypeSweep, s.handleSweep)
	return s
}

// Schedule enqueues the first sweep; each run re-schedules the next one.
func (s *Sweeper) Schedule(ctx context.Context) error {
	_, err := s.jobs.Enqueue(ctx, jobx.Job{Type: JobTypeSweep})
	return err
}

func (s *Sweeper) handleSweep(ctx context.Context, job *jobx.JobInfo) error {
	purged, err := s.users.PurgeExpiredSecrets(ctx, time.Now())
	if err != nil {
		return err
	}

	if purged > 0 {
		logx.WithField("purged", purged).Info("maintenance: expired secrets swept")
	}

	// chain the next run; a lost link is recovered by the next restart
	if _, err := s.jobs.EnqueueDelayed(ctx, jobx.Job{Type: JobTypeSweep}, s.interval); err != nil {
		logx.WithError(err).Warn("maintenance: failed to schedule next sweep")
	}

	return nil
}
