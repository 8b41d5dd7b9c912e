package pages

import (
	"context"
	"time"

	"zimage/internal/app/api"
	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/logx"
)

// JobGetter loads one job.
type JobGetter interface {
	Get(ctx context.Context, id string) (*api.Job, error)
}

// JobTracker follows a single job until it finishes.
type JobTracker struct {
	jobs     JobGetter
	interval time.Duration
}

// NewJobTracker polls every interval.
func NewJobTracker(jobs JobGetter, interval time.Duration) *JobTracker {
	return &JobTracker{jobs: jobs, interval: interval}
}

// Track reports every observed state of job to onUpdate and returns the terminal one.
// A network failure is logged and retried on the next tick; any other error stops tracking. When ctx ends first, the last
// observed state is returned with the context error.
func (t *JobTracker) Track(ctx context.Context, job *api.Job, onUpdate func(*api.Job)) (*api.Job, error) {
	current := job
	if current.Status.Terminal() {
		return current, nil
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return current, ctx.Err()
		case <-ticker.C:
		}

		next, err := t.jobs.Get(ctx, current.ID)
		if err != nil {
			if ctx.Err() != nil {
				return current, ctx.Err()
			}
			if !transient(err) {
				return current, err
			}
			logx.Warn("Failed to refresh job", "job_id", current.ID, "error", err.Error())
			continue
		}

		current = next
		if onUpdate != nil {
			onUpdate(current)
		}
		if current.Status.Terminal() {
			return current, nil
		}
	}
}

// transient reports whether retrying err later can help.
func transient(err error) bool {
	return errs.Is(err, errs.ErrNetwork) || errs.Is(err, errs.ErrRateLimitExceeded) || errs.Is(err, errs.ErrUnknown)
}
