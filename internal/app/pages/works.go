package pages

import (
	"context"
	"slices"
	"sync"
	"time"

	"zimage/internal/app/api"
	"zimage/internal/pkg/confirm"
)

// WorksLimit is the page size of the caller's own works.
const WorksLimit = 18

// JobsAPI is the subset of the jobs endpoints the works page uses.
type JobsAPI interface {
	List(ctx context.Context, page, limit int) (*api.JobList, error)
	Publish(ctx context.Context, id string, anonymous bool) (*api.ActionResult, error)
	Unpublish(ctx context.Context, id string) (*api.ActionResult, error)
	Cancel(ctx context.Context, id string) (*api.ActionResult, error)
	Delete(ctx context.Context, id string) (*api.ActionResult, error)
}

// Works is the "my works" page: the caller's jobs with search and publishing actions.
type Works struct {
	jobs    JobsAPI
	confirm confirm.Confirmer

	mu     sync.Mutex
	pager  Pager
	search string
	items  []api.Job
}

// NewWorks starts on page 1 with no search text.
func NewWorks(jobs JobsAPI, c confirm.Confirmer) *Works {
	return &Works{jobs: jobs, confirm: c, pager: NewPager()}
}

// Load fetches the current page and keeps the jobs matching the search text.
func (w *Works) Load(ctx context.Context) ([]api.Job, error) {
	w.mu.Lock()
	page, search := w.pager.Page, w.search
	w.mu.Unlock()

	res, err := w.jobs.List(ctx, page, WorksLimit)
	if err != nil {
		return nil, err
	}
	items := FilterByPrompt(res.Jobs, search, func(j api.Job) string { return j.Prompt })

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pager.SetTotal(res.TotalPages)
	w.items = items
	return slices.Clone(items), nil
}

// Jobs returns the jobs from the last Load with local updates applied.
func (w *Works) Jobs() []api.Job {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.items)
}

// SetSearch sets the prompt filter and goes back to page 1.
func (w *Works) SetSearch(query string) {
	w.mu.Lock()
	w.search = query
	w.pager.Page = 1
	w.mu.Unlock()
}

// Goto selects a page; see Pager.Goto.
func (w *Works) Goto(page int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pager.Goto(page)
}

// SetPage selects the page the next Load requests; see Pager.Seek.
func (w *Works) SetPage(page int) {
	w.mu.Lock()
	w.pager.Seek(page)
	w.mu.Unlock()
}

// Pager returns the pagination state after the last Load.
func (w *Works) Pager() Pager {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pager
}

// HasPending reports whether any loaded job is queued or running.
func (w *Works) HasPending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.ContainsFunc(w.items, func(j api.Job) bool { return j.Status.Pending() })
}

// Publish shares a job to the gallery and marks it public locally without reloading.
func (w *Works) Publish(ctx context.Context, id string, anonymous bool) error {
	if _, err := w.jobs.Publish(ctx, id, anonymous); err != nil {
		return err
	}
	w.update(id, func(j *api.Job) {
		j.IsPublic = true
		j.IsAnonymous = anonymous
	})
	return nil
}

// Unpublish removes a job from the gallery after confirmation.
func (w *Works) Unpublish(ctx context.Context, id string) error {
	if err := confirm.Require(ctx, w.confirm, "Remove this work from the gallery?"); err != nil {
		return err
	}
	if _, err := w.jobs.Unpublish(ctx, id); err != nil {
		return err
	}
	w.update(id, func(j *api.Job) { j.IsPublic = false })
	return nil
}

// Cancel stops a pending job after confirmation.
func (w *Works) Cancel(ctx context.Context, id string) error {
	if err := confirm.Require(ctx, w.confirm, "Cancel this job?"); err != nil {
		return err
	}
	if _, err := w.jobs.Cancel(ctx, id); err != nil {
		return err
	}
	w.update(id, func(j *api.Job) { j.Status = api.JobCancelled })
	return nil
}

// Delete removes a job after confirmation and drops it from the local list.
func (w *Works) Delete(ctx context.Context, id string) error {
	if err := confirm.Require(ctx, w.confirm, "Delete this work? This cannot be undone."); err != nil {
		return err
	}
	if _, err := w.jobs.Delete(ctx, id); err != nil {
		return err
	}

	w.mu.Lock()
	w.items = slices.DeleteFunc(w.items, func(j api.Job) bool { return j.ID == id })
	w.mu.Unlock()
	return nil
}

// Watch reloads the current page every interval while any job is pending, reporting each
// refreshed list to onRefresh. It returns when ctx ends.
func (w *Works) Watch(ctx context.Context, interval time.Duration, onRefresh func([]api.Job)) {
	Poll(ctx, interval, func(ctx context.Context) error {
		if !w.HasPending() {
			return nil
		}
		jobs, err := w.Load(ctx)
		if err != nil {
			return err
		}
		if onRefresh != nil {
			onRefresh(jobs)
		}
		return nil
	})
}

func (w *Works) update(id string, fn func(j *api.Job)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.items {
		if w.items[i].ID == id {
			fn(&w.items[i])
		}
	}
}
