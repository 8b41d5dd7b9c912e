package pages

import (
	"context"
	"slices"
	"sync"
	"time"

	"zimage/internal/app/api"
	"zimage/internal/pkg/confirm"
)

// WorkersAPI is the subset of the worker endpoints the monitor uses.
type WorkersAPI interface {
	List(ctx context.Context) (*api.WorkerList, error)
	Delete(ctx context.Context, id string) (*api.ActionResult, error)
}

// WorkerCounts summarizes the fleet.
type WorkerCounts struct {
	Total  int
	Online int
	Busy   int
	Idle   int
}

// CountWorkers tallies online, busy and idle workers. Only online workers count as busy or idle.
func CountWorkers(workers []api.Worker) WorkerCounts {
	c := WorkerCounts{Total: len(workers)}
	for _, w := range workers {
		if !w.Online() {
			continue
		}
		c.Online++
		if w.IsBusy {
			c.Busy++
		}
	}
	c.Idle = c.Online - c.Busy
	return c
}

// Workers is the fleet monitor.
type Workers struct {
	svc     WorkersAPI
	confirm confirm.Confirmer

	mu   sync.Mutex
	list []api.Worker
}

// NewWorkers wires a monitor.
func NewWorkers(svc WorkersAPI, c confirm.Confirmer) *Workers {
	return &Workers{svc: svc, confirm: c}
}

// Load fetches the fleet.
func (w *Workers) Load(ctx context.Context) ([]api.Worker, error) {
	res, err := w.svc.List(ctx)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.list = res.Workers
	return slices.Clone(w.list), nil
}

// List returns the workers from the last Load with local removals applied.
func (w *Workers) List() []api.Worker {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.list)
}

// Counts summarizes the current list.
func (w *Workers) Counts() WorkerCounts {
	return CountWorkers(w.List())
}

// Delete unregisters a worker after confirmation and drops it from the local list.
func (w *Workers) Delete(ctx context.Context, id string) error {
	if err := confirm.Require(ctx, w.confirm, "Delete worker "+id+"?"); err != nil {
		return err
	}
	if _, err := w.svc.Delete(ctx, id); err != nil {
		return err
	}

	w.mu.Lock()
	w.list = slices.DeleteFunc(w.list, func(x api.Worker) bool { return x.ID == id })
	w.mu.Unlock()
	return nil
}

// Watch reloads every interval until ctx ends, reporting each list to onRefresh.
func (w *Workers) Watch(ctx context.Context, interval time.Duration, onRefresh func([]api.Worker)) {
	Poll(ctx, interval, func(ctx context.Context) error {
		list, err := w.Load(ctx)
		if err != nil {
			return err
		}
		if onRefresh != nil {
			onRefresh(list)
		}
		return nil
	})
}
