package scheduler

import (
	"context"
	realsync "sync"

	"github.com/techwm-project/techwm/pkg/models"
)

// Allocation is the handle returned by Submit. It resolves once the job
// holds all of its resources, or with an error if the job ends before that.
type Allocation struct {
	id        string
	scheduler *Scheduler
	done      chan struct{}
	once      realsync.Once
	job       models.Job
	err       error
}

func newAllocation(id string, scheduler *Scheduler) *Allocation {
	return &Allocation{
		id:        id,
		scheduler: scheduler,
		done:      make(chan struct{}),
	}
}

// ID is the job id, available before the allocation resolves.
func (a *Allocation) ID() string {
	return a.id
}

// Done is closed when the allocation resolves.
func (a *Allocation) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the job is running, or ctx is done. The returned job is
// the snapshot taken when the job started running.
func (a *Allocation) Wait(ctx context.Context) (models.Job, error) {
	select {
	case <-a.done:
		if a.err != nil {
			return models.Job{}, a.err
		}
		return a.job.Copy(), nil
	case <-ctx.Done():
		return models.Job{}, ctx.Err()
	}
}

// Resources waits for the job to run and returns the handles it holds.
func (a *Allocation) Resources(ctx context.Context) ([]models.ResourceHandle, error) {
	job, err := a.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return job.AllocatedResources, nil
}

// Finish completes the running job and releases its resources.
func (a *Allocation) Finish(ctx context.Context) error {
	return a.scheduler.Finish(ctx, a.id)
}

// Cancel fails the job, whether it is queued or running.
func (a *Allocation) Cancel(ctx context.Context, username string) error {
	return a.scheduler.Cancel(ctx, a.id, username)
}

func (a *Allocation) resolve(job models.Job, err error) {
	a.once.Do(func() {
		a.job = job.Copy()
		a.err = err
		close(a.done)
	})
}
