package scheduler

import (
	"context"
	"errors"
	"strconv"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"

	"github.com/techwm-project/techwm/pkg/catalog"
	"github.com/techwm-project/techwm/pkg/ledger"
	"github.com/techwm-project/techwm/pkg/logger"
	"github.com/techwm-project/techwm/pkg/models"
)

type Params struct {
	Catalog Catalog
	Ledger  ledger.Ledger
	Policy  Policy
	Clock   clock.Clock
}

// Scheduler admits jobs, hands them their resources and queues the ones
// that have to wait. Queued and running jobs live only in memory; terminal
// jobs are written to the ledger once and then dropped from memory.
//
// Every decision runs with mu held, including the catalog and ledger calls
// it makes, so no two decisions can both see a resource as available.
type Scheduler struct {
	catalog Catalog
	ledger  ledger.Ledger
	policy  Policy
	clock   clock.Clock

	mu sync.Mutex
	// active holds queued and running jobs by id, plus terminal jobs the
	// ledger failed to record
	active map[string]*activeJob
	// queue holds queued jobs in submission order
	queue []*activeJob

	metricsRegistration metric.Registration
}

type activeJob struct {
	job        models.Job
	allocation *Allocation
}

func NewScheduler(params Params) (*Scheduler, error) {
	if params.Catalog == nil || params.Ledger == nil || params.Policy == nil {
		return nil, errNilCollaborator
	}
	s := &Scheduler{
		catalog: params.Catalog,
		ledger:  params.Ledger,
		policy:  params.Policy,
		clock:   params.Clock,
		active:  make(map[string]*activeJob),
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	s.mu.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "Scheduler.mu",
	})

	registration, err := Meter.RegisterCallback(s.observe, jobsActive)
	if err != nil {
		return nil, err
	}
	s.metricsRegistration = registration
	return s, nil
}

func (s *Scheduler) observe(_ context.Context, o metric.Observer) error {
	stats := s.Stats()
	o.ObserveInt64(jobsActive, int64(stats.Queued), metric.WithAttributes(stateAttribute(models.JobStateQueued)))
	o.ObserveInt64(jobsActive, int64(stats.Running), metric.WithAttributes(stateAttribute(models.JobStateRunning)))
	return nil
}

// Submit admits a job for caller and tries to start it.
//
// Unknown resources and policy violations fail before a job id is
// consumed. From then on the job exists: if no job is queued and all
// requested resources are available it starts at once and the returned
// allocation is already resolved, otherwise it joins the tail of the queue
// and the allocation resolves when the job is promoted.
//
// Errors:
//
//   - catalog.ErrResourceNotFound          -- if a requested resource is not registered
//   - policy.ErrIllegalResourceRequest     -- if the request exceeds the account limits
func (s *Scheduler) Submit(
	ctx context.Context, caller models.Caller, name string, resourceIDs []string) (*Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kinds := make([]models.ResourceKind, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		exists, err := s.catalog.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			err = catalog.NewErrResourceNotFound(id)
			jobsRejected.Inc(ctx, reasonAttribute(err))
			return nil, err
		}
		kind, err := s.catalog.KindOf(ctx, id)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	if err := s.policy.Evaluate(caller.AccountType, kinds); err != nil {
		jobsRejected.Inc(ctx, reasonAttribute(err))
		return nil, err
	}

	// from here on the job id is consumed, even if the job never runs
	id, err := s.ledger.NextID(ctx)
	if err != nil {
		return nil, err
	}
	jobsSubmitted.Inc(ctx)

	now := s.now()
	entry := &activeJob{
		job: models.Job{
			ID:                 id,
			Name:               name,
			Owner:              caller.Username,
			RequestedResources: append([]string{}, resourceIDs...),
			State:              models.JobStateQueued,
			CreateTime:         now,
			ModifyTime:         now,
		},
		allocation: newAllocation(id, s),
	}
	s.active[id] = entry

	ctx = log.Ctx(ctx).With().
		Str(logger.JobIDFieldName, id).
		Str(logger.OwnerFieldName, caller.Username).
		Logger().WithContext(ctx)

	// a non-empty queue means older jobs are waiting, so the new job
	// joins the tail even if its own resources are free
	available := false
	if len(s.queue) == 0 {
		available, err = s.allAvailable(ctx, entry.job.RequestedResources)
		if err != nil {
			s.failJob(ctx, entry, err)
			return nil, err
		}
	}
	if !available {
		s.queue = append(s.queue, entry)
		log.Ctx(ctx).Debug().Int("QueuePosition", len(s.queue)).Msg("job queued")
		return entry.allocation, nil
	}

	if err = s.activate(ctx, entry); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Msg("job started")
	return entry.allocation, nil
}

// Cancel fails a queued or running job. A running job gives back its
// resources and queued jobs are promoted. The allocation of a job cancelled
// while queued resolves with ErrInvalidJobState.
//
// The username is recorded in the logs only; access control is the
// caller's responsibility.
//
// Errors:
//
//   - ledger.ErrJobNotFound        -- if the job was never submitted
//   - ErrInvalidJobState           -- if the job is already terminal
func (s *Scheduler) Cancel(ctx context.Context, jobID string, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.getActive(ctx, jobID, models.JobStateUndefined)
	if err != nil {
		return err
	}
	if entry.job.IsTerminal() {
		return NewErrInvalidJobState(jobID, entry.job.State, models.JobStateUndefined)
	}

	ctx = log.Ctx(ctx).With().Str(logger.JobIDFieldName, jobID).Logger().WithContext(ctx)
	log.Ctx(ctx).Debug().Str("CancelledBy", username).Stringer("State", entry.job.State).Msg("cancelling job")

	if entry.job.State == models.JobStateQueued {
		s.removeFromQueue(jobID)
		err = s.terminate(ctx, entry, models.JobStateFailed)
		entry.allocation.resolve(entry.job, NewErrInvalidJobState(jobID, models.JobStateFailed, models.JobStateRunning))
	} else {
		err = s.terminate(ctx, entry, models.JobStateFailed)
	}

	return multierr.Append(err, s.promote(ctx))
}

// Finish completes a running job, gives back its resources and promotes
// queued jobs.
//
// Errors:
//
//   - ledger.ErrJobNotFound        -- if the job was never submitted
//   - ErrInvalidJobState           -- if the job is not running
func (s *Scheduler) Finish(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.getActive(ctx, jobID, models.JobStateRunning)
	if err != nil {
		return err
	}
	if entry.job.State != models.JobStateRunning {
		return NewErrInvalidJobState(jobID, entry.job.State, models.JobStateRunning)
	}

	ctx = log.Ctx(ctx).With().Str(logger.JobIDFieldName, jobID).Logger().WithContext(ctx)
	err = s.terminate(ctx, entry, models.JobStateFinished)
	return multierr.Append(err, s.promote(ctx))
}

// GetInformation returns the live record of a queued or running job, or the
// ledger record of a terminal one.
//
// Errors:
//
//   - ledger.ErrJobNotFound        -- if the job was never submitted
func (s *Scheduler) GetInformation(ctx context.Context, jobID string) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.active[jobID]; ok {
		return entry.job.Copy(), nil
	}
	return s.ledger.Get(ctx, jobID)
}

// Stats counts the queued and running jobs.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Queued: len(s.queue)}
	for _, entry := range s.active {
		if entry.job.State == models.JobStateRunning {
			stats.Running++
		}
	}
	return stats
}

// ListActive returns the queued and running jobs ordered by id.
func (s *Scheduler) ListActive() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]models.Job, 0, len(s.active))
	for _, entry := range s.active {
		if entry.job.IsTerminal() {
			continue
		}
		jobs = append(jobs, entry.job.Copy())
	}
	slices.SortFunc(jobs, func(a, b models.Job) bool {
		return lessID(a.ID, b.ID)
	})
	return jobs
}

// Close stops reporting metrics for this scheduler.
func (s *Scheduler) Close(context.Context) error {
	if s.metricsRegistration == nil {
		return nil
	}
	return s.metricsRegistration.Unregister()
}

// getActive finds jobID in the active table. Jobs that are only in the
// ledger are terminal and reported as ErrInvalidJobState.
func (s *Scheduler) getActive(ctx context.Context, jobID string, expected models.JobStateType) (*activeJob, error) {
	if entry, ok := s.active[jobID]; ok {
		return entry, nil
	}
	job, err := s.ledger.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return nil, NewErrInvalidJobState(jobID, job.State, expected)
}

// promote starts queued jobs from the head of the queue until the queue is
// empty or the head cannot get all of its resources. Jobs behind a blocked
// head wait even if their own resources are free.
func (s *Scheduler) promote(ctx context.Context) error {
	var errs error
	for len(s.queue) > 0 {
		head := s.queue[0]
		headCtx := log.Ctx(ctx).With().Str(logger.JobIDFieldName, head.job.ID).Logger().WithContext(ctx)

		available, err := s.allAvailable(headCtx, head.job.RequestedResources)
		if err != nil {
			s.queue = s.queue[1:]
			s.failJob(headCtx, head, err)
			errs = multierr.Append(errs, err)
			continue
		}
		if !available {
			break
		}

		s.queue = s.queue[1:]
		if err = s.activate(headCtx, head); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		jobsPromoted.Inc(headCtx)
		log.Ctx(headCtx).Debug().Msg("queued job started")
	}
	return errs
}

func (s *Scheduler) allAvailable(ctx context.Context, resourceIDs []string) (bool, error) {
	for _, id := range resourceIDs {
		available, err := s.catalog.IsAvailable(ctx, id)
		if err != nil {
			return false, err
		}
		if !available {
			return false, nil
		}
	}
	return true, nil
}

// activate allocates every requested resource in order and resolves the
// allocation. On failure the job is failed and the error returned.
func (s *Scheduler) activate(ctx context.Context, entry *activeJob) error {
	handles := make([]models.ResourceHandle, 0, len(entry.job.RequestedResources))
	for _, id := range entry.job.RequestedResources {
		handle, err := s.catalog.Allocate(ctx, id)
		if err != nil {
			entry.job.AllocatedResources = handles
			s.failJob(ctx, entry, err)
			return err
		}
		handles = append(handles, handle)
	}

	entry.job.AllocatedResources = handles
	entry.job.State = models.JobStateRunning
	entry.job.ModifyTime = s.now()
	entry.allocation.resolve(entry.job, nil)
	return nil
}

// failJob ends a job that hit a catalog or ledger failure. Whatever it
// holds is released and a Failed record is written on a best effort basis.
// The job id stays consumed.
func (s *Scheduler) failJob(ctx context.Context, entry *activeJob, cause error) {
	log.Ctx(ctx).Error().Err(cause).Msg("job failed while acquiring resources")
	s.removeFromQueue(entry.job.ID)
	if err := s.terminate(ctx, entry, models.JobStateFailed); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to clean up failed job")
	}
	entry.allocation.resolve(entry.job, cause)
}

// terminate releases the job's resources, moves it to state, records it in
// the ledger and, once recorded, drops it from the active table. All steps run even if
// some fail; the failures are returned together.
func (s *Scheduler) terminate(ctx context.Context, entry *activeJob, state models.JobStateType) error {
	var errs error
	for _, handle := range entry.job.AllocatedResources {
		if err := s.catalog.Release(ctx, handle.ID); err != nil {
			log.Ctx(ctx).Error().Err(err).Str(logger.ResourceIDFieldName, handle.ID).Msg("failed to release resource")
			errs = multierr.Append(errs, err)
		}
	}

	entry.job.State = state
	entry.job.ModifyTime = s.now()
	jobsTerminal.Inc(ctx, stateAttribute(state))

	// an unrecorded job stays in the active table so it can still be read
	if err := s.ledger.Append(ctx, entry.job.Copy()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to record terminal job")
		errs = multierr.Append(errs, err)
	} else {
		delete(s.active, entry.job.ID)
	}

	log.Ctx(ctx).Info().Stringer("State", state).Msg("job ended")
	return errs
}

func (s *Scheduler) removeFromQueue(jobID string) {
	s.queue = lo.Reject(s.queue, func(entry *activeJob, _ int) bool {
		return entry.job.ID == jobID
	})
}

func (s *Scheduler) now() time.Time {
	return s.clock.Now().UTC()
}

// lessID orders decimal job ids numerically, falling back to string order
// for ids that are not numbers.
func lessID(a, b string) bool {
	ai, aErr := strconv.ParseUint(a, 10, 64)
	bi, bErr := strconv.ParseUint(b, 10, 64)
	if aErr != nil || bErr != nil {
		return a < b
	}
	return ai < bi
}

// compile-time check whether the catalog implements the Catalog interface
var _ Catalog = (*catalog.Catalog)(nil)

var errNilCollaborator = errors.New("scheduler needs a catalog, a ledger and a policy")
