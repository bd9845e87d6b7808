//go:build unit || !integration

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	"github.com/techwm-project/techwm/pkg/catalog"
	catalogstore "github.com/techwm-project/techwm/pkg/catalog/inmemory"
	"github.com/techwm-project/techwm/pkg/ledger"
	ledgerstore "github.com/techwm-project/techwm/pkg/ledger/inmemory"
	"github.com/techwm-project/techwm/pkg/logger"
	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/policy"
)

var (
	admin      = models.Caller{Username: "admin", AccountType: models.AccountTypeRoot}
	student    = models.Caller{Username: "student", AccountType: models.AccountTypeDefault}
	researcher = models.Caller{Username: "researcher", AccountType: models.AccountTypeResearch}
)

// faultyCatalog fails the configured operations for specific resources.
type faultyCatalog struct {
	*catalog.Catalog
	failAllocate    map[string]error
	failIsAvailable map[string]error
}

func (c *faultyCatalog) Allocate(ctx context.Context, id string) (models.ResourceHandle, error) {
	if err, ok := c.failAllocate[id]; ok {
		return models.ResourceHandle{}, err
	}
	return c.Catalog.Allocate(ctx, id)
}

func (c *faultyCatalog) IsAvailable(ctx context.Context, id string) (bool, error) {
	if err, ok := c.failIsAvailable[id]; ok {
		return false, err
	}
	return c.Catalog.IsAvailable(ctx, id)
}

// faultyLedger fails Append while failAppend is set.
type faultyLedger struct {
	ledger.Ledger
	failAppend error
}

func (l *faultyLedger) Append(ctx context.Context, job models.Job) error {
	if l.failAppend != nil {
		return l.failAppend
	}
	return l.Ledger.Append(ctx, job)
}

type SchedulerTestSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *clock.Mock
	catalog   *faultyCatalog
	ledger    *faultyLedger
	scheduler *Scheduler
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func (s *SchedulerTestSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.clock = clock.NewMock()
	s.catalog = &faultyCatalog{
		Catalog:         catalog.NewCatalog(catalog.Params{Store: catalogstore.NewStore()}),
		failAllocate:    map[string]error{},
		failIsAvailable: map[string]error{},
	}
	s.ledger = &faultyLedger{Ledger: ledgerstore.NewLedger()}

	var err error
	s.scheduler, err = NewScheduler(Params{
		Catalog: s.catalog,
		Ledger:  s.ledger,
		Policy:  policy.NewDefaultPolicy(),
		Clock:   s.clock,
	})
	s.Require().NoError(err)
}

func (s *SchedulerTestSuite) TearDownTest() {
	s.NoError(s.scheduler.Close(s.ctx))
}

func (s *SchedulerTestSuite) register(ids ...string) {
	for _, id := range ids {
		_, err := s.catalog.Register(s.ctx, id, id)
		s.Require().NoError(err)
	}
}

func (s *SchedulerTestSuite) submit(caller models.Caller, name string, ids ...string) *Allocation {
	allocation, err := s.scheduler.Submit(s.ctx, caller, name, ids)
	s.Require().NoError(err)
	return allocation
}

func (s *SchedulerTestSuite) requireResolved(allocation *Allocation) models.Job {
	select {
	case <-allocation.Done():
	default:
		s.FailNow("allocation is not resolved", "job %s", allocation.ID())
	}
	job, err := allocation.Wait(s.ctx)
	s.Require().NoError(err)
	return job
}

func (s *SchedulerTestSuite) requirePending(allocation *Allocation) {
	select {
	case <-allocation.Done():
		s.FailNow("allocation resolved unexpectedly", "job %s", allocation.ID())
	default:
	}
}

func (s *SchedulerTestSuite) requireState(jobID string, expected models.JobStateType) models.Job {
	job, err := s.scheduler.GetInformation(s.ctx, jobID)
	s.Require().NoError(err)
	s.Require().Equal(expected, job.State, "job %s", jobID)
	return job
}

func (s *SchedulerTestSuite) requireAvailable(id string, expected bool) {
	available, err := s.catalog.IsAvailable(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(expected, available, "resource %s", id)
}

func (s *SchedulerTestSuite) TestSubmitRunsImmediately() {
	s.register("cpu-1", "gpu-1")

	allocation := s.submit(admin, "first-job", "cpu-1", "gpu-1")
	s.Equal("0", allocation.ID())

	job := s.requireResolved(allocation)
	s.Equal(models.JobStateRunning, job.State)
	s.Equal("first-job", job.Name)
	s.Equal("admin", job.Owner)
	s.Equal([]models.ResourceHandle{
		{ID: "cpu-1", Kind: models.ResourceKindCPU},
		{ID: "gpu-1", Kind: models.ResourceKindGPU},
	}, job.AllocatedResources)

	resources, err := allocation.Resources(s.ctx)
	s.Require().NoError(err)
	s.Equal(job.AllocatedResources, resources)

	s.requireAvailable("cpu-1", false)
	s.requireAvailable("gpu-1", false)
	s.requireState("0", models.JobStateRunning)
}

func (s *SchedulerTestSuite) TestSubmitUnknownResourceConsumesNoID() {
	s.register("cpu-1")

	_, err := s.scheduler.Submit(s.ctx, admin, "job", []string{"cpu-1", "missing"})
	s.ErrorAs(err, &catalog.ErrResourceNotFound{})
	s.True(models.IsErrorWithCode(err, models.NotFoundError))
	s.requireAvailable("cpu-1", true)
	s.Equal(Stats{}, s.scheduler.Stats())

	s.Equal("0", s.submit(admin, "job", "cpu-1").ID())
}

func (s *SchedulerTestSuite) TestSubmitIllegalRequestConsumesNoID() {
	s.register("cpu-1", "cpu-2", "cpu-3", "gpu-1", "gpu-2", "gpu-3")

	testCases := []struct {
		name   string
		caller models.Caller
		ids    []string
	}{
		{"default with gpu", student, []string{"gpu-1"}},
		{"default with three resources", student, []string{"cpu-1", "cpu-2", "cpu-3"}},
		{"research with three cpu", researcher, []string{"cpu-1", "cpu-2", "cpu-3"}},
		{"research with three gpu", researcher, []string{"gpu-1", "gpu-2", "gpu-3"}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.scheduler.Submit(s.ctx, tc.caller, "job", tc.ids)
			s.ErrorAs(err, &policy.ErrIllegalResourceRequest{})
			s.True(models.IsErrorWithCode(err, models.IllegalResourceRequest))
		})
	}

	s.Equal("0", s.submit(researcher, "job", "cpu-1", "cpu-2", "gpu-1", "gpu-2").ID())
}

func (s *SchedulerTestSuite) TestSubmitQueuesWhenBusy() {
	s.register("cpu-1")

	first := s.submit(admin, "first", "cpu-1")
	s.requireResolved(first)

	second := s.submit(admin, "second", "cpu-1")
	s.Equal("1", second.ID())
	s.requirePending(second)

	job := s.requireState("1", models.JobStateQueued)
	s.Empty(job.AllocatedResources)
	s.Equal(Stats{Queued: 1, Running: 1}, s.scheduler.Stats())

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Millisecond)
	defer cancel()
	_, err := second.Wait(ctx)
	s.ErrorIs(err, context.DeadlineExceeded)
}

// register cpu-1, J1 runs, J2 queues behind it, cancelling J1 starts J2 and
// finishing J2 leaves nothing behind.
func (s *SchedulerTestSuite) TestEndToEnd() {
	s.register("cpu-1")

	j1 := s.submit(admin, "j1", "cpu-1")
	s.Equal(models.JobStateRunning, s.requireResolved(j1).State)

	j2 := s.submit(admin, "j2", "cpu-1")
	s.requirePending(j2)

	s.Require().NoError(s.scheduler.Cancel(s.ctx, j1.ID(), "admin"))
	s.requireState(j1.ID(), models.JobStateFailed)

	running := s.requireResolved(j2)
	s.Equal(models.JobStateRunning, running.State)
	s.Equal([]models.ResourceHandle{{ID: "cpu-1", Kind: models.ResourceKindCPU}}, running.AllocatedResources)
	s.requireAvailable("cpu-1", false)

	s.Require().NoError(j2.Finish(s.ctx))
	finished := s.requireState(j2.ID(), models.JobStateFinished)
	s.Equal(running.AllocatedResources, finished.AllocatedResources)
	s.requireAvailable("cpu-1", true)
	s.Equal(Stats{}, s.scheduler.Stats())
	s.Empty(s.scheduler.ListActive())
}

// A waits on X, B behind it waits on Y. Freeing Y alone starts nothing,
// because A is at the head of the queue.
func (s *SchedulerTestSuite) TestHeadOfLineBlocking() {
	s.register("x", "y")

	holdX := s.submit(admin, "hold-x", "x")
	holdY := s.submit(admin, "hold-y", "y")
	a := s.submit(admin, "a", "x")
	b := s.submit(admin, "b", "y")
	s.requirePending(a)
	s.requirePending(b)

	s.Require().NoError(holdY.Finish(s.ctx))
	s.requireAvailable("y", true)
	s.requirePending(a)
	s.requirePending(b)
	s.requireState(b.ID(), models.JobStateQueued)

	s.Require().NoError(holdX.Finish(s.ctx))
	s.requireResolved(a)
	s.requireResolved(b)
	s.Equal(Stats{Running: 2}, s.scheduler.Stats())
}

// A waits on X, B waits on Y. When X frees first A runs and B stays queued.
func (s *SchedulerTestSuite) TestFIFOPromotion() {
	s.register("x", "y")

	holdX := s.submit(admin, "hold-x", "x")
	holdY := s.submit(admin, "hold-y", "y")
	a := s.submit(admin, "a", "x")
	b := s.submit(admin, "b", "y")

	s.Require().NoError(s.scheduler.Cancel(s.ctx, holdX.ID(), "admin"))
	s.requireResolved(a)
	s.requirePending(b)

	s.Require().NoError(holdY.Finish(s.ctx))
	s.requireResolved(b)
}

// A waits on X and Y. C only needs Y, which is free, but A is already
// queued so C waits behind it instead of taking Y.
func (s *SchedulerTestSuite) TestSubmitJoinsNonEmptyQueue() {
	s.register("x", "y")

	holder := s.submit(admin, "holder", "x")
	a := s.submit(admin, "a", "x", "y")
	c := s.submit(admin, "c", "y")
	empty := s.submit(admin, "empty")
	s.requirePending(a)
	s.requirePending(c)
	s.requirePending(empty)
	s.requireState(c.ID(), models.JobStateQueued)
	s.requireAvailable("y", true)
	s.Equal(Stats{Queued: 3, Running: 1}, s.scheduler.Stats())

	s.Require().NoError(holder.Finish(s.ctx))
	s.Equal(models.JobStateRunning, s.requireResolved(a).State)
	s.requirePending(c)
	s.requirePending(empty)

	s.Require().NoError(a.Finish(s.ctx))
	s.requireResolved(c)
	s.requireResolved(empty)
	s.Equal(Stats{Running: 2}, s.scheduler.Stats())
}

func (s *SchedulerTestSuite) TestSingleReleasePromotesSeveralJobs() {
	s.register("cpu-1", "cpu-2")

	holder := s.submit(admin, "holder", "cpu-1", "cpu-2")
	first := s.submit(admin, "first", "cpu-1")
	second := s.submit(admin, "second", "cpu-2")
	third := s.submit(admin, "third", "cpu-1")

	s.Require().NoError(holder.Finish(s.ctx))
	s.requireResolved(first)
	s.requireResolved(second)
	s.requirePending(third)
	s.Equal(Stats{Queued: 1, Running: 2}, s.scheduler.Stats())
}

func (s *SchedulerTestSuite) TestCancelRunningReleasesExactlyItsResources() {
	s.register("cpu-1", "cpu-2", "cpu-3")

	other := s.submit(admin, "other", "cpu-3")
	job := s.submit(admin, "job", "cpu-1", "cpu-2")
	s.requireResolved(job)

	s.Require().NoError(s.scheduler.Cancel(s.ctx, job.ID(), "admin"))
	s.requireAvailable("cpu-1", true)
	s.requireAvailable("cpu-2", true)
	s.requireAvailable("cpu-3", false)
	s.requireState(other.ID(), models.JobStateRunning)

	failed := s.requireState(job.ID(), models.JobStateFailed)
	again, err := s.scheduler.GetInformation(s.ctx, job.ID())
	s.Require().NoError(err)
	s.Equal(failed, again)

	recorded, err := s.ledger.Get(s.ctx, job.ID())
	s.Require().NoError(err)
	s.Equal(failed, recorded)
}

func (s *SchedulerTestSuite) TestCancelQueued() {
	s.register("cpu-1", "cpu-2")

	holder := s.submit(admin, "holder", "cpu-1")
	queued := s.submit(admin, "queued", "cpu-1", "cpu-2")
	next := s.submit(admin, "next", "cpu-1")

	s.Require().NoError(s.scheduler.Cancel(s.ctx, queued.ID(), "admin"))

	_, err := queued.Wait(s.ctx)
	s.ErrorAs(err, &ErrInvalidJobState{})
	job := s.requireState(queued.ID(), models.JobStateFailed)
	s.Empty(job.AllocatedResources)

	// nothing was released, so nothing moves
	s.requireAvailable("cpu-1", false)
	s.requireAvailable("cpu-2", true)
	s.requirePending(next)
	s.Equal(Stats{Queued: 1, Running: 1}, s.scheduler.Stats())

	s.Require().NoError(holder.Finish(s.ctx))
	s.requireResolved(next)
}

func (s *SchedulerTestSuite) TestCancelErrors() {
	s.register("cpu-1")

	job := s.submit(admin, "job", "cpu-1")
	s.Require().NoError(job.Cancel(s.ctx, "admin"))

	err := s.scheduler.Cancel(s.ctx, job.ID(), "admin")
	s.ErrorAs(err, &ErrInvalidJobState{})
	s.True(models.IsErrorWithCode(err, models.InvalidStateError))

	err = s.scheduler.Cancel(s.ctx, "42", "admin")
	s.ErrorAs(err, &ledger.ErrJobNotFound{})
	s.True(models.IsErrorWithCode(err, models.NotFoundError))
}

func (s *SchedulerTestSuite) TestFinishErrors() {
	s.register("cpu-1")

	running := s.submit(admin, "running", "cpu-1")
	queued := s.submit(admin, "queued", "cpu-1")

	err := queued.Finish(s.ctx)
	s.ErrorAs(err, &ErrInvalidJobState{})
	s.requireState(queued.ID(), models.JobStateQueued)

	s.Require().NoError(running.Finish(s.ctx))
	err = running.Finish(s.ctx)
	s.ErrorAs(err, &ErrInvalidJobState{})
	s.requireState(running.ID(), models.JobStateFinished)

	err = s.scheduler.Finish(s.ctx, "42")
	s.ErrorAs(err, &ledger.ErrJobNotFound{})
}

func (s *SchedulerTestSuite) TestGetInformationUnknownJob() {
	_, err := s.scheduler.GetInformation(s.ctx, "0")
	s.ErrorAs(err, &ledger.ErrJobNotFound{})
	s.True(models.IsErrorWithCode(err, models.NotFoundError))
}

func (s *SchedulerTestSuite) TestAllocationFailureBurnsID() {
	s.register("cpu-1", "broken")
	boom := errors.New("device unreachable")
	s.catalog.failAllocate["broken"] = boom

	_, err := s.scheduler.Submit(s.ctx, admin, "job", []string{"cpu-1", "broken"})
	s.ErrorIs(err, boom)

	// cpu-1 was allocated before the failure and is given back
	s.requireAvailable("cpu-1", true)
	job := s.requireState("0", models.JobStateFailed)
	s.Equal([]models.ResourceHandle{{ID: "cpu-1", Kind: models.ResourceKindCPU}}, job.AllocatedResources)
	s.Equal(Stats{}, s.scheduler.Stats())

	s.Equal("1", s.submit(admin, "next", "cpu-1").ID())
}

func (s *SchedulerTestSuite) TestAvailabilityFailureBurnsID() {
	s.register("cpu-1")
	boom := errors.New("store offline")
	s.catalog.failIsAvailable["cpu-1"] = boom

	_, err := s.scheduler.Submit(s.ctx, admin, "job", []string{"cpu-1"})
	s.ErrorIs(err, boom)
	s.requireState("0", models.JobStateFailed)
}

func (s *SchedulerTestSuite) TestPromotionFailureSkipsToNextJob() {
	s.register("cpu-1", "cpu-2", "broken")
	boom := errors.New("device unreachable")

	holder := s.submit(admin, "holder", "cpu-1", "broken")
	failing := s.submit(admin, "failing", "cpu-1", "broken")
	next := s.submit(admin, "next", "cpu-1", "cpu-2")

	s.catalog.failAllocate["broken"] = boom
	err := holder.Finish(s.ctx)
	s.ErrorIs(err, boom)
	s.requireState(holder.ID(), models.JobStateFinished)

	_, err = failing.Wait(s.ctx)
	s.ErrorIs(err, boom)
	s.requireState(failing.ID(), models.JobStateFailed)

	s.requireResolved(next)
	s.requireAvailable("cpu-1", false)
	s.requireAvailable("cpu-2", false)
}

func (s *SchedulerTestSuite) TestUnrecordedJobStaysVisible() {
	s.register("cpu-1")
	job := s.submit(admin, "job", "cpu-1")
	s.requireResolved(job)

	boom := errors.New("disk full")
	s.ledger.failAppend = boom
	s.ErrorIs(job.Finish(s.ctx), boom)

	s.requireState(job.ID(), models.JobStateFinished)
	s.requireAvailable("cpu-1", true)
	s.Equal(Stats{}, s.scheduler.Stats())
	s.Empty(s.scheduler.ListActive())

	s.ErrorAs(s.scheduler.Cancel(s.ctx, job.ID(), "admin"), &ErrInvalidJobState{})
	s.ErrorAs(job.Finish(s.ctx), &ErrInvalidJobState{})
	s.requireState(job.ID(), models.JobStateFinished)

	_, err := s.ledger.Get(s.ctx, job.ID())
	s.ErrorAs(err, &ledger.ErrJobNotFound{})
}

func (s *SchedulerTestSuite) TestDuplicateResourceIDs() {
	s.register("cpu-1")

	job := s.requireResolved(s.submit(admin, "job", "cpu-1", "cpu-1"))
	s.Len(job.AllocatedResources, 2)
	s.requireAvailable("cpu-1", false)

	s.Require().NoError(s.scheduler.Finish(s.ctx, job.ID))
	s.requireAvailable("cpu-1", true)
}

func (s *SchedulerTestSuite) TestTimestamps() {
	s.register("cpu-1")
	start := s.clock.Now().UTC()

	allocation := s.submit(admin, "job", "cpu-1")
	s.clock.Add(time.Minute)
	s.Require().NoError(allocation.Finish(s.ctx))

	job := s.requireState(allocation.ID(), models.JobStateFinished)
	s.Equal(start, job.CreateTime)
	s.Equal(start.Add(time.Minute), job.ModifyTime)
}

func (s *SchedulerTestSuite) TestListActive() {
	s.register("cpu-1")
	for i := 0; i < 12; i++ {
		s.submit(admin, fmt.Sprintf("job-%d", i), "cpu-1")
	}

	jobs := s.scheduler.ListActive()
	s.Require().Len(jobs, 12)
	for i, job := range jobs {
		s.Equal(fmt.Sprint(i), job.ID)
	}
	s.Equal(models.JobStateRunning, jobs[0].State)
	s.Equal(models.JobStateQueued, jobs[11].State)
}

func (s *SchedulerTestSuite) TestConcurrentSubmitsNeverShareResources() {
	s.register("cpu-1", "cpu-2")
	const workers = 20

	var holders [2]atomic.Int32
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resource := i % 2
			allocation, err := s.scheduler.Submit(s.ctx, admin, "job", []string{fmt.Sprintf("cpu-%d", resource+1)})
			if err != nil {
				errs <- err
				return
			}
			if _, err = allocation.Wait(s.ctx); err != nil {
				errs <- err
				return
			}
			if n := holders[resource].Add(1); n != 1 {
				errs <- fmt.Errorf("resource cpu-%d held by %d jobs", resource+1, n)
			}
			holders[resource].Add(-1)
			if err = allocation.Finish(s.ctx); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	s.Equal(Stats{}, s.scheduler.Stats())
	for i := 0; i < workers; i++ {
		s.requireState(fmt.Sprint(i), models.JobStateFinished)
	}
}

func TestNewSchedulerNeedsCollaborators(t *testing.T) {
	_, err := NewScheduler(Params{})
	if err == nil {
		t.Fatal("expected an error without collaborators")
	}
}
