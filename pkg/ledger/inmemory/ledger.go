package inmemory

import (
	"context"
	"strconv"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"

	"github.com/techwm-project/techwm/pkg/ledger"
	"github.com/techwm-project/techwm/pkg/models"
)

type Ledger struct {
	jobs   map[string]models.Job
	nextID uint64
	mu     sync.RWMutex
}

func NewLedger() *Ledger {
	res := &Ledger{
		jobs: make(map[string]models.Job),
	}
	res.mu.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "InMemoryLedger.mu",
	})
	return res
}

func (l *Ledger) NextID(_ context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := strconv.FormatUint(l.nextID, 10)
	l.nextID++
	return id, nil
}

func (l *Ledger) Append(_ context.Context, job models.Job) error {
	if !job.IsTerminal() {
		return ledger.NewErrJobNotTerminal(job.ID, job.State)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.jobs[job.ID]; ok {
		return ledger.NewErrJobAlreadyExists(job.ID)
	}
	l.jobs[job.ID] = job.Copy()
	return nil
}

func (l *Ledger) Get(_ context.Context, id string) (models.Job, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	job, ok := l.jobs[id]
	if !ok {
		return models.Job{}, ledger.NewErrJobNotFound(id)
	}
	return job.Copy(), nil
}

func (l *Ledger) Close(context.Context) error {
	return nil
}

// compile-time check whether the Ledger implements the ledger.Ledger interface
var _ ledger.Ledger = (*Ledger)(nil)
