package ledger

import (
	"context"

	"github.com/techwm-project/techwm/pkg/models"
)

// Ledger hands out job ids and durably records the terminal outcome of each
// job, exactly once.
type Ledger interface {
	// NextID consumes and returns the next job id. Ids are the decimal form
	// of a counter starting at 0 and are never handed out twice.
	NextID(ctx context.Context) (string, error)
	// Append records a terminal job. A second append for the same id fails
	// with ErrJobAlreadyExists and leaves the first record untouched.
	Append(ctx context.Context, job models.Job) error
	// Get returns the recorded job or ErrJobNotFound.
	Get(ctx context.Context, id string) (models.Job, error)
	Close(ctx context.Context) error
}
