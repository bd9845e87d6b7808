package scheduler

import (
	"context"

	"github.com/techwm-project/techwm/pkg/models"
)

// Catalog is the part of the resource catalog the scheduler drives.
type Catalog interface {
	Exists(ctx context.Context, id string) (bool, error)
	KindOf(ctx context.Context, id string) (models.ResourceKind, error)
	IsAvailable(ctx context.Context, id string) (bool, error)
	Allocate(ctx context.Context, id string) (models.ResourceHandle, error)
	Release(ctx context.Context, id string) error
}

// Policy decides whether an account may request the given kinds.
type Policy interface {
	Evaluate(account models.AccountType, kinds []models.ResourceKind) error
}

// Stats is a snapshot of the active job table.
type Stats struct {
	Queued  int `json:"Queued"`
	Running int `json:"Running"`
}
