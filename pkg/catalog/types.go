package catalog

import (
	"context"

	"github.com/techwm-project/techwm/pkg/models"
)

// Store is the persistence backing of the catalog: records keyed by
// resource id, plus an index ordered by serial number.
type Store interface {
	// GetResource returns ErrResourceNotFound when id was never registered.
	GetResource(ctx context.Context, id string) (models.Resource, error)
	// CreateResource writes a new record and its serial index entry together.
	// It returns ErrResourceAlreadyExists if the id is taken.
	CreateResource(ctx context.Context, resource models.Resource) error
	// UpdateAvailability flips the availability flag of an existing record.
	UpdateAvailability(ctx context.Context, id string, available bool) error
	// NextSerial consumes and returns the next serial number, starting at 0.
	NextSerial(ctx context.Context) (uint64, error)
	// ListBySerial returns at most limit ids in ascending serial order.
	ListBySerial(ctx context.Context, limit int) ([]string, error)
	// Count returns how many resources are registered.
	Count(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

// KindResolver decides the kind of a resource at registration time.
type KindResolver interface {
	Resolve(ctx context.Context, id, name string) (models.ResourceKind, error)
}
