package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"github.com/rs/zerolog/log"

	"github.com/techwm-project/techwm/pkg/logger"
	"github.com/techwm-project/techwm/pkg/models"
)

type Params struct {
	Store        Store
	KindResolver KindResolver
}

// Catalog is the authoritative set of registered resources and the only
// writer of their availability. It does not make check-then-allocate
// sequences atomic; callers that allocate must serialize those themselves.
type Catalog struct {
	store    Store
	resolver KindResolver
	// registerMu serializes the read-then-write of a registration.
	registerMu sync.Mutex
}

func NewCatalog(params Params) *Catalog {
	resolver := params.KindResolver
	if resolver == nil {
		resolver = NewNameMatchResolver()
	}
	c := &Catalog{
		store:    params.Store,
		resolver: resolver,
	}
	c.registerMu.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "Catalog.registerMu",
	})
	return c
}

// Register adds a resource whose kind is decided by the catalog's resolver.
func (c *Catalog) Register(ctx context.Context, id, name string) (models.Resource, error) {
	kind, err := c.resolver.Resolve(ctx, id, name)
	if err != nil {
		return models.Resource{}, fmt.Errorf("failed to resolve kind of resource %s: %w", id, err)
	}
	return c.RegisterWithKind(ctx, id, name, kind)
}

// RegisterWithKind adds a resource of an explicit kind. The new resource is
// available and gets the next serial number.
//
// Errors:
//
//   - ErrResourceAlreadyExists -- if the id is already registered
func (c *Catalog) RegisterWithKind(
	ctx context.Context, id, name string, kind models.ResourceKind) (models.Resource, error) {
	if id == "" {
		return models.Resource{}, models.NewBaseError("resource id must not be empty").WithCode(models.BadRequestError)
	}
	if kind.IsUndefined() {
		return models.Resource{}, models.NewBaseError("resource %s has no kind", id).WithCode(models.BadRequestError)
	}

	c.registerMu.Lock()
	defer c.registerMu.Unlock()

	_, err := c.store.GetResource(ctx, id)
	if err == nil {
		return models.Resource{}, NewErrResourceAlreadyExists(id)
	}
	if !errors.As(err, &ErrResourceNotFound{}) {
		return models.Resource{}, err
	}

	serial, err := c.store.NextSerial(ctx)
	if err != nil {
		return models.Resource{}, err
	}
	resource := models.Resource{
		ID:           id,
		SerialNumber: serial,
		Name:         name,
		Kind:         kind,
		Available:    true,
	}
	if err = c.store.CreateResource(ctx, resource); err != nil {
		return models.Resource{}, err
	}

	log.Ctx(ctx).Debug().
		Str(logger.ResourceIDFieldName, id).
		Uint64("SerialNumber", serial).
		Stringer("Kind", kind).
		Msg("resource registered")
	return resource, nil
}

// Get returns the full record of a registered resource.
func (c *Catalog) Get(ctx context.Context, id string) (models.Resource, error) {
	return c.store.GetResource(ctx, id)
}

func (c *Catalog) KindOf(ctx context.Context, id string) (models.ResourceKind, error) {
	resource, err := c.store.GetResource(ctx, id)
	if err != nil {
		return models.ResourceKindUndefined, err
	}
	return resource.Kind, nil
}

func (c *Catalog) Exists(ctx context.Context, id string) (bool, error) {
	_, err := c.store.GetResource(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.As(err, &ErrResourceNotFound{}) {
		return false, nil
	}
	return false, err
}

func (c *Catalog) IsAvailable(ctx context.Context, id string) (bool, error) {
	resource, err := c.store.GetResource(ctx, id)
	if err != nil {
		return false, err
	}
	return resource.Available, nil
}

// Allocate marks the resource unavailable and returns its handle. The caller
// must have just seen IsAvailable return true within the same decision.
func (c *Catalog) Allocate(ctx context.Context, id string) (models.ResourceHandle, error) {
	resource, err := c.store.GetResource(ctx, id)
	if err != nil {
		return models.ResourceHandle{}, err
	}
	if err = c.store.UpdateAvailability(ctx, id, false); err != nil {
		return models.ResourceHandle{}, err
	}
	return resource.Handle(), nil
}

// Release marks the resource available again. Releasing an available
// resource is a no-op.
func (c *Catalog) Release(ctx context.Context, id string) error {
	return c.store.UpdateAvailability(ctx, id, true)
}

// ReleaseAll marks every registered resource available and returns how many
// were held. It is meant for startup, before any job can hold a resource.
func (c *Catalog) ReleaseAll(ctx context.Context) (int, error) {
	count, err := c.store.Count(ctx)
	if err != nil || count == 0 {
		return 0, err
	}
	ids, err := c.store.ListBySerial(ctx, count)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, id := range ids {
		resource, err := c.store.GetResource(ctx, id)
		if err != nil {
			return released, err
		}
		if resource.Available {
			continue
		}
		if err = c.store.UpdateAvailability(ctx, id, true); err != nil {
			return released, err
		}
		released++
	}
	return released, nil
}

// ListAttached returns up to n resource ids in registration order.
func (c *Catalog) ListAttached(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	return c.store.ListBySerial(ctx, n)
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

func (c *Catalog) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}
