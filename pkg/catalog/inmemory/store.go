package inmemory

import (
	"context"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/techwm-project/techwm/pkg/catalog"
	"github.com/techwm-project/techwm/pkg/models"
)

type Store struct {
	resources map[string]models.Resource
	// serials indexes resource ids by serial number
	serials    map[uint64]string
	nextSerial uint64
	mu         sync.RWMutex
}

func NewStore() *Store {
	res := &Store{
		resources: make(map[string]models.Resource),
		serials:   make(map[uint64]string),
	}
	res.mu.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "InMemoryResourceStore.mu",
	})
	return res
}

func (s *Store) GetResource(_ context.Context, id string) (models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resource, ok := s.resources[id]
	if !ok {
		return resource, catalog.NewErrResourceNotFound(id)
	}
	return resource, nil
}

func (s *Store) CreateResource(_ context.Context, resource models.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[resource.ID]; ok {
		return catalog.NewErrResourceAlreadyExists(resource.ID)
	}
	s.resources[resource.ID] = resource
	s.serials[resource.SerialNumber] = resource.ID
	return nil
}

func (s *Store) UpdateAvailability(_ context.Context, id string, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resource, ok := s.resources[id]
	if !ok {
		return catalog.NewErrResourceNotFound(id)
	}
	resource.Available = available
	s.resources[id] = resource
	return nil
}

func (s *Store) NextSerial(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	serial := s.nextSerial
	s.nextSerial++
	return serial, nil
}

func (s *Store) ListBySerial(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	serials := maps.Keys(s.serials)
	slices.Sort(serials)
	if limit < len(serials) {
		serials = serials[:limit]
	}
	ids := make([]string, len(serials))
	for i, serial := range serials {
		ids[i] = s.serials[serial]
	}
	return ids, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources), nil
}

func (s *Store) Close(context.Context) error {
	return nil
}

// compile-time check whether the Store implements the catalog.Store interface
var _ catalog.Store = (*Store)(nil)
