package boltdb

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"

	"github.com/techwm-project/techwm/pkg/boltdb"
	"github.com/techwm-project/techwm/pkg/catalog"
	"github.com/techwm-project/techwm/pkg/models"
)

const (
	BucketResources = "resources"
	BucketSerials   = "serials" // serial number -> resource id
)

// Store keeps resources in bolt. Data is structured as
//
//	bucket resources
//		key resourceID -> json(models.Resource)
//	bucket serials
//		key big-endian serial -> resourceID
//
// The serials bucket sequence is the serial number counter.
type Store struct {
	database *bolt.DB
}

// NewStore creates the buckets it needs in db. The database is owned by the
// caller and is not closed by Close.
func NewStore(db *bolt.DB) (*Store, error) {
	if err := boltdb.CreateBuckets(db, BucketResources, BucketSerials); err != nil {
		return nil, errors.Wrap(err, "failed to create resource buckets")
	}
	log.Debug().Str("DBFile", db.Path()).Msg("created bolt-backed resource store")
	return &Store{database: db}, nil
}

func (s *Store) GetResource(_ context.Context, id string) (models.Resource, error) {
	var resource models.Resource
	err := s.database.View(func(tx *bolt.Tx) (err error) {
		resource, err = getResource(tx, id)
		return
	})
	return resource, err
}

func getResource(tx *bolt.Tx, id string) (models.Resource, error) {
	var resource models.Resource
	bucket, err := boltdb.Bucket(tx, BucketResources)
	if err != nil {
		return resource, err
	}
	data := bucket.Get([]byte(id))
	if data == nil {
		return resource, catalog.NewErrResourceNotFound(id)
	}
	if err = json.Unmarshal(data, &resource); err != nil {
		return resource, errors.Wrapf(err, "failed to decode resource %s", id)
	}
	return resource, nil
}

func putResource(tx *bolt.Tx, resource models.Resource) error {
	bucket, err := boltdb.Bucket(tx, BucketResources)
	if err != nil {
		return err
	}
	data, err := json.Marshal(resource)
	if err != nil {
		return errors.Wrapf(err, "failed to encode resource %s", resource.ID)
	}
	return bucket.Put([]byte(resource.ID), data)
}

func (s *Store) CreateResource(_ context.Context, resource models.Resource) error {
	return s.database.Update(func(tx *bolt.Tx) error {
		_, err := getResource(tx, resource.ID)
		if err == nil {
			return catalog.NewErrResourceAlreadyExists(resource.ID)
		}
		if !errors.As(err, &catalog.ErrResourceNotFound{}) {
			return err
		}
		if err = putResource(tx, resource); err != nil {
			return err
		}
		serials, err := boltdb.Bucket(tx, BucketSerials)
		if err != nil {
			return err
		}
		return serials.Put(boltdb.Uint64ToBytes(resource.SerialNumber), []byte(resource.ID))
	})
}

func (s *Store) UpdateAvailability(_ context.Context, id string, available bool) error {
	return s.database.Update(func(tx *bolt.Tx) error {
		resource, err := getResource(tx, id)
		if err != nil {
			return err
		}
		if resource.Available == available {
			return nil
		}
		resource.Available = available
		return putResource(tx, resource)
	})
}

func (s *Store) NextSerial(_ context.Context) (uint64, error) {
	var serial uint64
	err := s.database.Update(func(tx *bolt.Tx) error {
		bucket, err := boltdb.Bucket(tx, BucketSerials)
		if err != nil {
			return err
		}
		// bolt sequences start at 1
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		serial = seq - 1
		return nil
	})
	return serial, err
}

func (s *Store) ListBySerial(_ context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	ids := make([]string, 0, limit)
	err := s.database.View(func(tx *bolt.Tx) error {
		bucket, err := boltdb.Bucket(tx, BucketSerials)
		if err != nil {
			return err
		}
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil && len(ids) < limit; k, v = cursor.Next() {
			ids = append(ids, string(v))
		}
		return nil
	})
	return ids, err
}

func (s *Store) Count(_ context.Context) (int, error) {
	var count int
	err := s.database.View(func(tx *bolt.Tx) error {
		bucket, err := boltdb.Bucket(tx, BucketResources)
		if err != nil {
			return err
		}
		count = bucket.Stats().KeyN
		return nil
	})
	return count, err
}

func (s *Store) Close(context.Context) error {
	return nil
}

// compile-time check whether the Store implements the catalog.Store interface
var _ catalog.Store = (*Store)(nil)
