package boltdb

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	DefaultDatabasePermissions = 0600
	DefaultOpenTimeout         = 2 * time.Second
)

// Open opens, creating if needed, the bolt database at path. Catalog and
// ledger keep their buckets in the same file, so the handle is shared.
func Open(path string) (*bolt.DB, error) {
	database, err := bolt.Open(path, DefaultDatabasePermissions, &bolt.Options{Timeout: DefaultOpenTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bolt database at %q", path)
	}
	return database, nil
}

// CreateBuckets makes sure every named top level bucket exists.
func CreateBuckets(db *bolt.DB, names ...string) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range names {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return errors.Wrapf(err, "failed to create bucket %s", name)
			}
		}
		return nil
	})
}

// Bucket returns the named top level bucket or bolt.ErrBucketNotFound.
func Bucket(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(name))
	if bucket == nil {
		return nil, errors.Wrap(bolt.ErrBucketNotFound, name)
	}
	return bucket, nil
}

// Uint64ToBytes encodes i big-endian, so bolt's lexicographic key order
// matches numeric order.
func Uint64ToBytes(i uint64) []byte {
	buf := make([]byte, 8) //nolint:gomnd
	binary.BigEndian.PutUint64(buf, i)
	return buf
}

func BytesToUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
