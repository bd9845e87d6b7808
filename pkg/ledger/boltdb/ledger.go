package boltdb

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"

	"github.com/techwm-project/techwm/pkg/boltdb"
	"github.com/techwm-project/techwm/pkg/ledger"
	"github.com/techwm-project/techwm/pkg/models"
)

// BucketJobs holds terminal jobs keyed by id. Its sequence is the job id
// counter, so an id survives restarts even when the job never finished.
const BucketJobs = "jobs"

type Ledger struct {
	database *bolt.DB
}

// NewLedger creates the buckets it needs in db. The database is owned by the
// caller and is not closed by Close.
func NewLedger(db *bolt.DB) (*Ledger, error) {
	if err := boltdb.CreateBuckets(db, BucketJobs); err != nil {
		return nil, errors.Wrap(err, "failed to create ledger buckets")
	}
	log.Debug().Str("DBFile", db.Path()).Msg("created bolt-backed job ledger")
	return &Ledger{database: db}, nil
}

func (l *Ledger) NextID(_ context.Context) (string, error) {
	var id string
	err := l.database.Update(func(tx *bolt.Tx) error {
		bucket, err := boltdb.Bucket(tx, BucketJobs)
		if err != nil {
			return err
		}
		// bolt sequences start at 1
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		id = strconv.FormatUint(seq-1, 10)
		return nil
	})
	return id, err
}

func (l *Ledger) Append(_ context.Context, job models.Job) error {
	if !job.IsTerminal() {
		return ledger.NewErrJobNotTerminal(job.ID, job.State)
	}
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrapf(err, "failed to encode job %s", job.ID)
	}
	return l.database.Update(func(tx *bolt.Tx) error {
		bucket, err := boltdb.Bucket(tx, BucketJobs)
		if err != nil {
			return err
		}
		if bucket.Get([]byte(job.ID)) != nil {
			return ledger.NewErrJobAlreadyExists(job.ID)
		}
		return bucket.Put([]byte(job.ID), data)
	})
}

func (l *Ledger) Get(_ context.Context, id string) (models.Job, error) {
	var job models.Job
	err := l.database.View(func(tx *bolt.Tx) error {
		bucket, err := boltdb.Bucket(tx, BucketJobs)
		if err != nil {
			return err
		}
		data := bucket.Get([]byte(id))
		if data == nil {
			return ledger.NewErrJobNotFound(id)
		}
		return errors.Wrapf(json.Unmarshal(data, &job), "failed to decode job %s", id)
	})
	return job, err
}

func (l *Ledger) Close(context.Context) error {
	return nil
}

// compile-time check whether the Ledger implements the ledger.Ledger interface
var _ ledger.Ledger = (*Ledger)(nil)
