// Package kv defines a bolt-db, key-value store implementation of
// the slasher Database interface.
package kv

import (
	"context"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	prombbolt "github.com/prysmaticlabs/prombbolt"
	"github.com/sealwatch/slasher/config/params"
	"github.com/sealwatch/slasher/slasher/db/iface"
	bolt "go.etcd.io/bbolt"
)

var _ iface.Database = (*Store)(nil)

// Store defines an implementation of the slasher Database interface
// using BoltDB as the underlying persistent kv-store.
type Store struct {
	db           *bolt.DB
	databasePath string
}

// NewKVStore initializes a new boltDB key-value store at the directory
// path specified, creates the kv-buckets based on the schema, and stores
// an open connection db object as a property of the Store struct.
func NewKVStore(ctx context.Context, dirPath string) (*Store, error) {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return nil, err
	}
	cfg := params.SlasherConfig()
	datafile := path.Join(dirPath, cfg.SlasherDBName)
	boltDB, err := bolt.Open(datafile, cfg.ReadWritePermissions, &bolt.Options{Timeout: cfg.BoltTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	kv := &Store{db: boltDB, databasePath: dirPath}

	if err := kv.db.Update(func(tx *bolt.Tx) error {
		return createBuckets(
			tx,
			metadataBucket,
			slashRecordsBucket,
			epochSignersBucket,
			checkpointsBucket,
			checkpointIndexBucket,
			requestNoncesBucket,
		)
	}); err != nil {
		return nil, err
	}
	return kv, nil
}

// Collector returns a prometheus collector exporting the bolt statistics of the store.
func (s *Store) Collector() prometheus.Collector {
	return prombbolt.New("slasherDB", s.db)
}

// ClearDB removes the previously stored database in the data directory.
func (s *Store) ClearDB() error {
	if _, err := os.Stat(s.databasePath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path.Join(s.databasePath, params.SlasherConfig().SlasherDBName))
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DatabasePath at which this database writes files.
func (s *Store) DatabasePath() string {
	return s.databasePath
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	return s.db.Update(fn)
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	return s.db.View(fn)
}

func createBuckets(tx *bolt.Tx, buckets ...[]byte) error {
	for _, bucket := range buckets {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return err
		}
	}
	return nil
}
