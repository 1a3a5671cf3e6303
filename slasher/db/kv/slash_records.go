package kv

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/db/iface"
	"github.com/sealwatch/slasher/slasher/types"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// HasSlashRecord checks whether the fault of offender at height was punished.
func (s *Store) HasSlashRecord(ctx context.Context, offender common.Address, height primitives.BlockNumber) (bool, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.HasSlashRecord")
	defer span.End()
	var exists bool
	err := s.view(func(tx *bolt.Tx) error {
		exists = tx.Bucket(slashRecordsBucket).Get(slashRecordKey(offender, height)) != nil
		return nil
	})
	return exists, err
}

// SlashRecord returns the record of offender at height, or nil if there is none.
func (s *Store) SlashRecord(ctx context.Context, offender common.Address, height primitives.BlockNumber) (*types.SlashRecord, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.SlashRecord")
	defer span.End()
	var record *types.SlashRecord
	err := s.view(func(tx *bolt.Tx) error {
		enc := tx.Bucket(slashRecordsBucket).Get(slashRecordKey(offender, height))
		if enc == nil {
			return nil
		}
		record = &types.SlashRecord{}
		return decode(enc, record)
	})
	return record, err
}

// SlashRecordsForOffender returns every record of offender ordered by height.
func (s *Store) SlashRecordsForOffender(ctx context.Context, offender common.Address) ([]*types.SlashRecord, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.SlashRecordsForOffender")
	defer span.End()
	records := make([]*types.SlashRecord, 0)
	prefix := offender.Bytes()
	err := s.view(func(tx *bolt.Tx) error {
		c := tx.Bucket(slashRecordsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			record := &types.SlashRecord{}
			if err := decode(v, record); err != nil {
				return errors.Wrapf(err, "failed to decode slash record %#x", k)
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

// CommitSlashing punishes the fault of offender at height exactly once. In a
// single write transaction it checks no record exists, reads the current
// incentives, runs apply and persists the record it returns. If apply fails
// nothing is written.
func (s *Store) CommitSlashing(
	ctx context.Context, offender common.Address, height primitives.BlockNumber, apply iface.ApplySlashFn,
) (*types.SlashRecord, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.CommitSlashing")
	defer span.End()
	key := slashRecordKey(offender, height)
	var record *types.SlashRecord
	err := s.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(slashRecordsBucket)
		if bkt.Get(key) != nil {
			return ErrSlashRecordExists
		}
		incentives, err := incentivesFromTx(tx)
		if err != nil {
			return err
		}
		record, err = apply(incentives)
		if err != nil {
			return err
		}
		if record == nil {
			return errors.New("nil slash record")
		}
		if record.Offender != offender || record.Height != height {
			return errors.Errorf("slash record for %s at %d does not match key %s at %d",
				record.Offender.Hex(), record.Height, offender.Hex(), height)
		}
		enc, err := encode(record)
		if err != nil {
			return errors.Wrap(err, "failed to encode slash record")
		}
		return bkt.Put(key, enc)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
