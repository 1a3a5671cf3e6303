package kv

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/encoding/bytesutil"
	"github.com/sealwatch/slasher/slasher/types"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// SaveEpochSigners stores the signer set of an epoch together with a new
// checkpoint committing to root. Epochs must be recorded in increasing order.
func (s *Store) SaveEpochSigners(
	ctx context.Context, epoch primitives.Epoch, signers []common.Address, root common.Hash,
) (*types.EpochCheckpoint, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.SaveEpochSigners")
	defer span.End()
	enc, err := encode(signers)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode epoch signers")
	}
	var checkpoint *types.EpochCheckpoint
	err = s.update(func(tx *bolt.Tx) error {
		latest, err := latestCheckpointFromTx(tx)
		if err != nil {
			return err
		}
		next := uint64(0)
		if latest != nil {
			if epoch <= latest.Epoch {
				return errors.Wrapf(ErrEpochRecorded, "epoch %d, latest recorded %d", epoch, latest.Epoch)
			}
			next = latest.HistoryIndex + 1
		}
		checkpoint = &types.EpochCheckpoint{
			HistoryIndex:  next,
			Epoch:         epoch,
			SignersRoot:   root,
			NumValidators: uint64(len(signers)),
		}
		encCheckpoint, err := encode(checkpoint)
		if err != nil {
			return errors.Wrap(err, "failed to encode checkpoint")
		}
		indexKey := bytesutil.Uint64ToBytesBigEndian(next)
		if err := tx.Bucket(checkpointsBucket).Put(indexKey, encCheckpoint); err != nil {
			return err
		}
		if err := tx.Bucket(checkpointIndexBucket).Put(epochKey(epoch), indexKey); err != nil {
			return err
		}
		return tx.Bucket(epochSignersBucket).Put(epochKey(epoch), enc)
	})
	if err != nil {
		return nil, err
	}
	return checkpoint, nil
}

// EpochSigners returns the full signer set of an epoch, or nil if it was
// never recorded or has been pruned.
func (s *Store) EpochSigners(ctx context.Context, epoch primitives.Epoch) ([]common.Address, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.EpochSigners")
	defer span.End()
	var signers []common.Address
	err := s.view(func(tx *bolt.Tx) error {
		enc := tx.Bucket(epochSignersBucket).Get(epochKey(epoch))
		if enc == nil {
			return nil
		}
		return decode(enc, &signers)
	})
	return signers, err
}

// PruneEpochSigners deletes the full signer sets of all epochs before the
// given one. Their checkpoints are kept. Returns the number of sets removed.
func (s *Store) PruneEpochSigners(ctx context.Context, before primitives.Epoch) (int, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.PruneEpochSigners")
	defer span.End()
	pruned := 0
	err := s.update(func(tx *bolt.Tx) error {
		c := tx.Bucket(epochSignersBucket).Cursor()
		limit := epochKey(before)
		for k, _ := c.First(); k != nil && string(k) < string(limit); k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return err
			}
			pruned++
		}
		return nil
	})
	return pruned, err
}

// Checkpoint returns the checkpoint at a history index, or nil.
func (s *Store) Checkpoint(ctx context.Context, historyIndex uint64) (*types.EpochCheckpoint, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.Checkpoint")
	defer span.End()
	var checkpoint *types.EpochCheckpoint
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		checkpoint, err = checkpointFromTx(tx, bytesutil.Uint64ToBytesBigEndian(historyIndex))
		return err
	})
	return checkpoint, err
}

// CheckpointForEpoch returns the checkpoint recorded for an epoch, or nil.
func (s *Store) CheckpointForEpoch(ctx context.Context, epoch primitives.Epoch) (*types.EpochCheckpoint, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.CheckpointForEpoch")
	defer span.End()
	var checkpoint *types.EpochCheckpoint
	err := s.view(func(tx *bolt.Tx) error {
		indexKey := tx.Bucket(checkpointIndexBucket).Get(epochKey(epoch))
		if indexKey == nil {
			return nil
		}
		var err error
		checkpoint, err = checkpointFromTx(tx, indexKey)
		return err
	})
	return checkpoint, err
}

// LatestCheckpoint returns the most recently appended checkpoint, or nil.
func (s *Store) LatestCheckpoint(ctx context.Context) (*types.EpochCheckpoint, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.LatestCheckpoint")
	defer span.End()
	var checkpoint *types.EpochCheckpoint
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		checkpoint, err = latestCheckpointFromTx(tx)
		return err
	})
	return checkpoint, err
}

func latestCheckpointFromTx(tx *bolt.Tx) (*types.EpochCheckpoint, error) {
	k, v := tx.Bucket(checkpointsBucket).Cursor().Last()
	if k == nil {
		return nil, nil
	}
	checkpoint := &types.EpochCheckpoint{}
	if err := decode(v, checkpoint); err != nil {
		return nil, errors.Wrap(err, "failed to decode checkpoint")
	}
	return checkpoint, nil
}

func checkpointFromTx(tx *bolt.Tx, indexKey []byte) (*types.EpochCheckpoint, error) {
	enc := tx.Bucket(checkpointsBucket).Get(indexKey)
	if enc == nil {
		return nil, nil
	}
	checkpoint := &types.EpochCheckpoint{}
	if err := decode(enc, checkpoint); err != nil {
		return nil, errors.Wrap(err, "failed to decode checkpoint")
	}
	return checkpoint, nil
}
