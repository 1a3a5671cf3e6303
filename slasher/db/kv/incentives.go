package kv

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/types"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// Owner returns the persisted owner address and whether one was set.
func (s *Store) Owner(ctx context.Context) (common.Address, bool, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.Owner")
	defer span.End()
	var owner common.Address
	var exists bool
	err := s.view(func(tx *bolt.Tx) error {
		enc := tx.Bucket(metadataBucket).Get(ownerKey)
		if enc == nil {
			return nil
		}
		owner = common.BytesToAddress(enc)
		exists = true
		return nil
	})
	return owner, exists, err
}

// InitializeOwner sets the owner and the first slashing incentives in one
// transaction. It fails with ErrOwnerExists if an owner was already set.
func (s *Store) InitializeOwner(
	ctx context.Context, owner common.Address, penalty, reward primitives.Gold,
) (*types.SlashingIncentives, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.InitializeOwner")
	defer span.End()
	incentives := &types.SlashingIncentives{Penalty: penalty, Reward: reward, Version: 1}
	enc, err := encode(incentives)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode slashing incentives")
	}
	err = s.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(metadataBucket)
		if bkt.Get(ownerKey) != nil {
			return ErrOwnerExists
		}
		if err := bkt.Put(ownerKey, owner.Bytes()); err != nil {
			return errors.Wrap(err, "failed to save owner")
		}
		return bkt.Put(incentivesKey, enc)
	})
	if err != nil {
		return nil, err
	}
	return incentives, nil
}

// SaveOwner replaces the persisted owner.
func (s *Store) SaveOwner(ctx context.Context, owner common.Address) error {
	_, span := trace.StartSpan(ctx, "SlasherDB.SaveOwner")
	defer span.End()
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(metadataBucket).Put(ownerKey, owner.Bytes())
	})
}

// SlashingIncentives returns the current incentives or ErrNoIncentives.
func (s *Store) SlashingIncentives(ctx context.Context) (*types.SlashingIncentives, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.SlashingIncentives")
	defer span.End()
	var incentives *types.SlashingIncentives
	err := s.view(func(tx *bolt.Tx) error {
		var err error
		incentives, err = incentivesFromTx(tx)
		return err
	})
	return incentives, err
}

// SaveSlashingIncentives replaces the stored incentives and bumps their version.
func (s *Store) SaveSlashingIncentives(ctx context.Context, penalty, reward primitives.Gold) (*types.SlashingIncentives, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.SaveSlashingIncentives")
	defer span.End()
	var updated *types.SlashingIncentives
	err := s.update(func(tx *bolt.Tx) error {
		current, err := incentivesFromTx(tx)
		if err != nil {
			return err
		}
		updated = &types.SlashingIncentives{Penalty: penalty, Reward: reward, Version: current.Version + 1}
		enc, err := encode(updated)
		if err != nil {
			return errors.Wrap(err, "failed to encode slashing incentives")
		}
		return tx.Bucket(metadataBucket).Put(incentivesKey, enc)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func incentivesFromTx(tx *bolt.Tx) (*types.SlashingIncentives, error) {
	enc := tx.Bucket(metadataBucket).Get(incentivesKey)
	if enc == nil {
		return nil, ErrNoIncentives
	}
	incentives := &types.SlashingIncentives{}
	if err := decode(enc, incentives); err != nil {
		return nil, errors.Wrap(err, "failed to decode slashing incentives")
	}
	return incentives, nil
}
