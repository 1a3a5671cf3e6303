// Package iface defines the actual database interface used by
// the slasher, which the kv package implements.
package iface

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/types"
)

// ApplySlashFn runs inside the write transaction of a slashing commit with
// the incentives current at that point. The returned record is persisted.
type ApplySlashFn func(incentives *types.SlashingIncentives) (*types.SlashRecord, error)

// ReadOnlyDatabase represents a read only database with functions that do not modify the DB.
type ReadOnlyDatabase interface {
	// Owner and incentive related methods.
	Owner(ctx context.Context) (common.Address, bool, error)
	SlashingIncentives(ctx context.Context) (*types.SlashingIncentives, error)

	// SlashRecord related methods.
	HasSlashRecord(ctx context.Context, offender common.Address, height primitives.BlockNumber) (bool, error)
	SlashRecord(ctx context.Context, offender common.Address, height primitives.BlockNumber) (*types.SlashRecord, error)
	SlashRecordsForOffender(ctx context.Context, offender common.Address) ([]*types.SlashRecord, error)

	// Epoch signer related methods.
	EpochSigners(ctx context.Context, epoch primitives.Epoch) ([]common.Address, error)
	Checkpoint(ctx context.Context, historyIndex uint64) (*types.EpochCheckpoint, error)
	CheckpointForEpoch(ctx context.Context, epoch primitives.Epoch) (*types.EpochCheckpoint, error)
	LatestCheckpoint(ctx context.Context) (*types.EpochCheckpoint, error)

	// Request nonce related methods.
	LastNonce(ctx context.Context, caller common.Address) (uint64, error)
}

// WriteAccessDatabase represents a write access database with only functions that can modify the DB.
type WriteAccessDatabase interface {
	// Owner and incentive related methods.
	InitializeOwner(ctx context.Context, owner common.Address, penalty, reward primitives.Gold) (*types.SlashingIncentives, error)
	SaveOwner(ctx context.Context, owner common.Address) error
	SaveSlashingIncentives(ctx context.Context, penalty, reward primitives.Gold) (*types.SlashingIncentives, error)

	// SlashRecord related methods.
	CommitSlashing(ctx context.Context, offender common.Address, height primitives.BlockNumber, apply ApplySlashFn) (*types.SlashRecord, error)

	// Epoch signer related methods.
	SaveEpochSigners(ctx context.Context, epoch primitives.Epoch, signers []common.Address, root common.Hash) (*types.EpochCheckpoint, error)
	PruneEpochSigners(ctx context.Context, before primitives.Epoch) (int, error)

	// Request nonce related methods.
	ConsumeNonce(ctx context.Context, caller common.Address, nonce uint64) error
}

// FullAccessDatabase represents a full access database with only DB interaction functions.
type FullAccessDatabase interface {
	ReadOnlyDatabase
	WriteAccessDatabase
}

// Database represents a full access database with the proper DB helper functions.
type Database interface {
	io.Closer
	FullAccessDatabase

	DatabasePath() string
	ClearDB() error
	Backup(ctx context.Context, outputDir string) error
}
