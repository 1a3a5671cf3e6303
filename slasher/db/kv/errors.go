package kv

import "github.com/pkg/errors"

var (
	// ErrOwnerExists is returned when initializing an already initialized store.
	ErrOwnerExists = errors.New("owner already set")
	// ErrNoIncentives is returned when slashing incentives were never stored.
	ErrNoIncentives = errors.New("slashing incentives not set")
	// ErrSlashRecordExists is returned when committing a fault that was already punished.
	ErrSlashRecordExists = errors.New("slash record already exists")
	// ErrEpochRecorded is returned when recording an epoch at or before the latest checkpoint.
	ErrEpochRecorded = errors.New("epoch already recorded")
	// ErrStaleNonce is returned when a request nonce is not above the last one accepted from its caller.
	ErrStaleNonce = errors.New("stale request nonce")
)
