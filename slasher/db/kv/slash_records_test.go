package kv

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
)

func recordFn(offender common.Address, height primitives.BlockNumber) func(*types.SlashingIncentives) (*types.SlashRecord, error) {
	return func(incentives *types.SlashingIncentives) (*types.SlashRecord, error) {
		return &types.SlashRecord{
			Offender:          offender,
			Height:            height,
			Epoch:             primitives.Epoch(uint64(height) / 100),
			Penalty:           incentives.Penalty,
			Reward:            incentives.Reward,
			IncentivesVersion: incentives.Version,
		}, nil
	}
}

func TestStore_CommitSlashing(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	offender := common.HexToAddress("0x05")

	_, err := db.CommitSlashing(ctx, offender, 100, recordFn(offender, 100))
	assert.ErrorIs(t, err, ErrNoIncentives)

	_, err = db.InitializeOwner(ctx, ownerAddr, 10000, 100)
	require.NoError(t, err)

	record, err := db.CommitSlashing(ctx, offender, 100, recordFn(offender, 100))
	require.NoError(t, err)
	assert.Equal(t, primitives.Gold(10000), record.Penalty)
	assert.Equal(t, uint64(1), record.IncentivesVersion)

	called := false
	_, err = db.CommitSlashing(ctx, offender, 100, func(*types.SlashingIncentives) (*types.SlashRecord, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrSlashRecordExists)
	assert.Equal(t, false, called, "apply must not run for a punished fault")

	stored, err := db.SlashRecord(ctx, offender, 100)
	require.NoError(t, err)
	assert.DeepEqual(t, record, stored)
}

func TestStore_CommitSlashing_ApplyFailureRollsBack(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	offender := common.HexToAddress("0x05")
	_, err := db.InitializeOwner(ctx, ownerAddr, 10000, 100)
	require.NoError(t, err)

	wantErr := errors.New("ledger unavailable")
	_, err = db.CommitSlashing(ctx, offender, 100, func(*types.SlashingIncentives) (*types.SlashRecord, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	has, err := db.HasSlashRecord(ctx, offender, 100)
	require.NoError(t, err)
	assert.Equal(t, false, has)

	_, err = db.CommitSlashing(ctx, offender, 100, recordFn(offender, 101))
	assert.ErrorContains(t, "does not match key", err)
	has, err = db.HasSlashRecord(ctx, offender, 100)
	require.NoError(t, err)
	assert.Equal(t, false, has)

	_, err = db.CommitSlashing(ctx, offender, 100, recordFn(offender, 100))
	require.NoError(t, err)
	has, err = db.HasSlashRecord(ctx, offender, 100)
	require.NoError(t, err)
	assert.Equal(t, true, has)
}

func TestStore_SlashRecordsForOffender(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	_, err := db.InitializeOwner(ctx, ownerAddr, 10000, 100)
	require.NoError(t, err)

	offender := common.HexToAddress("0x05")
	other := common.HexToAddress("0x0500")
	for _, h := range []primitives.BlockNumber{300, 100, 256} {
		_, err := db.CommitSlashing(ctx, offender, h, recordFn(offender, h))
		require.NoError(t, err)
	}
	_, err = db.CommitSlashing(ctx, other, 100, recordFn(other, 100))
	require.NoError(t, err)

	records, err := db.SlashRecordsForOffender(ctx, offender)
	require.NoError(t, err)
	require.Equal(t, 3, len(records))
	assert.Equal(t, primitives.BlockNumber(100), records[0].Height)
	assert.Equal(t, primitives.BlockNumber(256), records[1].Height)
	assert.Equal(t, primitives.BlockNumber(300), records[2].Height)

	records, err = db.SlashRecordsForOffender(ctx, common.HexToAddress("0x07"))
	require.NoError(t, err)
	assert.Equal(t, 0, len(records))

	missing, err := db.SlashRecord(ctx, other, 101)
	require.NoError(t, err)
	assert.IsNil(t, missing)
}
