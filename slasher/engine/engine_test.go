package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	dbtest "github.com/sealwatch/slasher/slasher/db/testing"
	"github.com/sealwatch/slasher/slasher/oracle"
	mock "github.com/sealwatch/slasher/slasher/testing"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
	logTest "github.com/sirupsen/logrus/hooks/test"
)

const (
	epochSize      = 100
	numValidators  = 7
	penalty        = primitives.Gold(10000)
	reward         = primitives.Gold(100)
	lockedBalance  = primitives.Gold(50000)
	validatorIndex = primitives.ValidatorIndex(5)
)

var (
	owner        = common.HexToAddress("0x5409ED021D9299bf6814279A6A1411A7e866A631")
	validator    = common.HexToAddress("0x6Ecbe1DB9EF729CBe972C83Fb886247691Fb6beb")
	reporter     = common.HexToAddress("0xE36Ea790bc9d7AB70C55260C66D52b1eca985f84")
	otherAccount = common.HexToAddress("0xE834EC434DABA538cd1b9Fe1582052B880BD7e63")

	blockA = []byte("header A at height 100")
	blockB = []byte("header B at height 101")
	blockC = []byte("header C at height 100")
)

type harness struct {
	engine  *Service
	headers *mock.MockHeaderOracle
	signers *mock.MockEpochSigners
	ledger  *mock.MockLockedGold
}

func setup(t *testing.T) *harness {
	h := &harness{
		headers: mock.NewMockHeaderOracle(numValidators),
		signers: mock.NewMockEpochSigners(),
		ledger:  mock.NewMockLockedGold(),
	}
	s, err := New(context.Background(), &Config{
		DB:           dbtest.SetupDB(t),
		HeaderOracle: h.headers,
		SealOracle:   h.headers,
		Directory:    h.signers,
		Ledger:       h.ledger,
		EpochSize:    epochSize,
	})
	require.NoError(t, err)
	h.engine = s

	h.headers.SetBlockNumber(blockA, 100)
	h.headers.SetBlockNumber(blockB, 101)
	h.headers.SetBlockNumber(blockC, 100)
	h.headers.SetVerifiedSealBitmap(blockA, 0x3f)
	h.headers.SetVerifiedSealBitmap(blockC, 0x3f)
	h.signers.SetEpochSigner(1, 5, validator)
	h.signers.SetEpochSigner(1, 6, validator)
	h.ledger.IncrementNonvotingAccountBalance(validator, lockedBalance)
	return h
}

func initialized(t *testing.T) *harness {
	h := setup(t)
	require.NoError(t, h.engine.Initialize(context.Background(), owner, penalty, reward))
	return h
}

func evidence(offender common.Address, index primitives.ValidatorIndex, a, b []byte) *types.FaultEvidence {
	return &types.FaultEvidence{Offender: offender, ValidatorIndex: index, HeaderA: a, HeaderB: b}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	h := setup(t)
	full := Config{
		DB:           dbtest.SetupDB(t),
		HeaderOracle: h.headers,
		SealOracle:   h.headers,
		Directory:    h.signers,
		Ledger:       h.ledger,
		EpochSize:    epochSize,
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "db", mutate: func(c *Config) { c.DB = nil }, wantErr: "nil database"},
		{name: "header oracle", mutate: func(c *Config) { c.HeaderOracle = nil }, wantErr: "nil block header oracle"},
		{name: "seal oracle", mutate: func(c *Config) { c.SealOracle = nil }, wantErr: "nil seal bitmap oracle"},
		{name: "directory", mutate: func(c *Config) { c.Directory = nil }, wantErr: "nil epoch validator directory"},
		{name: "ledger", mutate: func(c *Config) { c.Ledger = nil }, wantErr: "nil locked gold ledger"},
		{name: "epoch size", mutate: func(c *Config) { c.EpochSize = 0 }, wantErr: "epoch size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			_, err := New(context.Background(), &cfg)
			assert.ErrorContains(t, tt.wantErr, err)
		})
	}
}

func TestInitialize(t *testing.T) {
	hook := logTest.NewGlobal()
	h := setup(t)
	ctx := context.Background()

	_, err := h.engine.Owner(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = h.engine.SlashingIncentives(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, h.engine.Initialize(ctx, owner, penalty, reward))
	require.LogsContain(t, hook, "Initialized slasher")

	got, err := h.engine.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
	incentives, err := h.engine.SlashingIncentives(ctx)
	require.NoError(t, err)
	assert.Equal(t, penalty, incentives.Penalty)
	assert.Equal(t, reward, incentives.Reward)

	err = h.engine.Initialize(ctx, otherAccount, 1, 1)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	got, err = h.engine.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestSetSlashingIncentives(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()

	require.NoError(t, h.engine.SetSlashingIncentives(ctx, owner, 123, 67))
	incentives, err := h.engine.SlashingIncentives(ctx)
	require.NoError(t, err)
	assert.DeepEqual(t, &types.SlashingIncentives{Penalty: 123, Reward: 67, Version: 2}, incentives)

	err = h.engine.SetSlashingIncentives(ctx, otherAccount, 1, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
	incentives, err = h.engine.SlashingIncentives(ctx)
	require.NoError(t, err)
	assert.Equal(t, primitives.Gold(123), incentives.Penalty)
	assert.Equal(t, primitives.Gold(67), incentives.Reward)
}

func TestSetSlashingIncentives_NotInitialized(t *testing.T) {
	h := setup(t)
	err := h.engine.SetSlashingIncentives(context.Background(), owner, 123, 67)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestTransferOwnership(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.engine.TransferOwnership(ctx, otherAccount, otherAccount), ErrUnauthorized)
	assert.ErrorContains(t, "zero address", h.engine.TransferOwnership(ctx, owner, common.Address{}))

	require.NoError(t, h.engine.TransferOwnership(ctx, owner, otherAccount))
	got, err := h.engine.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, otherAccount, got)

	assert.ErrorIs(t, h.engine.SetSlashingIncentives(ctx, owner, 1, 1), ErrUnauthorized)
	require.NoError(t, h.engine.SetSlashingIncentives(ctx, otherAccount, 1, 1))
	require.NoError(t, h.engine.RequireOwner(ctx, otherAccount))
}

func TestSlash_HeightMismatch(t *testing.T) {
	h := initialized(t)
	h.headers.SetVerifiedSealBitmap(blockB, 0x3f)

	_, err := h.engine.Slash(context.Background(), reporter, evidence(validator, validatorIndex, blockA, blockB))
	assert.ErrorIs(t, err, ErrHeightMismatch)
	assert.Equal(t, lockedBalance, h.ledger.NonvotingAccountBalance(validator))
	assert.Equal(t, 0, h.ledger.SlashCalls)
}

func TestSlash_IdenticalHeaders(t *testing.T) {
	h := initialized(t)
	_, err := h.engine.Slash(context.Background(), reporter, evidence(validator, validatorIndex, blockA, blockA))
	assert.ErrorIs(t, err, ErrIdenticalEvidence)
	assert.Equal(t, lockedBalance, h.ledger.NonvotingAccountBalance(validator))
}

func TestSlash_ValidatorDidNotSign(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()

	// Bit 6 is not set in 0x3f.
	_, err := h.engine.Slash(ctx, reporter, evidence(validator, 6, blockA, blockC))
	assert.ErrorIs(t, err, ErrNotSigner)

	// Signed only one of the headers.
	h.headers.SetVerifiedSealBitmap(blockC, 0x1f)
	_, err = h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, blockA, blockC))
	assert.ErrorIs(t, err, ErrNotSigner)

	// Index outside the bitmap.
	_, err = h.engine.Slash(ctx, reporter, evidence(validator, 64, blockA, blockC))
	assert.ErrorIs(t, err, ErrNotSigner)
	assert.Equal(t, lockedBalance, h.ledger.NonvotingAccountBalance(validator))
}

func TestSlash_WrongSigner(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()

	_, err := h.engine.Slash(ctx, reporter, evidence(otherAccount, validatorIndex, blockA, blockC))
	assert.ErrorIs(t, err, ErrWrongSigner)

	// Seat 4 is sealed but has no signer recorded.
	_, err = h.engine.Slash(ctx, reporter, evidence(validator, 4, blockA, blockC))
	assert.ErrorIs(t, err, ErrWrongSigner)
	assert.Equal(t, lockedBalance, h.ledger.NonvotingAccountBalance(validator))
}

func TestSlash_UnknownEpoch(t *testing.T) {
	h := initialized(t)
	a, b := []byte("header D at height 300"), []byte("header E at height 300")
	h.headers.SetBlockNumber(a, 300)
	h.headers.SetBlockNumber(b, 300)
	h.headers.SetVerifiedSealBitmap(a, 0x3f)
	h.headers.SetVerifiedSealBitmap(b, 0x3f)

	_, err := h.engine.Slash(context.Background(), reporter, evidence(validator, validatorIndex, a, b))
	assert.ErrorIs(t, err, oracle.ErrUnknownEpoch)
}

func TestSlash_MalformedHeader(t *testing.T) {
	h := initialized(t)
	_, err := h.engine.Slash(context.Background(), reporter, evidence(validator, validatorIndex, blockA, []byte("garbage")))
	assert.ErrorIs(t, err, oracle.ErrMalformedHeader)

	_, err = h.engine.Slash(context.Background(), reporter, nil)
	assert.ErrorContains(t, "nil fault evidence", err)
}

func TestSlash_NotInitialized(t *testing.T) {
	h := setup(t)
	_, err := h.engine.Slash(context.Background(), reporter, evidence(validator, validatorIndex, blockA, blockC))
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, 0, h.ledger.SlashCalls)
	assert.Equal(t, lockedBalance, h.ledger.NonvotingAccountBalance(validator))
}

func TestSlash_Success(t *testing.T) {
	hook := logTest.NewGlobal()
	h := initialized(t)
	ctx := context.Background()

	outcome, err := h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, blockA, blockC))
	require.NoError(t, err)
	require.LogsContain(t, hook, "Slashed double signing validator")

	assert.Equal(t, primitives.Gold(40000), h.ledger.NonvotingAccountBalance(validator))
	assert.Equal(t, reward, h.ledger.NonvotingAccountBalance(reporter))
	assert.Equal(t, penalty-reward, h.ledger.NonvotingAccountBalance(h.ledger.CommunityFund))

	record := outcome.Record
	assert.Equal(t, validator, record.Offender)
	assert.Equal(t, validatorIndex, record.ValidatorIndex)
	assert.Equal(t, primitives.Epoch(1), record.Epoch)
	assert.Equal(t, primitives.BlockNumber(100), record.Height)
	assert.Equal(t, types.HeaderHash(blockA), record.HeaderAHash)
	assert.Equal(t, types.HeaderHash(blockC), record.HeaderBHash)
	assert.Equal(t, reporter, record.Reporter)
	assert.Equal(t, penalty, record.Penalty)
	assert.Equal(t, reward, record.Reward)
	assert.Equal(t, uint64(1), record.IncentivesVersion)
	assert.DeepEqual(t, &types.SlashingIncentives{Penalty: penalty, Reward: reward, Version: 1}, outcome.Incentives)

	slashed, err := h.engine.IsSlashed(ctx, validator, 100)
	require.NoError(t, err)
	assert.Equal(t, true, slashed)
	stored, err := h.engine.SlashRecord(ctx, validator, 100)
	require.NoError(t, err)
	assert.DeepEqual(t, record, stored)
}

func TestSlash_SameFaultTwice(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()

	_, err := h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, blockA, blockC))
	require.NoError(t, err)

	_, err = h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, blockA, blockC))
	assert.ErrorIs(t, err, ErrAlreadySlashed)
	// Swapped headers describe the same fault.
	_, err = h.engine.Slash(ctx, otherAccount, evidence(validator, validatorIndex, blockC, blockA))
	assert.ErrorIs(t, err, ErrAlreadySlashed)
	// So does a different seat of the same offender at the same height.
	_, err = h.engine.Slash(ctx, otherAccount, evidence(validator, 6, blockA, blockC))
	assert.ErrorIs(t, err, ErrNotSigner)
	h.headers.SetVerifiedSealBitmap(blockA, 0x7f)
	h.headers.SetVerifiedSealBitmap(blockC, 0x7f)
	_, err = h.engine.Slash(ctx, otherAccount, evidence(validator, 6, blockA, blockC))
	assert.ErrorIs(t, err, ErrAlreadySlashed)

	assert.Equal(t, primitives.Gold(40000), h.ledger.NonvotingAccountBalance(validator))
	assert.Equal(t, primitives.Gold(0), h.ledger.NonvotingAccountBalance(otherAccount))
}

func TestSlash_IndependentFaults(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()
	a, b := []byte("header D at height 250"), []byte("header E at height 250")
	h.headers.SetBlockNumber(a, 250)
	h.headers.SetBlockNumber(b, 250)
	h.headers.SetVerifiedSealBitmap(a, 0x3f)
	h.headers.SetVerifiedSealBitmap(b, 0x3f)
	h.signers.SetEpochSigner(2, 5, validator)

	_, err := h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, blockA, blockC))
	require.NoError(t, err)
	outcome, err := h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, a, b))
	require.NoError(t, err)
	assert.Equal(t, primitives.Epoch(2), outcome.Record.Epoch)

	assert.Equal(t, primitives.Gold(30000), h.ledger.NonvotingAccountBalance(validator))
	assert.Equal(t, 2*reward, h.ledger.NonvotingAccountBalance(reporter))

	records, err := h.engine.SlashRecordsForOffender(ctx, validator)
	require.NoError(t, err)
	require.Equal(t, 2, len(records))
	assert.Equal(t, primitives.BlockNumber(100), records[0].Height)
	assert.Equal(t, primitives.BlockNumber(250), records[1].Height)
}

func TestSlash_UsesIncentivesInEffect(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()
	require.NoError(t, h.engine.SetSlashingIncentives(ctx, owner, 123, 67))

	outcome, err := h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, blockA, blockC))
	require.NoError(t, err)
	assert.Equal(t, primitives.Gold(123), outcome.Record.Penalty)
	assert.Equal(t, primitives.Gold(67), outcome.Record.Reward)
	assert.Equal(t, uint64(2), outcome.Record.IncentivesVersion)
	assert.Equal(t, lockedBalance-123, h.ledger.NonvotingAccountBalance(validator))
}

func TestSlash_LedgerFailureLeavesNoRecord(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()
	h.ledger.SlashErr = errors.New("ledger unavailable")

	_, err := h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, blockA, blockC))
	assert.ErrorContains(t, "ledger unavailable", err)
	slashed, err := h.engine.IsSlashed(ctx, validator, 100)
	require.NoError(t, err)
	assert.Equal(t, false, slashed)

	h.ledger.SlashErr = nil
	_, err = h.engine.Slash(ctx, reporter, evidence(validator, validatorIndex, blockA, blockC))
	require.NoError(t, err)
	assert.Equal(t, primitives.Gold(40000), h.ledger.NonvotingAccountBalance(validator))
}

func TestSlash_ConcurrentReportsOfSameFault(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()

	const reporters = 8
	var wg sync.WaitGroup
	errs := make([]error, reporters)
	for i := 0; i < reporters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := common.BigToAddress(common.Big1)
			r[0] = byte(i + 1)
			_, errs[i] = h.engine.Slash(ctx, r, evidence(validator, validatorIndex, blockA, blockC))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadySlashed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, primitives.Gold(40000), h.ledger.NonvotingAccountBalance(validator))
}

func TestSlash_PublishesEvent(t *testing.T) {
	h := initialized(t)
	events := make(chan *types.SlashEvent, 1)
	sub := h.engine.SubscribeSlashEvents(events)
	defer sub.Unsubscribe()

	outcome, err := h.engine.Slash(context.Background(), reporter, evidence(validator, validatorIndex, blockA, blockC))
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.DeepEqual(t, outcome.Record, ev.Record)
	case <-time.After(time.Second):
		t.Fatal("no slash event received")
	}
}

func TestService_Lifecycle(t *testing.T) {
	hook := logTest.NewGlobal()
	h := setup(t)
	h.engine.Start()
	require.LogsContain(t, hook, "not initialized")

	require.NoError(t, h.engine.Initialize(context.Background(), owner, penalty, reward))
	h.engine.Start()
	require.LogsContain(t, hook, "Slashing engine started")
	assert.NoError(t, h.engine.Status())
	assert.NoError(t, h.engine.Stop())
	assert.Equal(t, uint64(epochSize), h.engine.EpochSize())
}

func TestSlash_LedgerAppliedWithoutRecord(t *testing.T) {
	h := initialized(t)
	ctx := context.Background()

	// The ledger committed a slash but the record was never written.
	slashID := crypto.Keccak256Hash(replayKey(validator, 100))
	_, err := h.ledger.Slash(ctx, slashID, validator, penalty, reporter, reward)
	require.NoError(t, err)

	outcome, err := h.engine.Slash(ctx, otherAccount, evidence(validator, validatorIndex, blockA, blockC))
	require.NoError(t, err)
	assert.Equal(t, reporter, outcome.Record.Reporter)
	assert.Equal(t, reward, outcome.Record.Reward)
	assert.Equal(t, primitives.Gold(40000), h.ledger.NonvotingAccountBalance(validator))
	assert.Equal(t, reward, h.ledger.NonvotingAccountBalance(reporter))
	assert.Equal(t, primitives.Gold(0), h.ledger.NonvotingAccountBalance(otherAccount))
}
