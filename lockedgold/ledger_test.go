package lockedgold_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/lockedgold"
	ledgertest "github.com/sealwatch/slasher/lockedgold/testing"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
)

var (
	offender = common.HexToAddress("0x05")
	reporter = common.HexToAddress("0x07")
)

func balance(t *testing.T, l *lockedgold.Ledger, account common.Address) primitives.Gold {
	b, err := l.NonvotingAccountBalance(context.Background(), account)
	require.NoError(t, err)
	return b
}

func TestLedger_IncrementDecrement(t *testing.T) {
	l := ledgertest.SetupLedger(t)
	ctx := context.Background()

	assert.Equal(t, primitives.Gold(0), balance(t, l, offender))
	require.NoError(t, l.IncrementNonvotingAccountBalance(ctx, offender, 50000))
	require.NoError(t, l.DecrementNonvotingAccountBalance(ctx, offender, 20000))
	assert.Equal(t, primitives.Gold(30000), balance(t, l, offender))

	err := l.DecrementNonvotingAccountBalance(ctx, offender, 30001)
	assert.ErrorIs(t, err, lockedgold.ErrInsufficientBalance)
	assert.Equal(t, primitives.Gold(30000), balance(t, l, offender))

	require.NoError(t, l.IncrementNonvotingAccountBalance(ctx, reporter, ^primitives.Gold(0)))
	assert.ErrorContains(t, "could not credit", l.IncrementNonvotingAccountBalance(ctx, reporter, 1))
}

func TestLedger_Slash(t *testing.T) {
	l := ledgertest.SetupLedger(t)
	ctx := context.Background()
	require.NoError(t, l.IncrementNonvotingAccountBalance(ctx, offender, 50000))

	id := crypto.Keccak256Hash([]byte("fault"))
	amounts, err := l.Slash(ctx, id, offender, 10000, reporter, 100)
	require.NoError(t, err)
	assert.DeepEqual(t, &types.SlashedAmounts{Reporter: reporter, Penalty: 10000, Reward: 100, CommunityFund: 9900}, amounts)
	assert.Equal(t, primitives.Gold(40000), balance(t, l, offender))
	assert.Equal(t, primitives.Gold(100), balance(t, l, reporter))
	assert.Equal(t, primitives.Gold(9900), balance(t, l, ledgertest.CommunityFund))
	assert.Equal(t, ledgertest.CommunityFund, l.CommunityFund())
}

func TestLedger_Slash_SameIDIsIdempotent(t *testing.T) {
	l := ledgertest.SetupLedger(t)
	ctx := context.Background()
	require.NoError(t, l.IncrementNonvotingAccountBalance(ctx, offender, 50000))

	id := crypto.Keccak256Hash([]byte("fault"))
	first, err := l.Slash(ctx, id, offender, 10000, reporter, 100)
	require.NoError(t, err)
	// A later report of the same fault keeps the first reporter.
	second, err := l.Slash(ctx, id, offender, 20000, ledgertest.CommunityFund, 500)
	require.NoError(t, err)
	assert.DeepEqual(t, first, second)
	assert.Equal(t, reporter, second.Reporter)
	assert.Equal(t, primitives.Gold(40000), balance(t, l, offender))
	assert.Equal(t, primitives.Gold(100), balance(t, l, reporter))

	_, err = l.Slash(ctx, crypto.Keccak256Hash([]byte("other fault")), offender, 10000, reporter, 100)
	require.NoError(t, err)
	assert.Equal(t, primitives.Gold(30000), balance(t, l, offender))
}

func TestLedger_Slash_ClampsToBalance(t *testing.T) {
	tests := []struct {
		name    string
		balance primitives.Gold
		penalty primitives.Gold
		reward  primitives.Gold
		want    *types.SlashedAmounts
	}{
		{
			name:    "penalty above balance",
			balance: 5000, penalty: 10000, reward: 100,
			want: &types.SlashedAmounts{Penalty: 5000, Reward: 100, CommunityFund: 4900},
		},
		{
			name:    "reward above slashed amount",
			balance: 50, penalty: 10000, reward: 100,
			want: &types.SlashedAmounts{Penalty: 50, Reward: 50, CommunityFund: 0},
		},
		{
			name:    "reward above penalty",
			balance: 50000, penalty: 67, reward: 123,
			want: &types.SlashedAmounts{Penalty: 67, Reward: 67, CommunityFund: 0},
		},
		{
			name:    "empty balance",
			balance: 0, penalty: 10000, reward: 100,
			want: &types.SlashedAmounts{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ledgertest.SetupLedger(t)
			ctx := context.Background()
			require.NoError(t, l.IncrementNonvotingAccountBalance(ctx, offender, tt.balance))
			amounts, err := l.Slash(ctx, crypto.Keccak256Hash([]byte(tt.name)), offender, tt.penalty, reporter, tt.reward)
			require.NoError(t, err)
			tt.want.Reporter = reporter
			assert.DeepEqual(t, tt.want, amounts)
			assert.Equal(t, tt.balance-tt.want.Penalty, balance(t, l, offender))
			assert.Equal(t, tt.want.Reward, balance(t, l, reporter))
			assert.Equal(t, tt.want.CommunityFund, balance(t, l, ledgertest.CommunityFund))
		})
	}
}

func TestLedger_Slash_ReporterIsOffender(t *testing.T) {
	l := ledgertest.SetupLedger(t)
	ctx := context.Background()
	require.NoError(t, l.IncrementNonvotingAccountBalance(ctx, offender, 50000))
	_, err := l.Slash(ctx, crypto.Keccak256Hash([]byte("self")), offender, 10000, offender, 100)
	require.NoError(t, err)
	assert.Equal(t, primitives.Gold(40100), balance(t, l, offender))
}

func TestLedger_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	l, err := lockedgold.NewLedger(ctx, dir, ledgertest.CommunityFund)
	require.NoError(t, err)
	require.NoError(t, l.IncrementNonvotingAccountBalance(ctx, offender, 50000))
	require.NoError(t, l.Close())

	l, err = lockedgold.NewLedger(ctx, dir, ledgertest.CommunityFund)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, l.Close())
	}()
	assert.Equal(t, primitives.Gold(50000), balance(t, l, offender))
}
