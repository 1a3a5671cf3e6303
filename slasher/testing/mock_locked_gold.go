package testing

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/oracle"
	"github.com/sealwatch/slasher/slasher/types"
)

// MockLockedGold keeps balances in memory and applies slashes with the
// same clamp as the bolt ledger.
type MockLockedGold struct {
	lock          sync.Mutex
	balances      map[common.Address]primitives.Gold
	applied       map[[32]byte]*types.SlashedAmounts
	CommunityFund common.Address
	// SlashErr, when set, is returned by Slash without moving funds.
	SlashErr error
	// SlashCalls counts calls to Slash.
	SlashCalls int
}

var _ = oracle.LockedGoldLedger(&MockLockedGold{})

// NewMockLockedGold returns an empty ledger.
func NewMockLockedGold() *MockLockedGold {
	return &MockLockedGold{
		balances:      make(map[common.Address]primitives.Gold),
		applied:       make(map[[32]byte]*types.SlashedAmounts),
		CommunityFund: common.HexToAddress("0x000000000000000000000000000000000000f00d"),
	}
}

// IncrementNonvotingAccountBalance credits amount to account.
func (m *MockLockedGold) IncrementNonvotingAccountBalance(account common.Address, amount primitives.Gold) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.balances[account] += amount
}

// NonvotingAccountBalance returns the balance of account.
func (m *MockLockedGold) NonvotingAccountBalance(account common.Address) primitives.Gold {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.balances[account]
}

// Slash implements oracle.LockedGoldLedger.
func (m *MockLockedGold) Slash(
	_ context.Context,
	slashID [32]byte,
	offender common.Address,
	penalty primitives.Gold,
	reporter common.Address,
	reward primitives.Gold,
) (*types.SlashedAmounts, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.SlashCalls++
	if m.SlashErr != nil {
		return nil, m.SlashErr
	}
	if applied, ok := m.applied[slashID]; ok {
		return applied, nil
	}
	slashed := primitives.MinGold(penalty, m.balances[offender])
	paid := primitives.MinGold(reward, slashed)
	m.balances[offender] -= slashed
	m.balances[reporter] += paid
	m.balances[m.CommunityFund] += slashed - paid
	amounts := &types.SlashedAmounts{Reporter: reporter, Penalty: slashed, Reward: paid, CommunityFund: slashed - paid}
	m.applied[slashID] = amounts
	return amounts, nil
}
