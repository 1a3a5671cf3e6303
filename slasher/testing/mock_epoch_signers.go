package testing

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/oracle"
	"github.com/sealwatch/slasher/slasher/types"
)

type seat struct {
	epoch primitives.Epoch
	index primitives.ValidatorIndex
}

// MockEpochSigners is an EpochValidatorDirectory over explicitly set seats.
type MockEpochSigners struct {
	lock    sync.RWMutex
	signers map[seat]common.Address
	epochs  map[primitives.Epoch]bool
}

var _ = oracle.EpochValidatorDirectory(&MockEpochSigners{})

// NewMockEpochSigners returns an empty directory.
func NewMockEpochSigners() *MockEpochSigners {
	return &MockEpochSigners{
		signers: make(map[seat]common.Address),
		epochs:  make(map[primitives.Epoch]bool),
	}
}

// SetEpochSigner records signer at index during epoch.
func (m *MockEpochSigners) SetEpochSigner(epoch primitives.Epoch, index primitives.ValidatorIndex, signer common.Address) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.signers[seat{epoch: epoch, index: index}] = signer
	m.epochs[epoch] = true
}

// SignerAt returns the signer set for the seat. Proofs are ignored.
func (m *MockEpochSigners) SignerAt(
	_ context.Context, epoch primitives.Epoch, index primitives.ValidatorIndex, _ *types.SignerProof,
) (common.Address, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if !m.epochs[epoch] {
		return common.Address{}, errors.Wrapf(oracle.ErrUnknownEpoch, "epoch %d", epoch)
	}
	signer, ok := m.signers[seat{epoch: epoch, index: index}]
	if !ok {
		return common.Address{}, errors.Wrapf(oracle.ErrNoSigner, "index %d in epoch %d", index, epoch)
	}
	return signer, nil
}
