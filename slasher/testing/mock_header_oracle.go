// Package testing provides in-memory doubles of the slasher's collaborators.
package testing

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/oracle"
	"github.com/sealwatch/slasher/slasher/types"
)

// MockHeaderOracle answers block numbers and seal bitmaps from values set
// per header hash.
type MockHeaderOracle struct {
	lock          sync.RWMutex
	numbers       map[[32]byte]primitives.BlockNumber
	bitmaps       map[[32]byte]bitfield.Bitlist
	numValidators uint64
}

var (
	_ = oracle.BlockHeaderOracle(&MockHeaderOracle{})
	_ = oracle.SealBitmapOracle(&MockHeaderOracle{})
)

// NewMockHeaderOracle returns an oracle whose bitmaps are numValidators wide.
func NewMockHeaderOracle(numValidators uint64) *MockHeaderOracle {
	return &MockHeaderOracle{
		numbers:       make(map[[32]byte]primitives.BlockNumber),
		bitmaps:       make(map[[32]byte]bitfield.Bitlist),
		numValidators: numValidators,
	}
}

// SetNumberValidators changes the width of bitmaps set afterwards.
func (m *MockHeaderOracle) SetNumberValidators(n uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.numValidators = n
}

// SetBlockNumber sets the block number reported for a header.
func (m *MockHeaderOracle) SetBlockNumber(header []byte, number primitives.BlockNumber) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.numbers[types.HeaderHash(header)] = number
}

// SetVerifiedSealBitmap sets the seal bitmap of a header from the low bits
// of bitmap, bit i standing for validator i.
func (m *MockHeaderOracle) SetVerifiedSealBitmap(header []byte, bitmap uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	bits := bitfield.NewBitlist(m.numValidators)
	for i := uint64(0); i < m.numValidators && i < 64; i++ {
		if bitmap&(1<<i) != 0 {
			bits.SetBitAt(i, true)
		}
	}
	m.bitmaps[types.HeaderHash(header)] = bits
}

// BlockNumber returns the number set for the header.
func (m *MockHeaderOracle) BlockNumber(_ context.Context, header []byte) (primitives.BlockNumber, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	n, ok := m.numbers[types.HeaderHash(header)]
	if !ok {
		return 0, errors.Wrap(oracle.ErrMalformedHeader, "no block number set for header")
	}
	return n, nil
}

// VerifiedSealBitmap returns the bitmap set for the header, or an empty
// bitmap if none was set.
func (m *MockHeaderOracle) VerifiedSealBitmap(_ context.Context, header []byte) (bitfield.Bitlist, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	bits, ok := m.bitmaps[types.HeaderHash(header)]
	if !ok {
		return bitfield.NewBitlist(m.numValidators), nil
	}
	return bits, nil
}
