package primitives

import (
	"fmt"
	"math/bits"
)

// BlockNumber is the height of a block in the chain.
type BlockNumber uint64

// ToEpoch returns the epoch containing the block, floor(n / epochSize).
// A zero epoch size is a configuration error and panics.
func (n BlockNumber) ToEpoch(epochSize uint64) Epoch {
	if epochSize == 0 {
		panic("epoch size must be greater than zero")
	}
	return Epoch(uint64(n) / epochSize)
}

// SafeAdd increases the block number by x, returning an error on overflow.
func (n BlockNumber) SafeAdd(x uint64) (BlockNumber, error) {
	res, carry := bits.Add64(uint64(n), x, 0)
	if carry != 0 {
		return 0, fmt.Errorf("block number addition overflows: %d + %d", n, x)
	}
	return BlockNumber(res), nil
}
