package primitives

import "math/bits"

// Epoch is a contiguous range of block numbers sharing one validator set.
type Epoch uint64

// StartBlock returns the first block number of the epoch.
func (e Epoch) StartBlock(epochSize uint64) (BlockNumber, error) {
	hi, lo := bits.Mul64(uint64(e), epochSize)
	if hi != 0 {
		return 0, errOverflow
	}
	return BlockNumber(lo), nil
}

// Sub returns e - x, floored at zero.
func (e Epoch) Sub(x uint64) Epoch {
	if uint64(e) < x {
		return 0
	}
	return e - Epoch(x)
}
