package primitives

import (
	"errors"
	"math/bits"
)

var errOverflow = errors.New("arithmetic overflow")

// ErrUnderflow is returned when a subtraction would go below zero.
var ErrUnderflow = errors.New("arithmetic underflow")

// Gold is an amount of locked gold in its smallest unit.
type Gold uint64

// SafeAdd returns g + x or an error on overflow.
func (g Gold) SafeAdd(x Gold) (Gold, error) {
	res, carry := bits.Add64(uint64(g), uint64(x), 0)
	if carry != 0 {
		return 0, errOverflow
	}
	return Gold(res), nil
}

// SafeSub returns g - x or ErrUnderflow.
func (g Gold) SafeSub(x Gold) (Gold, error) {
	res, borrow := bits.Sub64(uint64(g), uint64(x), 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return Gold(res), nil
}

// MinGold returns the smaller of a and b.
func MinGold(a, b Gold) Gold {
	if a < b {
		return a
	}
	return b
}
