// Package primitives defines the scalar types shared by the slasher, the
// locked gold ledger and the epoch directory.
package primitives
