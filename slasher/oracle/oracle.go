// Package oracle defines the collaborators the slasher engine trusts for
// header validity, seal participation, validator identity and balances.
package oracle

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/types"
)

// ErrUnknownEpoch is returned when a directory cannot resolve the validator
// set of an epoch and no usable proof was supplied.
var ErrUnknownEpoch = errors.New("unknown epoch")

// ErrNoSigner is returned when an epoch has no validator at the requested index.
var ErrNoSigner = errors.New("no signer at validator index")

// ErrMalformedHeader is returned by header oracles for blobs they cannot decode.
var ErrMalformedHeader = errors.New("malformed header")

// BlockHeaderOracle extracts the block number from a header blob whose
// validity has already been established upstream.
type BlockHeaderOracle interface {
	BlockNumber(ctx context.Context, header []byte) (primitives.BlockNumber, error)
}

// SealBitmapOracle returns the verified bitmap of validator indices that
// co-signed the aggregate seal of a header.
type SealBitmapOracle interface {
	VerifiedSealBitmap(ctx context.Context, header []byte) (bitfield.Bitlist, error)
}

// EpochValidatorDirectory resolves the account that sat at a validator
// index during an epoch.
type EpochValidatorDirectory interface {
	SignerAt(ctx context.Context, epoch primitives.Epoch, index primitives.ValidatorIndex, proof *types.SignerProof) (common.Address, error)
}

// ValidatorCounter reports how many validators an epoch had. Header oracles
// use it to size seal bitmaps.
type ValidatorCounter interface {
	NumValidators(ctx context.Context, epoch primitives.Epoch) (uint64, error)
}

// LockedGoldLedger moves staked funds from an offender to a reporter. Slash
// must be idempotent for a given slashID.
type LockedGoldLedger interface {
	Slash(
		ctx context.Context,
		slashID [32]byte,
		offender common.Address,
		penalty primitives.Gold,
		reporter common.Address,
		reward primitives.Gold,
	) (*types.SlashedAmounts, error)
}
