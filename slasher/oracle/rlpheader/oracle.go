package rlpheader

import (
	"context"
	"math/big"

	"github.com/dgraph-io/ristretto"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/oracle"
	"go.opencensus.io/trace"
)

var (
	_ = oracle.BlockHeaderOracle(&Oracle{})
	_ = oracle.SealBitmapOracle(&Oracle{})
)

const (
	headerCacheCounters = 10000
	headerCacheMaxCost  = 16 << 20 // bytes of encoded headers
)

// Oracle reads block numbers and seal bitmaps out of RLP headers. The
// width of a seal bitmap is the validator count of the header's epoch.
// Decoded headers are cached by the hash of their encoding, since every
// piece of evidence is read once for its number and once for its seal.
type Oracle struct {
	epochSize  uint64
	validators oracle.ValidatorCounter
	headers    *ristretto.Cache
}

// New returns an oracle for the given epoch size.
func New(epochSize uint64, validators oracle.ValidatorCounter) (*Oracle, error) {
	if epochSize == 0 {
		return nil, errors.New("epoch size must be greater than zero")
	}
	if validators == nil {
		return nil, errors.New("nil validator counter")
	}
	headers, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: headerCacheCounters,
		MaxCost:     headerCacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create header cache")
	}
	return &Oracle{epochSize: epochSize, validators: validators, headers: headers}, nil
}

// BlockNumber of the header.
func (o *Oracle) BlockNumber(ctx context.Context, blob []byte) (primitives.BlockNumber, error) {
	_, span := trace.StartSpan(ctx, "rlpheader.BlockNumber")
	defer span.End()
	h, err := o.decode(blob)
	if err != nil {
		return 0, err
	}
	return blockNumber(h)
}

// VerifiedSealBitmap returns the aggregated seal bitmap of the header as a
// bitlist sized to the validator set of its epoch.
func (o *Oracle) VerifiedSealBitmap(ctx context.Context, blob []byte) (bitfield.Bitlist, error) {
	ctx, span := trace.StartSpan(ctx, "rlpheader.VerifiedSealBitmap")
	defer span.End()
	h, err := o.decode(blob)
	if err != nil {
		return nil, err
	}
	number, err := blockNumber(h)
	if err != nil {
		return nil, err
	}
	extra, err := ExtractIstanbulExtra(h)
	if err != nil {
		return nil, errors.Wrap(oracle.ErrMalformedHeader, err.Error())
	}
	n, err := o.validators.NumValidators(ctx, number.ToEpoch(o.epochSize))
	if err != nil {
		return nil, err
	}
	return ToBitlist(extra.AggregatedSeal.Bitmap, n)
}

func (o *Oracle) decode(blob []byte) (*Header, error) {
	key := string(crypto.Keccak256(blob))
	if cached, ok := o.headers.Get(key); ok {
		return cached.(*Header), nil
	}
	h, err := DecodeHeader(blob)
	if err != nil {
		return nil, errors.Wrap(oracle.ErrMalformedHeader, err.Error())
	}
	o.headers.Set(key, h, int64(len(blob)))
	return h, nil
}

// ToBitlist converts a big integer bitmap into a bitlist of length n.
func ToBitlist(bitmap *big.Int, n uint64) (bitfield.Bitlist, error) {
	bits := bitfield.NewBitlist(n)
	if bitmap == nil {
		return bits, nil
	}
	if bitmap.Sign() < 0 {
		return nil, errors.New("negative seal bitmap")
	}
	if uint64(bitmap.BitLen()) > n {
		return nil, errors.Errorf("seal bitmap has %d bits for %d validators", bitmap.BitLen(), n)
	}
	for i := uint64(0); i < n; i++ {
		if bitmap.Bit(int(i)) == 1 {
			bits.SetBitAt(i, true)
		}
	}
	return bits, nil
}

func blockNumber(h *Header) (primitives.BlockNumber, error) {
	if h.Number.Sign() < 0 || !h.Number.IsUint64() {
		return 0, errors.Wrapf(oracle.ErrMalformedHeader, "block number %s out of range", h.Number)
	}
	return primitives.BlockNumber(h.Number.Uint64()), nil
}
