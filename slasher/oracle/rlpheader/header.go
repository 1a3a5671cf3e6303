// Package rlpheader implements the header and seal bitmap oracles over
// RLP-encoded block headers carrying an Istanbul extra-data section.
package rlpheader

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

const (
	// ExtraVanity is the fixed number of extra-data prefix bytes reserved for
	// proposer vanity.
	ExtraVanity = 32
	// BloomLength of the logs bloom filter.
	BloomLength = 256
)

// Header is the RLP layout of a block header.
type Header struct {
	ParentHash  common.Hash
	Coinbase    common.Address
	Root        common.Hash
	TxHash      common.Hash
	ReceiptHash common.Hash
	Bloom       [BloomLength]byte
	Number      *big.Int
	GasUsed     uint64
	Time        uint64
	Extra       []byte
}

// AggregatedSeal is the aggregated signature of the validators that
// committed a block. Bit i of Bitmap is set when validator i signed.
type AggregatedSeal struct {
	Bitmap    *big.Int
	Signature []byte
	Round     *big.Int
}

// IstanbulExtra is the RLP payload following the vanity bytes of the
// header extra data.
type IstanbulExtra struct {
	AddedValidators           []common.Address
	AddedValidatorsPublicKeys [][]byte
	RemovedValidators         *big.Int
	Seal                      []byte
	AggregatedSeal            AggregatedSeal
	ParentAggregatedSeal      AggregatedSeal
}

// DecodeHeader decodes an RLP header blob.
func DecodeHeader(blob []byte) (*Header, error) {
	h := &Header{}
	if err := rlp.DecodeBytes(blob, h); err != nil {
		return nil, errors.Wrap(err, "could not decode header")
	}
	if h.Number == nil {
		return nil, errors.New("header has no number")
	}
	return h, nil
}

// EncodeHeader RLP encodes a header.
func EncodeHeader(h *Header) ([]byte, error) {
	return rlp.EncodeToBytes(h)
}

// ExtractIstanbulExtra decodes the Istanbul section of a header's extra data.
func ExtractIstanbulExtra(h *Header) (*IstanbulExtra, error) {
	if len(h.Extra) < ExtraVanity {
		return nil, errors.Errorf("extra data too short: %d bytes", len(h.Extra))
	}
	extra := &IstanbulExtra{}
	if err := rlp.DecodeBytes(h.Extra[ExtraVanity:], extra); err != nil {
		return nil, errors.Wrap(err, "could not decode istanbul extra")
	}
	return extra, nil
}

// EncodeExtra prepends vanity bytes to the RLP encoding of an Istanbul extra.
func EncodeExtra(vanity [ExtraVanity]byte, extra *IstanbulExtra) ([]byte, error) {
	payload, err := rlp.EncodeToBytes(extra)
	if err != nil {
		return nil, err
	}
	return append(vanity[:], payload...), nil
}
