package kv

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/encoding/bytesutil"
)

var (
	metadataBucket     = []byte("metadata")
	slashRecordsBucket = []byte("slash-records")
	// Full signer sets of the epochs inside the history window.
	epochSignersBucket = []byte("epoch-signers")
	// Append-only list of signer set checkpoints keyed by history index.
	checkpointsBucket = []byte("epoch-checkpoints")
	// Epoch -> history index of its checkpoint.
	checkpointIndexBucket = []byte("epoch-checkpoint-index")
	// Caller address -> last accepted API request nonce.
	requestNoncesBucket = []byte("request-nonces")

	ownerKey      = []byte("owner")
	incentivesKey = []byte("slashing-incentives")
)

// slashRecordKey is offender ++ big endian height so records of one offender
// are adjacent and ordered by height.
func slashRecordKey(offender common.Address, height primitives.BlockNumber) []byte {
	return append(bytesutil.SafeCopyBytes(offender.Bytes()), bytesutil.Uint64ToBytesBigEndian(uint64(height))...)
}

func epochKey(epoch primitives.Epoch) []byte {
	return bytesutil.Uint64ToBytesBigEndian(uint64(epoch))
}
