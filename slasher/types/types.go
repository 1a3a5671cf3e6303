// Package types defines the evidence, incentive and record types shared by
// the slasher engine, its storage and its API.
package types

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/encoding/bytesutil"
)

// SignerProof resolves a validator seat of an epoch that fell out of the
// directory's history window. HistoryIndex selects a signer set checkpoint,
// Fragments carries the leaf and its Merkle branch.
type SignerProof struct {
	HistoryIndex uint64   `json:"history_index"`
	Fragments    [][]byte `json:"fragments"`
}

// Empty reports whether the proof carries no fragments.
func (p *SignerProof) Empty() bool {
	return p == nil || len(p.Fragments) == 0
}

// Copy returns a deep copy of the proof.
func (p *SignerProof) Copy() *SignerProof {
	if p == nil {
		return nil
	}
	fragments := make([][]byte, len(p.Fragments))
	for i, f := range p.Fragments {
		fragments[i] = bytesutil.SafeCopyBytes(f)
	}
	return &SignerProof{HistoryIndex: p.HistoryIndex, Fragments: fragments}
}

// FaultEvidence claims that Offender, sitting at ValidatorIndex, sealed two
// different headers at the same height.
type FaultEvidence struct {
	Offender       common.Address            `json:"offender"`
	ValidatorIndex primitives.ValidatorIndex `json:"validator_index"`
	HeaderA        []byte                    `json:"header_a"`
	HeaderB        []byte                    `json:"header_b"`
	Proof          *SignerProof              `json:"proof,omitempty"`
}

// Distinct reports whether the two header blobs differ.
func (e *FaultEvidence) Distinct() bool {
	return !bytes.Equal(e.HeaderA, e.HeaderB)
}

// HeaderHash identifies a header blob by its Keccak256 hash.
func HeaderHash(header []byte) common.Hash {
	return crypto.Keccak256Hash(header)
}

// SlashingIncentives is the penalty charged to an offender and the reward
// paid to whoever proves the fault. Version increases on every change.
type SlashingIncentives struct {
	Penalty primitives.Gold `json:"penalty"`
	Reward  primitives.Gold `json:"reward"`
	Version uint64          `json:"version"`
}

// Copy returns a copy of the incentives.
func (s *SlashingIncentives) Copy() *SlashingIncentives {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// SlashRecord marks a punished fault. It is keyed by (Offender, Height).
type SlashRecord struct {
	Offender          common.Address            `json:"offender"`
	ValidatorIndex    primitives.ValidatorIndex `json:"validator_index"`
	Epoch             primitives.Epoch          `json:"epoch"`
	Height            primitives.BlockNumber    `json:"height"`
	HeaderAHash       common.Hash               `json:"header_a_hash"`
	HeaderBHash       common.Hash               `json:"header_b_hash"`
	Reporter          common.Address            `json:"reporter"`
	Penalty           primitives.Gold           `json:"penalty"`
	Reward            primitives.Gold           `json:"reward"`
	CommunityFund     primitives.Gold           `json:"community_fund"`
	IncentivesVersion uint64                    `json:"incentives_version"`
	Timestamp         int64                     `json:"timestamp"`
}

// SlashOutcome is what a successful slash returns to its caller.
type SlashOutcome struct {
	Record     *SlashRecord        `json:"record"`
	Incentives *SlashingIncentives `json:"incentives"`
}

// SlashEvent is published on the engine feed after a slash commits.
type SlashEvent struct {
	Record *SlashRecord
}

// SlashedAmounts reports how a ledger applied a slash. Reporter is the
// account the reward was paid to when the slash was first applied.
type SlashedAmounts struct {
	Reporter      common.Address
	Penalty       primitives.Gold
	Reward        primitives.Gold
	CommunityFund primitives.Gold
}

// EpochCheckpoint commits to the signer set of a recorded epoch. Checkpoints
// form an append-only list addressed by HistoryIndex and outlive the full
// signer sets they commit to.
type EpochCheckpoint struct {
	HistoryIndex  uint64           `json:"history_index"`
	Epoch         primitives.Epoch `json:"epoch"`
	SignersRoot   common.Hash      `json:"signers_root"`
	NumValidators uint64           `json:"num_validators"`
}
