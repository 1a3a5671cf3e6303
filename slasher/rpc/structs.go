package rpc

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/types"
)

// IncentivesJson carries gold amounts as decimal strings.
type IncentivesJson struct {
	Penalty string `json:"penalty"`
	Reward  string `json:"reward"`
	Version string `json:"version,omitempty"`
}

type OwnerJson struct {
	Owner string `json:"owner"`
}

type SignerProofJson struct {
	HistoryIndex string          `json:"history_index"`
	Fragments    []hexutil.Bytes `json:"fragments"`
}

type SlashRequest struct {
	Offender       string           `json:"offender"`
	ValidatorIndex string           `json:"validator_index"`
	HeaderA        hexutil.Bytes    `json:"header_a"`
	HeaderB        hexutil.Bytes    `json:"header_b"`
	Proof          *SignerProofJson `json:"proof,omitempty"`
}

type SlashRecordJson struct {
	Offender          string `json:"offender"`
	ValidatorIndex    string `json:"validator_index"`
	Epoch             string `json:"epoch"`
	Height            string `json:"height"`
	HeaderAHash       string `json:"header_a_hash"`
	HeaderBHash       string `json:"header_b_hash"`
	Reporter          string `json:"reporter"`
	Penalty           string `json:"penalty"`
	Reward            string `json:"reward"`
	CommunityFund     string `json:"community_fund"`
	IncentivesVersion string `json:"incentives_version"`
	Timestamp         string `json:"timestamp"`
}

type SlashResponse struct {
	Data *SlashRecordJson `json:"data"`
	// Incentives that were applied to the slash.
	Incentives *IncentivesJson `json:"incentives"`
}

type SlashRecordResponse struct {
	Data *SlashRecordJson `json:"data"`
}

type SlashRecordsResponse struct {
	Data []*SlashRecordJson `json:"data"`
}

type RecordEpochRequest struct {
	Signers []string `json:"signers"`
}

type EpochCheckpointJson struct {
	HistoryIndex  string `json:"history_index"`
	Epoch         string `json:"epoch"`
	SignersRoot   string `json:"signers_root"`
	NumValidators string `json:"num_validators"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func IncentivesFromConsensus(i *types.SlashingIncentives) *IncentivesJson {
	return &IncentivesJson{
		Penalty: u64(uint64(i.Penalty)),
		Reward:  u64(uint64(i.Reward)),
		Version: u64(i.Version),
	}
}

func SlashRecordFromConsensus(r *types.SlashRecord) *SlashRecordJson {
	return &SlashRecordJson{
		Offender:          r.Offender.Hex(),
		ValidatorIndex:    u64(uint64(r.ValidatorIndex)),
		Epoch:             u64(uint64(r.Epoch)),
		Height:            u64(uint64(r.Height)),
		HeaderAHash:       r.HeaderAHash.Hex(),
		HeaderBHash:       r.HeaderBHash.Hex(),
		Reporter:          r.Reporter.Hex(),
		Penalty:           u64(uint64(r.Penalty)),
		Reward:            u64(uint64(r.Reward)),
		CommunityFund:     u64(uint64(r.CommunityFund)),
		IncentivesVersion: u64(r.IncentivesVersion),
		Timestamp:         strconv.FormatInt(r.Timestamp, 10),
	}
}

func EpochCheckpointFromConsensus(c *types.EpochCheckpoint) *EpochCheckpointJson {
	return &EpochCheckpointJson{
		HistoryIndex:  u64(c.HistoryIndex),
		Epoch:         u64(uint64(c.Epoch)),
		SignersRoot:   c.SignersRoot.Hex(),
		NumValidators: u64(c.NumValidators),
	}
}

func SignerProofFromConsensus(p *types.SignerProof) *SignerProofJson {
	fragments := make([]hexutil.Bytes, len(p.Fragments))
	for i, f := range p.Fragments {
		fragments[i] = f
	}
	return &SignerProofJson{
		HistoryIndex: u64(p.HistoryIndex),
		Fragments:    fragments,
	}
}

// ToConsensus converts the proof into its engine representation.
func (p *SignerProofJson) ToConsensus() (*types.SignerProof, error) {
	historyIndex, err := strconv.ParseUint(p.HistoryIndex, 10, 64)
	if err != nil {
		return nil, NewDecodeError(err, "HistoryIndex")
	}
	fragments := make([][]byte, len(p.Fragments))
	for i, f := range p.Fragments {
		fragments[i] = f
	}
	return &types.SignerProof{HistoryIndex: historyIndex, Fragments: fragments}, nil
}

// ToConsensus converts the request into fault evidence.
func (r *SlashRequest) ToConsensus() (*types.FaultEvidence, error) {
	if !common.IsHexAddress(r.Offender) {
		return nil, NewDecodeError(errInvalidAddress, "Offender")
	}
	index, err := strconv.ParseUint(r.ValidatorIndex, 10, 64)
	if err != nil {
		return nil, NewDecodeError(err, "ValidatorIndex")
	}
	evidence := &types.FaultEvidence{
		Offender:       common.HexToAddress(r.Offender),
		ValidatorIndex: primitives.ValidatorIndex(index),
		HeaderA:        r.HeaderA,
		HeaderB:        r.HeaderB,
	}
	if r.Proof != nil {
		proof, err := r.Proof.ToConsensus()
		if err != nil {
			return nil, NewDecodeError(err, "Proof")
		}
		evidence.Proof = proof
	}
	return evidence, nil
}
