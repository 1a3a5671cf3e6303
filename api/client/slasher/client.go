// Package slasher is a typed client of the slasher HTTP API.
package slasher

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/api/client"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/rpc"
	"github.com/sealwatch/slasher/slasher/types"
)

const (
	pathInitialize = "/slasher/v1/initialize"
	pathIncentives = "/slasher/v1/incentives"
	pathOwner      = "/slasher/v1/owner"
	pathSlash      = "/slasher/v1/slash"
	pathSlashings  = "/slasher/v1/slashings/"
	pathEpochs     = "/slasher/v1/epochs/"
	pathBalances   = "/slasher/v1/balances/"
)

// Client talks to a slasher node.
type Client struct {
	*client.Client
}

// NewClient creates a client for the slasher at host.
func NewClient(host string, opts ...client.ClientOpt) (*Client, error) {
	c, err := client.NewClient(host, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

func gold(s string) (primitives.Gold, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	return primitives.Gold(v), err
}

func incentivesFromJson(j *rpc.IncentivesJson) (*types.SlashingIncentives, error) {
	penalty, err := gold(j.Penalty)
	if err != nil {
		return nil, errors.Wrap(err, "invalid penalty")
	}
	reward, err := gold(j.Reward)
	if err != nil {
		return nil, errors.Wrap(err, "invalid reward")
	}
	version, err := strconv.ParseUint(j.Version, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "invalid version")
	}
	return &types.SlashingIncentives{Penalty: penalty, Reward: reward, Version: version}, nil
}

func incentivesRequest(penalty, reward primitives.Gold) *rpc.IncentivesJson {
	return &rpc.IncentivesJson{
		Penalty: strconv.FormatUint(uint64(penalty), 10),
		Reward:  strconv.FormatUint(uint64(reward), 10),
	}
}

// Initialize makes the client key the owner of an uninitialized slasher.
func (c *Client) Initialize(ctx context.Context, penalty, reward primitives.Gold) (*types.SlashingIncentives, error) {
	resp := &rpc.IncentivesJson{}
	if err := c.Send(ctx, http.MethodPost, pathInitialize, incentivesRequest(penalty, reward), resp); err != nil {
		return nil, err
	}
	return incentivesFromJson(resp)
}

// SlashingIncentives returns the incentives in effect.
func (c *Client) SlashingIncentives(ctx context.Context) (*types.SlashingIncentives, error) {
	resp := &rpc.IncentivesJson{}
	if err := c.Get(ctx, pathIncentives, resp); err != nil {
		return nil, err
	}
	return incentivesFromJson(resp)
}

// SetSlashingIncentives replaces the incentives. The client key must be the owner.
func (c *Client) SetSlashingIncentives(ctx context.Context, penalty, reward primitives.Gold) (*types.SlashingIncentives, error) {
	resp := &rpc.IncentivesJson{}
	if err := c.Send(ctx, http.MethodPut, pathIncentives, incentivesRequest(penalty, reward), resp); err != nil {
		return nil, err
	}
	return incentivesFromJson(resp)
}

// Owner returns the current owner.
func (c *Client) Owner(ctx context.Context) (common.Address, error) {
	resp := &rpc.OwnerJson{}
	if err := c.Get(ctx, pathOwner, resp); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(resp.Owner), nil
}

// TransferOwnership hands the owner role to newOwner.
func (c *Client) TransferOwnership(ctx context.Context, newOwner common.Address) error {
	return c.Send(ctx, http.MethodPut, pathOwner, &rpc.OwnerJson{Owner: newOwner.Hex()}, nil)
}

// Slash reports fault evidence. The client key is the reporter.
func (c *Client) Slash(ctx context.Context, evidence *types.FaultEvidence) (*rpc.SlashResponse, error) {
	req := &rpc.SlashRequest{
		Offender:       evidence.Offender.Hex(),
		ValidatorIndex: strconv.FormatUint(uint64(evidence.ValidatorIndex), 10),
		HeaderA:        evidence.HeaderA,
		HeaderB:        evidence.HeaderB,
	}
	if !evidence.Proof.Empty() {
		req.Proof = rpc.SignerProofFromConsensus(evidence.Proof)
	}
	resp := &rpc.SlashResponse{}
	if err := c.Send(ctx, http.MethodPost, pathSlash, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SlashRecords returns every record of offender ordered by height.
func (c *Client) SlashRecords(ctx context.Context, offender common.Address) ([]*rpc.SlashRecordJson, error) {
	resp := &rpc.SlashRecordsResponse{}
	if err := c.Get(ctx, pathSlashings+offender.Hex(), resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SlashRecord returns the record of offender at height. Missing records
// yield an error wrapping client.ErrNotFound.
func (c *Client) SlashRecord(ctx context.Context, offender common.Address, height primitives.BlockNumber) (*rpc.SlashRecordJson, error) {
	resp := &rpc.SlashRecordResponse{}
	path := pathSlashings + offender.Hex() + "/" + strconv.FormatUint(uint64(height), 10)
	if err := c.Get(ctx, path, resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// RecordEpoch stores the validator set of an epoch. The client key must be the owner.
func (c *Client) RecordEpoch(ctx context.Context, epoch primitives.Epoch, signers []common.Address) (*rpc.EpochCheckpointJson, error) {
	req := &rpc.RecordEpochRequest{Signers: make([]string, len(signers))}
	for i, signer := range signers {
		req.Signers[i] = signer.Hex()
	}
	resp := &rpc.EpochCheckpointJson{}
	if err := c.Send(ctx, http.MethodPost, pathEpochs+strconv.FormatUint(uint64(epoch), 10), req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SignerProof fetches the proof of a validator seat for later use in Slash.
func (c *Client) SignerProof(ctx context.Context, epoch primitives.Epoch, index primitives.ValidatorIndex) (*types.SignerProof, error) {
	resp := &rpc.SignerProofJson{}
	path := pathEpochs + strconv.FormatUint(uint64(epoch), 10) + "/proofs/" + strconv.FormatUint(uint64(index), 10)
	if err := c.Get(ctx, path, resp); err != nil {
		return nil, err
	}
	return resp.ToConsensus()
}

// NonvotingAccountBalance returns the nonvoting locked gold of account.
func (c *Client) NonvotingAccountBalance(ctx context.Context, account common.Address) (primitives.Gold, error) {
	resp := &rpc.BalanceResponse{}
	if err := c.Get(ctx, pathBalances+account.Hex(), resp); err != nil {
		return 0, err
	}
	return gold(resp.Balance)
}
