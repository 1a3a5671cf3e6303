package rpc

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/sealwatch/slasher/config/params"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/network/httputil"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

func handleErr(w http.ResponseWriter, message string, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).Error(message)
	}
	httputil.HandleError(w, message+": "+err.Error(), code)
}

// parseIncentives reads penalty and reward from body. With useDefaults, a
// body that names neither falls back to the configured defaults.
func parseIncentives(w http.ResponseWriter, body []byte, useDefaults bool) (primitives.Gold, primitives.Gold, bool) {
	req := &IncentivesJson{}
	if !decodeBody(w, body, req) {
		return 0, 0, false
	}
	if useDefaults && req.Penalty == "" && req.Reward == "" {
		cfg := params.SlasherConfig()
		return primitives.Gold(cfg.DefaultSlashingPenalty), primitives.Gold(cfg.DefaultSlashingReward), true
	}
	penalty, ok := ValidateUint(w, "Penalty", req.Penalty)
	if !ok {
		return 0, 0, false
	}
	reward, ok := ValidateUint(w, "Reward", req.Reward)
	if !ok {
		return 0, 0, false
	}
	return primitives.Gold(penalty), primitives.Gold(reward), true
}

// Initialize makes the signer of the request the owner and sets the first
// slashing incentives.
func (s *Server) Initialize(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "rpc.Initialize")
	defer span.End()

	caller, body, err := s.authenticate(ctx, r)
	if err != nil {
		handleErr(w, "Could not authenticate request", err)
		return
	}
	penalty, reward, ok := parseIncentives(w, body, true)
	if !ok {
		return
	}
	if err := s.cfg.engine.Initialize(ctx, caller, penalty, reward); err != nil {
		handleErr(w, "Could not initialize slasher", err)
		return
	}
	s.writeIncentives(w, r)
}

// GetSlashingIncentives returns the incentives in effect.
func (s *Server) GetSlashingIncentives(w http.ResponseWriter, r *http.Request) {
	s.writeIncentives(w, r)
}

func (s *Server) writeIncentives(w http.ResponseWriter, r *http.Request) {
	incentives, err := s.cfg.engine.SlashingIncentives(r.Context())
	if err != nil {
		handleErr(w, "Could not get slashing incentives", err)
		return
	}
	httputil.WriteJson(w, IncentivesFromConsensus(incentives))
}

// SetSlashingIncentives replaces the incentives. Owner only.
func (s *Server) SetSlashingIncentives(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "rpc.SetSlashingIncentives")
	defer span.End()

	caller, body, err := s.authenticate(ctx, r)
	if err != nil {
		handleErr(w, "Could not authenticate request", err)
		return
	}
	penalty, reward, ok := parseIncentives(w, body, false)
	if !ok {
		return
	}
	if err := s.cfg.engine.SetSlashingIncentives(ctx, caller, penalty, reward); err != nil {
		handleErr(w, "Could not set slashing incentives", err)
		return
	}
	s.writeIncentives(w, r)
}

// GetOwner returns the current owner.
func (s *Server) GetOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := s.cfg.engine.Owner(r.Context())
	if err != nil {
		handleErr(w, "Could not get owner", err)
		return
	}
	httputil.WriteJson(w, &OwnerJson{Owner: owner.Hex()})
}

// TransferOwnership hands the owner role to the account in the body. Owner only.
func (s *Server) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "rpc.TransferOwnership")
	defer span.End()

	caller, body, err := s.authenticate(ctx, r)
	if err != nil {
		handleErr(w, "Could not authenticate request", err)
		return
	}
	req := &OwnerJson{}
	if !decodeBody(w, body, req) {
		return
	}
	newOwner, ok := ValidateAddress(w, "Owner", req.Owner)
	if !ok {
		return
	}
	if err := s.cfg.engine.TransferOwnership(ctx, caller, newOwner); err != nil {
		handleErr(w, "Could not transfer ownership", err)
		return
	}
	httputil.WriteJson(w, &OwnerJson{Owner: newOwner.Hex()})
}

// Slash submits fault evidence. The signer of the request is the reporter.
func (s *Server) Slash(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "rpc.Slash")
	defer span.End()

	reporter, body, err := s.authenticate(ctx, r)
	if err != nil {
		handleErr(w, "Could not authenticate request", err)
		return
	}
	req := &SlashRequest{}
	if !decodeBody(w, body, req) {
		return
	}
	evidence, err := req.ToConsensus()
	if err != nil {
		httputil.HandleError(w, err.Error(), http.StatusBadRequest)
		return
	}
	outcome, err := s.cfg.engine.Slash(ctx, reporter, evidence)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"offender": evidence.Offender.Hex(),
			"reporter": reporter.Hex(),
		}).Debug("Rejected fault evidence")
		handleErr(w, "Could not slash", err)
		return
	}
	httputil.WriteJson(w, &SlashResponse{
		Data:       SlashRecordFromConsensus(outcome.Record),
		Incentives: IncentivesFromConsensus(outcome.Incentives),
	})
}

// GetSlashRecords returns every record of an offender ordered by height.
func (s *Server) GetSlashRecords(w http.ResponseWriter, r *http.Request) {
	offender, ok := ValidateAddress(w, "Offender", mux.Vars(r)["offender"])
	if !ok {
		return
	}
	records, err := s.cfg.engine.SlashRecordsForOffender(r.Context(), offender)
	if err != nil {
		handleErr(w, "Could not get slash records", err)
		return
	}
	data := make([]*SlashRecordJson, len(records))
	for i, record := range records {
		data[i] = SlashRecordFromConsensus(record)
	}
	httputil.WriteJson(w, &SlashRecordsResponse{Data: data})
}

// GetSlashRecord returns the record of an offender at a height.
func (s *Server) GetSlashRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	offender, ok := ValidateAddress(w, "Offender", vars["offender"])
	if !ok {
		return
	}
	height, ok := ValidateUint(w, "Height", vars["height"])
	if !ok {
		return
	}
	record, err := s.cfg.engine.SlashRecord(r.Context(), offender, primitives.BlockNumber(height))
	if err != nil {
		handleErr(w, "Could not get slash record", err)
		return
	}
	if record == nil {
		httputil.HandleError(w, "No slash record for "+offender.Hex()+" at height "+strconv.FormatUint(height, 10), http.StatusNotFound)
		return
	}
	httputil.WriteJson(w, &SlashRecordResponse{Data: SlashRecordFromConsensus(record)})
}

// RecordEpoch stores the validator set of an epoch. Owner only.
func (s *Server) RecordEpoch(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "rpc.RecordEpoch")
	defer span.End()

	epoch, ok := ValidateUint(w, "Epoch", mux.Vars(r)["epoch"])
	if !ok {
		return
	}
	caller, body, err := s.authenticate(ctx, r)
	if err != nil {
		handleErr(w, "Could not authenticate request", err)
		return
	}
	if err := s.cfg.engine.RequireOwner(ctx, caller); err != nil {
		handleErr(w, "Could not record epoch", err)
		return
	}
	req := &RecordEpochRequest{}
	if !decodeBody(w, body, req) {
		return
	}
	signers := make([]common.Address, len(req.Signers))
	for i, signer := range req.Signers {
		if !common.IsHexAddress(signer) {
			httputil.HandleError(w, "Signers["+strconv.Itoa(i)+"] is invalid", http.StatusBadRequest)
			return
		}
		signers[i] = common.HexToAddress(signer)
	}
	checkpoint, err := s.cfg.directory.RecordEpoch(ctx, primitives.Epoch(epoch), signers)
	if err != nil {
		handleErr(w, "Could not record epoch", err)
		return
	}
	httputil.WriteJson(w, EpochCheckpointFromConsensus(checkpoint))
}

// GetSignerProof returns the proof of a validator seat while its epoch is
// still inside the history window.
func (s *Server) GetSignerProof(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	epoch, ok := ValidateUint(w, "Epoch", vars["epoch"])
	if !ok {
		return
	}
	index, ok := ValidateUint(w, "ValidatorIndex", vars["validator_index"])
	if !ok {
		return
	}
	proof, err := s.cfg.directory.SignerProof(r.Context(), primitives.Epoch(epoch), primitives.ValidatorIndex(index))
	if err != nil {
		handleErr(w, "Could not get signer proof", err)
		return
	}
	httputil.WriteJson(w, SignerProofFromConsensus(proof))
}

// GetBalance returns the nonvoting locked gold of an account.
func (s *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := ValidateAddress(w, "Account", mux.Vars(r)["account"])
	if !ok {
		return
	}
	balance, err := s.cfg.balances.NonvotingAccountBalance(r.Context(), account)
	if err != nil {
		handleErr(w, "Could not get balance", err)
		return
	}
	httputil.WriteJson(w, &BalanceResponse{Account: account.Hex(), Balance: u64(uint64(balance))})
}
