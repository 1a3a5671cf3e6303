package engine

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/encoding/bytesutil"
	"github.com/sealwatch/slasher/slasher/db/kv"
	"github.com/sealwatch/slasher/slasher/oracle"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Slash verifies that evidence.Offender, sitting at evidence.ValidatorIndex,
// sealed two distinct headers at the same height and punishes the fault.
// Verification happens before any state is touched. The slash record, the
// penalty and the reward are then committed together; a fault already
// recorded for (offender, height) fails with ErrAlreadySlashed.
func (s *Service) Slash(ctx context.Context, reporter common.Address, evidence *types.FaultEvidence) (*types.SlashOutcome, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Slash")
	defer span.End()
	if evidence == nil {
		return nil, errors.New("nil fault evidence")
	}

	outcome, err := s.slash(ctx, reporter, evidence)
	if err != nil {
		reason := rejectionReason(err)
		rejectedEvidence.WithLabelValues(reason).Inc()
		log.WithError(err).WithFields(logrus.Fields{
			"offender":       evidence.Offender.Hex(),
			"validatorIndex": evidence.ValidatorIndex,
			"reporter":       reporter.Hex(),
			"reason":         reason,
		}).Debug("Rejected slash request")
		return nil, err
	}

	record := outcome.Record
	slashesTotal.Inc()
	slashedGold.Add(float64(record.Penalty))
	log.WithFields(logrus.Fields{
		"offender":       record.Offender.Hex(),
		"validatorIndex": record.ValidatorIndex,
		"epoch":          record.Epoch,
		"height":         record.Height,
		"headerA":        record.HeaderAHash.Hex(),
		"headerB":        record.HeaderBHash.Hex(),
		"penalty":        record.Penalty,
		"reward":         record.Reward,
		"reporter":       record.Reporter.Hex(),
	}).Info("Slashed double signing validator")
	s.slashFeed.Send(&types.SlashEvent{Record: record})
	return outcome, nil
}

func (s *Service) slash(ctx context.Context, reporter common.Address, evidence *types.FaultEvidence) (*types.SlashOutcome, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	height, err := s.verifyHeights(ctx, evidence)
	if err != nil {
		return nil, err
	}
	if !evidence.Distinct() {
		return nil, ErrIdenticalEvidence
	}
	epoch := height.ToEpoch(s.epochSize)
	if err := s.verifySeals(ctx, evidence); err != nil {
		return nil, err
	}
	if err := s.verifySigner(ctx, epoch, evidence); err != nil {
		return nil, err
	}

	var incentives *types.SlashingIncentives
	slashID := crypto.Keccak256Hash(replayKey(evidence.Offender, height))
	record, err := s.db.CommitSlashing(ctx, evidence.Offender, height, func(current *types.SlashingIncentives) (*types.SlashRecord, error) {
		incentives = current
		amounts, err := s.ledger.Slash(ctx, slashID, evidence.Offender, current.Penalty, reporter, current.Reward)
		if err != nil {
			return nil, errors.Wrap(err, "could not apply penalty")
		}
		return &types.SlashRecord{
			Offender:          evidence.Offender,
			ValidatorIndex:    evidence.ValidatorIndex,
			Epoch:             epoch,
			Height:            height,
			HeaderAHash:       types.HeaderHash(evidence.HeaderA),
			HeaderBHash:       types.HeaderHash(evidence.HeaderB),
			Reporter:          amounts.Reporter,
			Penalty:           amounts.Penalty,
			Reward:            amounts.Reward,
			CommunityFund:     amounts.CommunityFund,
			IncentivesVersion: current.Version,
			Timestamp:         time.Now().Unix(),
		}, nil
	})
	switch {
	case errors.Is(err, kv.ErrSlashRecordExists):
		return nil, errors.Wrapf(ErrAlreadySlashed, "offender %s at height %d", evidence.Offender.Hex(), height)
	case errors.Is(err, kv.ErrNoIncentives):
		return nil, ErrNotInitialized
	case err != nil:
		return nil, err
	}
	return &types.SlashOutcome{Record: record, Incentives: incentives.Copy()}, nil
}

func (s *Service) verifyHeights(ctx context.Context, evidence *types.FaultEvidence) (primitives.BlockNumber, error) {
	heightA, err := s.headerOracle.BlockNumber(ctx, evidence.HeaderA)
	if err != nil {
		return 0, errors.Wrap(err, "could not read number of first header")
	}
	heightB, err := s.headerOracle.BlockNumber(ctx, evidence.HeaderB)
	if err != nil {
		return 0, errors.Wrap(err, "could not read number of second header")
	}
	if heightA != heightB {
		return 0, errors.Wrapf(ErrHeightMismatch, "%d != %d", heightA, heightB)
	}
	return heightA, nil
}

func (s *Service) verifySeals(ctx context.Context, evidence *types.FaultEvidence) error {
	idx := uint64(evidence.ValidatorIndex)
	for _, header := range [][]byte{evidence.HeaderA, evidence.HeaderB} {
		bitmap, err := s.sealOracle.VerifiedSealBitmap(ctx, header)
		if err != nil {
			return errors.Wrap(err, "could not read seal bitmap")
		}
		// BitAt is false for indices beyond the bitmap.
		if !bitmap.BitAt(idx) {
			return errors.Wrapf(ErrNotSigner, "validator index %d not set in seal of %s", idx, types.HeaderHash(header).Hex())
		}
	}
	return nil
}

func (s *Service) verifySigner(ctx context.Context, epoch primitives.Epoch, evidence *types.FaultEvidence) error {
	signer, err := s.directory.SignerAt(ctx, epoch, evidence.ValidatorIndex, evidence.Proof)
	if errors.Is(err, oracle.ErrNoSigner) {
		return errors.Wrap(ErrWrongSigner, err.Error())
	}
	if err != nil {
		return errors.Wrap(err, "could not resolve signer")
	}
	if signer != evidence.Offender {
		return errors.Wrapf(ErrWrongSigner, "signer at index %d of epoch %d is %s, not %s",
			evidence.ValidatorIndex, epoch, signer.Hex(), evidence.Offender.Hex())
	}
	return nil
}

// replayKey identifies one double signing fault.
func replayKey(offender common.Address, height primitives.BlockNumber) []byte {
	return append(bytesutil.SafeCopyBytes(offender.Bytes()), bytesutil.Uint64ToBytesBigEndian(uint64(height))...)
}
