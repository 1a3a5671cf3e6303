package engine

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sealwatch/slasher/slasher/oracle"
)

var (
	slashesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasher_slashes_total",
		Help: "Number of double signing faults punished.",
	})
	rejectedEvidence = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slasher_rejected_evidence_total",
		Help: "Number of rejected slash requests by reason.",
	}, []string{"reason"})
	slashedGold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasher_penalty_applied_total",
		Help: "Total penalty applied to offenders.",
	})
	incentivesVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slasher_incentives_version",
		Help: "Version of the slashing incentives in effect.",
	})
)

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrHeightMismatch):
		return "height_mismatch"
	case errors.Is(err, ErrIdenticalEvidence):
		return "identical_evidence"
	case errors.Is(err, ErrNotSigner):
		return "not_signer"
	case errors.Is(err, ErrWrongSigner):
		return "wrong_signer"
	case errors.Is(err, ErrAlreadySlashed):
		return "already_slashed"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, oracle.ErrUnknownEpoch):
		return "unknown_epoch"
	case errors.Is(err, oracle.ErrMalformedHeader):
		return "malformed_header"
	default:
		return "internal"
	}
}
