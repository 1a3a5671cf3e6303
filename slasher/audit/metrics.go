package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	auditedSlashes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_slashes_total",
		Help: "Number of slash events audited.",
	})
	auditedPenalty = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_penalty_total",
		Help: "Sum of penalties of audited slashes.",
	})
	auditedReward = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_reward_total",
		Help: "Sum of rewards of audited slashes.",
	})
	auditedCommunityFund = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_community_fund_total",
		Help: "Sum of penalties credited to the community fund.",
	})
	lastSlashedHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audit_last_slashed_height",
		Help: "Block height of the most recently audited fault.",
	})
)
