package lockedgold

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	slashedGold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lockedgold_slashed_total",
		Help: "Total amount of locked gold taken from offenders.",
	})
	rewardedGold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lockedgold_rewarded_total",
		Help: "Total amount of slashed gold paid to reporters.",
	})
	replayedSlashes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lockedgold_replayed_slashes_total",
		Help: "Number of slash requests answered from an already applied slash.",
	})
)
