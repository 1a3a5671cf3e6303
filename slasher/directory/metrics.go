package directory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordedEpochs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "directory_recorded_epochs_total",
		Help: "The number of epoch signer sets recorded.",
	})
	signerCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "directory_signer_cache_hit",
		Help: "The number of signer set requests served from the cache.",
	})
	signerCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "directory_signer_cache_miss",
		Help: "The number of signer set requests read from the database.",
	})
	invalidProofs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "directory_invalid_signer_proofs_total",
		Help: "The number of signer proofs that failed verification.",
	})
)
