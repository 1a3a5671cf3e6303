package version

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var slasherInfo = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "slasher_version",
	ConstLabels: prometheus.Labels{
		"version":   gitTag,
		"commit":    gitCommit,
		"buildDate": buildDateUnix},
})

func init() {
	slasherInfo.Set(float64(1))
}
