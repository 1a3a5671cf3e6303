package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rateLimitedRequests = promauto.NewCounter(prometheus.CounterOpts{
	Name: "slasher_rpc_rate_limited_requests_total",
	Help: "Slash requests refused because the remote host exceeded its rate limit.",
})
