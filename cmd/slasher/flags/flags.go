// Package flags contains all configuration runtime flags for
// the slasher node.
package flags

import (
	"time"

	"github.com/urfave/cli/v2"
)

var (
	// Networking flags.

	// RPCHost defines the host on which the HTTP API should listen.
	RPCHost = &cli.StringFlag{
		Name:  "rpc-host",
		Usage: "Host on which the slasher HTTP API should listen",
		Value: "127.0.0.1",
	}
	// RPCPort defines the port of the slasher HTTP API.
	RPCPort = &cli.IntFlag{
		Name:  "rpc-port",
		Usage: "Port exposed by the slasher HTTP API",
		Value: 4002,
	}
	// RPCTimeoutFlag bounds the time spent serving a single request.
	RPCTimeoutFlag = &cli.DurationFlag{
		Name:  "rpc-timeout",
		Usage: "Maximum time spent serving a single HTTP API request, eg 10s",
		Value: 10 * time.Second,
	}
	// RPCAllowedOriginsFlag enables CORS on the HTTP API for the given origins.
	RPCAllowedOriginsFlag = &cli.StringSliceFlag{
		Name:  "rpc-allowed-origins",
		Usage: "Comma separated list of origins allowed to call the HTTP API from a browser",
	}
	// SlashRateLimitFlag limits the slash requests a single host may submit per second.
	SlashRateLimitFlag = &cli.Float64Flag{
		Name:  "slash-rate-limit",
		Usage: "Slash requests per second accepted from a single host. 0 disables the limit",
		Value: 0,
	}
	// SlashRateBurstFlag is the number of slash requests a host may burst above the rate limit.
	SlashRateBurstFlag = &cli.IntFlag{
		Name:  "slash-rate-burst",
		Usage: "Slash requests a single host may submit in a burst when rate limited",
		Value: 8,
	}
	// MonitoringPortFlag defines the http port used to serve prometheus metrics.
	MonitoringPortFlag = &cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port used to listening and respond metrics for prometheus.",
		Value: 8082,
	}

	// Audit flags.

	// AuditFileFlag names the JSON lines file every applied slash is appended to.
	AuditFileFlag = &cli.StringFlag{
		Name:  "audit-file",
		Usage: "File every applied slash is appended to as a JSON line. Disabled when empty",
	}
	// AuditRecentSizeFlag is how many recent slashes the audit service keeps in memory.
	AuditRecentSizeFlag = &cli.IntFlag{
		Name:  "audit-recent-size",
		Usage: "Number of recent slashes kept in memory by the audit service",
		Value: 16,
	}
)
