package rpc

import (
	"time"

	"github.com/pkg/errors"
)

// Option for configuring the http-rest server.
type Option func(s *Server) error

// WithHTTPAddr sets the listen address of the server.
func WithHTTPAddr(addr string) Option {
	return func(s *Server) error {
		s.cfg.httpAddr = addr
		return nil
	}
}

// WithEngine sets the slashing engine behind the write endpoints.
func WithEngine(e Engine) Option {
	return func(s *Server) error {
		s.cfg.engine = e
		return nil
	}
}

// WithDirectory sets the epoch directory used for reads and RecordEpoch.
func WithDirectory(d EpochDirectory) Option {
	return func(s *Server) error {
		s.cfg.directory = d
		return nil
	}
}

// WithBalances sets the ledger queried by the balance endpoint.
func WithBalances(b BalanceReader) Option {
	return func(s *Server) error {
		s.cfg.balances = b
		return nil
	}
}

// WithNonces sets the store that rejects replayed signed requests.
func WithNonces(n NonceStore) Option {
	return func(s *Server) error {
		s.cfg.nonces = n
		return nil
	}
}

// WithTimeout bounds how long a single request may take.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return errors.New("timeout must be positive")
		}
		s.cfg.timeout = timeout
		return nil
	}
}

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) error {
		s.cfg.allowedOrigins = origins
		return nil
	}
}

// WithSlashRateLimit limits slash requests per remote host to rate per
// second with bursts of up to burst requests. A zero rate disables the limit.
func WithSlashRateLimit(rate float64, burst int64) Option {
	return func(s *Server) error {
		if rate < 0 {
			return errors.New("rate limit cannot be negative")
		}
		if rate > 0 && burst <= 0 {
			return errors.New("rate limit burst must be positive")
		}
		s.cfg.slashRate = rate
		s.cfg.slashBurst = burst
		return nil
	}
}
