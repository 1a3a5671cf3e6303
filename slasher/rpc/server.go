// Package rpc serves the slashing engine over a JSON HTTP API.
package rpc

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/kevinms/leakybucket-go"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/runtime"
	"github.com/sealwatch/slasher/slasher/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ runtime.Service = (*Server)(nil)

// Engine is the slashing engine behind the API.
type Engine interface {
	Initialize(ctx context.Context, caller common.Address, penalty, reward primitives.Gold) error
	SetSlashingIncentives(ctx context.Context, caller common.Address, penalty, reward primitives.Gold) error
	SlashingIncentives(ctx context.Context) (*types.SlashingIncentives, error)
	Owner(ctx context.Context) (common.Address, error)
	TransferOwnership(ctx context.Context, caller, newOwner common.Address) error
	RequireOwner(ctx context.Context, caller common.Address) error
	Slash(ctx context.Context, reporter common.Address, evidence *types.FaultEvidence) (*types.SlashOutcome, error)
	SlashRecord(ctx context.Context, offender common.Address, height primitives.BlockNumber) (*types.SlashRecord, error)
	SlashRecordsForOffender(ctx context.Context, offender common.Address) ([]*types.SlashRecord, error)
}

// EpochDirectory records validator sets and hands out signer proofs.
type EpochDirectory interface {
	RecordEpoch(ctx context.Context, epoch primitives.Epoch, signers []common.Address) (*types.EpochCheckpoint, error)
	SignerProof(ctx context.Context, epoch primitives.Epoch, index primitives.ValidatorIndex) (*types.SignerProof, error)
}

// NonceStore tracks the last request nonce accepted from each caller.
type NonceStore interface {
	ConsumeNonce(ctx context.Context, caller common.Address, nonce uint64) error
}

// BalanceReader reads nonvoting locked gold balances.
type BalanceReader interface {
	NonvotingAccountBalance(ctx context.Context, account common.Address) (primitives.Gold, error)
}

type config struct {
	httpAddr       string
	engine         Engine
	directory      EpochDirectory
	balances       BalanceReader
	nonces         NonceStore
	timeout        time.Duration
	allowedOrigins []string
	slashRate      float64
	slashBurst     int64
}

// Server serves HTTP JSON traffic for the slasher.
type Server struct {
	cfg          *config
	router       *mux.Router
	handler      http.Handler
	limiter      *leakybucket.Collector
	server       *http.Server
	cancel       context.CancelFunc
	ctx          context.Context
	startFailure error
}

// New returns a new instance of the Server.
func New(ctx context.Context, opts ...Option) (*Server, error) {
	s := &Server{
		ctx: ctx,
		cfg: &config{timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	switch {
	case s.cfg.engine == nil:
		return nil, errors.New("engine option not configured")
	case s.cfg.directory == nil:
		return nil, errors.New("directory option not configured")
	case s.cfg.balances == nil:
		return nil, errors.New("balances option not configured")
	case s.cfg.nonces == nil:
		return nil, errors.New("nonce store option not configured")
	}
	if s.cfg.slashRate > 0 {
		s.limiter = leakybucket.NewCollector(s.cfg.slashRate, s.cfg.slashBurst, true /* deleteEmptyBuckets */)
	}
	s.router = mux.NewRouter()
	s.registerRoutes(s.router)
	s.router.Use(requestIDMiddleware)
	s.handler = s.router
	if len(s.cfg.allowedOrigins) > 0 {
		s.handler = s.corsMiddleware(s.router)
	}
	s.server = &http.Server{
		Addr:              s.cfg.httpAddr,
		Handler:           http.TimeoutHandler(s.handler, s.cfg.timeout, "request timed out"),
		ReadHeaderTimeout: time.Second,
	}
	return s, nil
}

func (s *Server) registerRoutes(r *mux.Router) {
	v1 := r.PathPrefix("/slasher/v1").Subrouter()
	v1.HandleFunc("/initialize", s.Initialize).Methods(http.MethodPost)
	v1.HandleFunc("/incentives", s.GetSlashingIncentives).Methods(http.MethodGet)
	v1.HandleFunc("/incentives", s.SetSlashingIncentives).Methods(http.MethodPut)
	v1.HandleFunc("/owner", s.GetOwner).Methods(http.MethodGet)
	v1.HandleFunc("/owner", s.TransferOwnership).Methods(http.MethodPut)
	v1.HandleFunc("/slash", s.rateLimit(s.Slash)).Methods(http.MethodPost)
	v1.HandleFunc("/slashings/{offender}", s.GetSlashRecords).Methods(http.MethodGet)
	v1.HandleFunc("/slashings/{offender}/{height}", s.GetSlashRecord).Methods(http.MethodGet)
	v1.HandleFunc("/epochs/{epoch}", s.RecordEpoch).Methods(http.MethodPost)
	v1.HandleFunc("/epochs/{epoch}/proofs/{validator_index}", s.GetSignerProof).Methods(http.MethodGet)
	v1.HandleFunc("/balances/{account}", s.GetBalance).Methods(http.MethodGet)
}

// Handler returns the API routes with their middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start the http rest service.
func (s *Server) Start() {
	_, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel

	go func() {
		log.WithField("address", s.cfg.httpAddr).Info("Starting HTTP server")
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start HTTP server")
			s.startFailure = err
			return
		}
	}()
}

// Status of the HTTP server. Returns an error if this service is unhealthy.
func (s *Server) Status() error {
	if s.startFailure != nil {
		return s.startFailure
	}
	return nil
}

// Stop the HTTP server with a graceful shutdown.
func (s *Server) Stop() error {
	if s.server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(s.ctx, 2*time.Second)
		defer shutdownCancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warn("Existing connections terminated")
			} else {
				log.WithError(err).Error("Failed to gracefully shut down server")
			}
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
