// Package engine verifies double signing fault proofs and punishes each
// proven fault exactly once through the locked gold ledger.
package engine

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/slasher/db"
	"github.com/sealwatch/slasher/slasher/oracle"
	"github.com/sealwatch/slasher/slasher/types"
)

// Config binds the engine to its storage and collaborators.
type Config struct {
	DB           db.Database
	HeaderOracle oracle.BlockHeaderOracle
	SealOracle   oracle.SealBitmapOracle
	Directory    oracle.EpochValidatorDirectory
	Ledger       oracle.LockedGoldLedger
	EpochSize    uint64
}

// Service is the slashing engine. State-changing calls are serialized.
type Service struct {
	ctx          context.Context
	cancel       context.CancelFunc
	db           db.Database
	headerOracle oracle.BlockHeaderOracle
	sealOracle   oracle.SealBitmapOracle
	directory    oracle.EpochValidatorDirectory
	ledger       oracle.LockedGoldLedger
	epochSize    uint64
	lock         sync.Mutex
	slashFeed    event.Feed
}

// New creates an engine from its config.
func New(ctx context.Context, cfg *Config) (*Service, error) {
	switch {
	case cfg.DB == nil:
		return nil, errors.New("nil database")
	case cfg.HeaderOracle == nil:
		return nil, errors.New("nil block header oracle")
	case cfg.SealOracle == nil:
		return nil, errors.New("nil seal bitmap oracle")
	case cfg.Directory == nil:
		return nil, errors.New("nil epoch validator directory")
	case cfg.Ledger == nil:
		return nil, errors.New("nil locked gold ledger")
	case cfg.EpochSize == 0:
		return nil, errors.New("epoch size must be greater than zero")
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Service{
		ctx:          ctx,
		cancel:       cancel,
		db:           cfg.DB,
		headerOracle: cfg.HeaderOracle,
		sealOracle:   cfg.SealOracle,
		directory:    cfg.Directory,
		ledger:       cfg.Ledger,
		epochSize:    cfg.EpochSize,
	}, nil
}

// Start the engine.
func (s *Service) Start() {
	incentives, err := s.SlashingIncentives(s.ctx)
	if err != nil {
		log.WithError(err).Warn("Slasher is not initialized yet")
		return
	}
	incentivesVersion.Set(float64(incentives.Version))
	log.WithField("epochSize", s.epochSize).Info("Slashing engine started")
}

// Stop the engine.
func (s *Service) Stop() error {
	s.cancel()
	return nil
}

// Status of the service.
func (s *Service) Status() error {
	return nil
}

// EpochSize the engine binds heights to epochs with.
func (s *Service) EpochSize() uint64 {
	return s.epochSize
}

// SubscribeSlashEvents delivers an event for every committed slash.
func (s *Service) SubscribeSlashEvents(ch chan<- *types.SlashEvent) event.Subscription {
	return s.slashFeed.Subscribe(ch)
}
