package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/db/kv"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Initialize makes caller the owner and stores the first slashing
// incentives. It can only succeed once for a database.
func (s *Service) Initialize(ctx context.Context, caller common.Address, penalty, reward primitives.Gold) error {
	ctx, span := trace.StartSpan(ctx, "engine.Initialize")
	defer span.End()
	s.lock.Lock()
	defer s.lock.Unlock()

	incentives, err := s.db.InitializeOwner(ctx, caller, penalty, reward)
	if errors.Is(err, kv.ErrOwnerExists) {
		return ErrAlreadyInitialized
	}
	if err != nil {
		return errors.Wrap(err, "could not initialize slasher")
	}
	incentivesVersion.Set(float64(incentives.Version))
	log.WithFields(logrus.Fields{
		"owner":   caller.Hex(),
		"penalty": penalty,
		"reward":  reward,
	}).Info("Initialized slasher")
	return nil
}

// SetSlashingIncentives replaces the penalty and reward. Owner only.
func (s *Service) SetSlashingIncentives(ctx context.Context, caller common.Address, penalty, reward primitives.Gold) error {
	ctx, span := trace.StartSpan(ctx, "engine.SetSlashingIncentives")
	defer span.End()
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	incentives, err := s.db.SaveSlashingIncentives(ctx, penalty, reward)
	if err != nil {
		return errors.Wrap(err, "could not save slashing incentives")
	}
	incentivesVersion.Set(float64(incentives.Version))
	log.WithFields(logrus.Fields{
		"penalty": penalty,
		"reward":  reward,
		"version": incentives.Version,
	}).Info("Updated slashing incentives")
	return nil
}

// SlashingIncentives returns the incentives currently in effect.
func (s *Service) SlashingIncentives(ctx context.Context) (*types.SlashingIncentives, error) {
	ctx, span := trace.StartSpan(ctx, "engine.SlashingIncentives")
	defer span.End()
	incentives, err := s.db.SlashingIncentives(ctx)
	if errors.Is(err, kv.ErrNoIncentives) {
		return nil, ErrNotInitialized
	}
	return incentives, err
}

// Owner returns the current owner.
func (s *Service) Owner(ctx context.Context) (common.Address, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Owner")
	defer span.End()
	owner, ok, err := s.db.Owner(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, ErrNotInitialized
	}
	return owner, nil
}

// TransferOwnership hands the owner role to newOwner. Owner only.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	ctx, span := trace.StartSpan(ctx, "engine.TransferOwnership")
	defer span.End()
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return errors.New("new owner is the zero address")
	}
	if err := s.db.SaveOwner(ctx, newOwner); err != nil {
		return errors.Wrap(err, "could not save owner")
	}
	log.WithFields(logrus.Fields{
		"previousOwner": caller.Hex(),
		"newOwner":      newOwner.Hex(),
	}).Info("Transferred ownership")
	return nil
}

// RequireOwner fails with ErrUnauthorized unless caller is the owner.
func (s *Service) RequireOwner(ctx context.Context, caller common.Address) error {
	return s.requireOwner(ctx, caller)
}

func (s *Service) requireOwner(ctx context.Context, caller common.Address) error {
	owner, err := s.Owner(ctx)
	if err != nil {
		return err
	}
	if owner != caller {
		return errors.Wrapf(ErrUnauthorized, "caller %s", caller.Hex())
	}
	return nil
}
