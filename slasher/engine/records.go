package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/types"
	"go.opencensus.io/trace"
)

// IsSlashed reports whether offender was punished for a fault at height.
func (s *Service) IsSlashed(ctx context.Context, offender common.Address, height primitives.BlockNumber) (bool, error) {
	ctx, span := trace.StartSpan(ctx, "engine.IsSlashed")
	defer span.End()
	return s.db.HasSlashRecord(ctx, offender, height)
}

// SlashRecord returns the record of offender at height, or nil.
func (s *Service) SlashRecord(ctx context.Context, offender common.Address, height primitives.BlockNumber) (*types.SlashRecord, error) {
	ctx, span := trace.StartSpan(ctx, "engine.SlashRecord")
	defer span.End()
	return s.db.SlashRecord(ctx, offender, height)
}

// SlashRecordsForOffender returns all records of offender ordered by height.
func (s *Service) SlashRecordsForOffender(ctx context.Context, offender common.Address) ([]*types.SlashRecord, error) {
	ctx, span := trace.StartSpan(ctx, "engine.SlashRecordsForOffender")
	defer span.End()
	return s.db.SlashRecordsForOffender(ctx, offender)
}
