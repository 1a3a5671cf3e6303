// Package directory resolves the account sitting at a validator index of an
// epoch. Full signer sets are kept for a window of recent epochs; older
// epochs are answered from Merkle proofs against per-epoch checkpoints.
package directory

import (
	"context"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/db"
	"github.com/sealwatch/slasher/slasher/oracle"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
	"golang.org/x/sync/singleflight"
)

var (
	_ = oracle.EpochValidatorDirectory(&Directory{})
	_ = oracle.ValidatorCounter(&Directory{})
)

// Config for the directory.
type Config struct {
	DB                  db.Database
	HistoryWindowEpochs uint64
	MaxValidators       uint64
	CacheSize           int
}

// Directory is a bolt-backed EpochValidatorDirectory.
type Directory struct {
	db            db.Database
	window        uint64
	maxValidators uint64
	cache         *lru.Cache
	loads         singleflight.Group
	lock          sync.Mutex
}

// New creates a directory over the slasher database.
func New(cfg *Config) (*Directory, error) {
	if cfg.DB == nil {
		return nil, errors.New("nil database")
	}
	if cfg.HistoryWindowEpochs == 0 {
		return nil, errors.New("history window must be at least one epoch")
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "could not create signer cache")
	}
	return &Directory{
		db:            cfg.DB,
		window:        cfg.HistoryWindowEpochs,
		maxValidators: cfg.MaxValidators,
		cache:         cache,
	}, nil
}

// RecordEpoch stores the signer set of an epoch and its checkpoint, then
// prunes full sets that fell out of the history window. Epochs must be
// recorded in increasing order.
func (d *Directory) RecordEpoch(ctx context.Context, epoch primitives.Epoch, signers []common.Address) (*types.EpochCheckpoint, error) {
	ctx, span := trace.StartSpan(ctx, "directory.RecordEpoch")
	defer span.End()
	if len(signers) == 0 {
		return nil, errors.New("empty signer set")
	}
	if d.maxValidators > 0 && uint64(len(signers)) > d.maxValidators {
		return nil, errors.Errorf("signer set of %d exceeds maximum of %d validators", len(signers), d.maxValidators)
	}
	d.lock.Lock()
	defer d.lock.Unlock()

	checkpoint, err := d.db.SaveEpochSigners(ctx, epoch, signers, SignersRoot(signers))
	if err != nil {
		return nil, errors.Wrapf(err, "could not record epoch %d", epoch)
	}
	keepFrom := epoch.Sub(d.window - 1)
	pruned, err := d.db.PruneEpochSigners(ctx, keepFrom)
	if err != nil {
		return nil, errors.Wrap(err, "could not prune signer sets")
	}
	if pruned > 0 {
		d.cache.Purge()
	}
	recordedEpochs.Inc()
	log.WithFields(logrus.Fields{
		"epoch":         epoch,
		"historyIndex":  checkpoint.HistoryIndex,
		"numValidators": checkpoint.NumValidators,
		"root":          checkpoint.SignersRoot.Hex(),
		"pruned":        pruned,
	}).Info("Recorded epoch signers")
	return checkpoint, nil
}

// SignerAt returns the signer at index during epoch. Epochs inside the
// history window are answered directly and proof is ignored. Older epochs
// need a proof against the checkpoint at proof.HistoryIndex: Fragments[0] is
// the 20 byte signer and the remaining fragments are the 32 byte siblings of
// its leaf, bottom-up.
func (d *Directory) SignerAt(
	ctx context.Context, epoch primitives.Epoch, index primitives.ValidatorIndex, proof *types.SignerProof,
) (common.Address, error) {
	ctx, span := trace.StartSpan(ctx, "directory.SignerAt")
	defer span.End()
	signers, err := d.signers(ctx, epoch)
	if err != nil {
		return common.Address{}, err
	}
	if signers != nil {
		if uint64(index) >= uint64(len(signers)) {
			return common.Address{}, errors.Wrapf(oracle.ErrNoSigner, "index %d of %d validators in epoch %d", index, len(signers), epoch)
		}
		return signers[index], nil
	}
	if proof.Empty() {
		return common.Address{}, errors.Wrapf(oracle.ErrUnknownEpoch, "epoch %d is outside the history window and no proof was given", epoch)
	}
	return d.signerFromProof(ctx, epoch, index, proof)
}

// NumValidators returns the size of the validator set of a recorded epoch.
func (d *Directory) NumValidators(ctx context.Context, epoch primitives.Epoch) (uint64, error) {
	ctx, span := trace.StartSpan(ctx, "directory.NumValidators")
	defer span.End()
	signers, err := d.signers(ctx, epoch)
	if err != nil {
		return 0, err
	}
	if signers != nil {
		return uint64(len(signers)), nil
	}
	checkpoint, err := d.db.CheckpointForEpoch(ctx, epoch)
	if err != nil {
		return 0, err
	}
	if checkpoint == nil {
		return 0, errors.Wrapf(oracle.ErrUnknownEpoch, "epoch %d", epoch)
	}
	return checkpoint.NumValidators, nil
}

// SignerProof builds the proof for a seat of an epoch still inside the
// history window, so it can be kept and presented after the set is pruned.
func (d *Directory) SignerProof(ctx context.Context, epoch primitives.Epoch, index primitives.ValidatorIndex) (*types.SignerProof, error) {
	ctx, span := trace.StartSpan(ctx, "directory.SignerProof")
	defer span.End()
	signers, err := d.signers(ctx, epoch)
	if err != nil {
		return nil, err
	}
	if signers == nil {
		return nil, errors.Wrapf(oracle.ErrUnknownEpoch, "epoch %d is outside the history window", epoch)
	}
	checkpoint, err := d.db.CheckpointForEpoch(ctx, epoch)
	if err != nil {
		return nil, err
	}
	if checkpoint == nil {
		return nil, errors.Wrapf(oracle.ErrUnknownEpoch, "epoch %d has no checkpoint", epoch)
	}
	branch, err := SignerBranch(signers, uint64(index))
	if err != nil {
		return nil, errors.Wrap(oracle.ErrNoSigner, err.Error())
	}
	fragments := make([][]byte, 0, len(branch)+1)
	fragments = append(fragments, signers[index].Bytes())
	for _, sibling := range branch {
		fragments = append(fragments, sibling.Bytes())
	}
	return &types.SignerProof{HistoryIndex: checkpoint.HistoryIndex, Fragments: fragments}, nil
}

func (d *Directory) signers(ctx context.Context, epoch primitives.Epoch) ([]common.Address, error) {
	if cached, ok := d.cache.Get(epoch); ok {
		signerCacheHits.Inc()
		return cached.([]common.Address), nil
	}
	signerCacheMisses.Inc()
	// Concurrent misses for one epoch share a single read.
	v, err, _ := d.loads.Do(strconv.FormatUint(uint64(epoch), 10), func() (interface{}, error) {
		signers, err := d.db.EpochSigners(ctx, epoch)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read signers of epoch %d", epoch)
		}
		if signers != nil {
			d.cache.Add(epoch, signers)
		}
		return signers, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]common.Address), nil
}

func (d *Directory) signerFromProof(
	ctx context.Context, epoch primitives.Epoch, index primitives.ValidatorIndex, proof *types.SignerProof,
) (common.Address, error) {
	checkpoint, err := d.db.Checkpoint(ctx, proof.HistoryIndex)
	if err != nil {
		return common.Address{}, err
	}
	if checkpoint == nil {
		return common.Address{}, errors.Wrapf(oracle.ErrUnknownEpoch, "no checkpoint at history index %d", proof.HistoryIndex)
	}
	if checkpoint.Epoch != epoch {
		return common.Address{}, errors.Wrapf(oracle.ErrUnknownEpoch,
			"checkpoint at history index %d is for epoch %d, not %d", proof.HistoryIndex, checkpoint.Epoch, epoch)
	}
	if uint64(index) >= checkpoint.NumValidators {
		return common.Address{}, errors.Wrapf(oracle.ErrNoSigner, "index %d of %d validators in epoch %d", index, checkpoint.NumValidators, epoch)
	}
	if len(proof.Fragments[0]) != common.AddressLength {
		return common.Address{}, errors.Wrapf(oracle.ErrUnknownEpoch, "signer fragment has %d bytes", len(proof.Fragments[0]))
	}
	signer := common.BytesToAddress(proof.Fragments[0])
	branch := make([]common.Hash, 0, len(proof.Fragments)-1)
	for i, f := range proof.Fragments[1:] {
		if len(f) != common.HashLength {
			return common.Address{}, errors.Wrapf(oracle.ErrUnknownEpoch, "branch fragment %d has %d bytes", i, len(f))
		}
		branch = append(branch, common.BytesToHash(f))
	}
	if !VerifySignerBranch(checkpoint.SignersRoot, signer, uint64(index), branch, checkpoint.NumValidators) {
		invalidProofs.Inc()
		return common.Address{}, errors.Wrapf(oracle.ErrUnknownEpoch, "invalid signer proof for epoch %d", epoch)
	}
	return signer, nil
}
