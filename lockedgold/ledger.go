// Package lockedgold is a bolt-backed ledger of nonvoting locked gold
// balances. The slasher moves funds through it when a fault is punished.
package lockedgold

import (
	"context"
	"os"
	"path"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/config/params"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/encoding/bytesutil"
	"github.com/sealwatch/slasher/slasher/oracle"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

var _ = oracle.LockedGoldLedger(&Ledger{})

var (
	balancesBucket = []byte("nonvoting-balances")
	slashesBucket  = []byte("applied-slashes")
)

// Ledger stores nonvoting balances and the slashes applied to them.
type Ledger struct {
	db            *bolt.DB
	databasePath  string
	communityFund common.Address
}

// NewLedger opens the ledger database under dirPath. The part of a
// penalty not paid out as reward is credited to communityFund.
func NewLedger(ctx context.Context, dirPath string, communityFund common.Address) (*Ledger, error) {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return nil, err
	}
	cfg := params.SlasherConfig()
	datafile := path.Join(dirPath, cfg.LedgerDBName)
	boltDB, err := bolt.Open(datafile, cfg.ReadWritePermissions, &bolt.Options{Timeout: cfg.BoltTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("cannot obtain ledger lock, ledger may be in use by another process")
		}
		return nil, err
	}
	if err := boltDB.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{balancesBucket, slashesBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &Ledger{db: boltDB, databasePath: dirPath, communityFund: communityFund}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// DatabasePath at which the ledger writes files.
func (l *Ledger) DatabasePath() string {
	return l.databasePath
}

// ClearDB removes the ledger file.
func (l *Ledger) ClearDB() error {
	if _, err := os.Stat(l.databasePath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path.Join(l.databasePath, params.SlasherConfig().LedgerDBName))
}

// CommunityFund returns the account receiving unrewarded penalties.
func (l *Ledger) CommunityFund() common.Address {
	return l.communityFund
}

// NonvotingAccountBalance returns the nonvoting balance of an account.
func (l *Ledger) NonvotingAccountBalance(ctx context.Context, account common.Address) (primitives.Gold, error) {
	_, span := trace.StartSpan(ctx, "lockedgold.NonvotingAccountBalance")
	defer span.End()
	var balance primitives.Gold
	err := l.db.View(func(tx *bolt.Tx) error {
		balance = balanceFromTx(tx, account)
		return nil
	})
	return balance, err
}

// IncrementNonvotingAccountBalance credits amount to an account.
func (l *Ledger) IncrementNonvotingAccountBalance(ctx context.Context, account common.Address, amount primitives.Gold) error {
	_, span := trace.StartSpan(ctx, "lockedgold.IncrementNonvotingAccountBalance")
	defer span.End()
	return l.db.Update(func(tx *bolt.Tx) error {
		return credit(tx, account, amount)
	})
}

// DecrementNonvotingAccountBalance debits exactly amount from an account. It
// fails with ErrInsufficientBalance rather than going below zero.
func (l *Ledger) DecrementNonvotingAccountBalance(ctx context.Context, account common.Address, amount primitives.Gold) error {
	_, span := trace.StartSpan(ctx, "lockedgold.DecrementNonvotingAccountBalance")
	defer span.End()
	return l.db.Update(func(tx *bolt.Tx) error {
		return debit(tx, account, amount)
	})
}

// Slash takes up to penalty from offender. The amount taken is clamped to
// the offender's balance, the reporter receives up to reward of it and the
// rest goes to the community fund. Repeating a slashID returns the amounts
// and reporter of the first application without moving funds again.
func (l *Ledger) Slash(
	ctx context.Context,
	slashID [32]byte,
	offender common.Address,
	penalty primitives.Gold,
	reporter common.Address,
	reward primitives.Gold,
) (*types.SlashedAmounts, error) {
	_, span := trace.StartSpan(ctx, "lockedgold.Slash")
	defer span.End()
	var applied *types.SlashedAmounts
	replayed := false
	err := l.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(slashesBucket)
		if enc := bkt.Get(slashID[:]); enc != nil {
			applied = &types.SlashedAmounts{}
			replayed = true
			return json.Unmarshal(enc, applied)
		}
		slashed := primitives.MinGold(penalty, balanceFromTx(tx, offender))
		paid := primitives.MinGold(reward, slashed)
		amounts := &types.SlashedAmounts{
			Reporter:      reporter,
			Penalty:       slashed,
			Reward:        paid,
			CommunityFund: slashed - paid,
		}
		if err := debit(tx, offender, amounts.Penalty); err != nil {
			return err
		}
		if err := credit(tx, reporter, amounts.Reward); err != nil {
			return err
		}
		if err := credit(tx, l.communityFund, amounts.CommunityFund); err != nil {
			return err
		}
		enc, err := json.Marshal(amounts)
		if err != nil {
			return err
		}
		if err := bkt.Put(bytesutil.SafeCopyBytes(slashID[:]), enc); err != nil {
			return err
		}
		applied = amounts
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not slash %s", offender.Hex())
	}
	if replayed {
		replayedSlashes.Inc()
		return applied, nil
	}
	slashedGold.Add(float64(applied.Penalty))
	rewardedGold.Add(float64(applied.Reward))
	log.WithFields(logrus.Fields{
		"offender":      offender.Hex(),
		"reporter":      reporter.Hex(),
		"penalty":       applied.Penalty,
		"reward":        applied.Reward,
		"communityFund": applied.CommunityFund,
	}).Debug("Slashed locked gold")
	return applied, nil
}

func balanceFromTx(tx *bolt.Tx, account common.Address) primitives.Gold {
	return primitives.Gold(bytesutil.BytesToUint64BigEndian(tx.Bucket(balancesBucket).Get(account.Bytes())))
}

func putBalance(tx *bolt.Tx, account common.Address, balance primitives.Gold) error {
	return tx.Bucket(balancesBucket).Put(bytesutil.SafeCopyBytes(account.Bytes()), bytesutil.Uint64ToBytesBigEndian(uint64(balance)))
}

func credit(tx *bolt.Tx, account common.Address, amount primitives.Gold) error {
	if amount == 0 {
		return nil
	}
	balance, err := balanceFromTx(tx, account).SafeAdd(amount)
	if err != nil {
		return errors.Wrapf(err, "could not credit %s", account.Hex())
	}
	return putBalance(tx, account, balance)
}

func debit(tx *bolt.Tx, account common.Address, amount primitives.Gold) error {
	if amount == 0 {
		return nil
	}
	balance, err := balanceFromTx(tx, account).SafeSub(amount)
	if err != nil {
		return errors.Wrapf(ErrInsufficientBalance, "account %s cannot cover %d", account.Hex(), amount)
	}
	return putBalance(tx, account, balance)
}
