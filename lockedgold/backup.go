package lockedgold

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	prombbolt "github.com/prysmaticlabs/prombbolt"
	"github.com/sealwatch/slasher/config/params"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

const backupsDirectoryName = "backups"

// Backup writes a consistent copy of the ledger to outputDir, or to the
// backups directory next to the ledger when outputDir is empty.
// Example for backup: $DATADIR/backups/lockedgold_10291092.backup
func (l *Ledger) Backup(ctx context.Context, outputDir string) error {
	_, span := trace.StartSpan(ctx, "Ledger.Backup")
	defer span.End()

	backupsDir := outputDir
	if backupsDir == "" {
		backupsDir = path.Join(l.databasePath, backupsDirectoryName)
	}
	if err := os.MkdirAll(backupsDir, 0700); err != nil {
		return errors.Wrap(err, "could not create backups directory")
	}
	backupPath := path.Join(backupsDir, fmt.Sprintf("lockedgold_%d.backup", time.Now().UnixNano()))
	return l.db.View(func(tx *bolt.Tx) error {
		log.WithField("backup", backupPath).WithField("size", humanize.Bytes(uint64(tx.Size()))).Info("Writing backup ledger")
		return tx.CopyFile(backupPath, params.SlasherConfig().ReadWritePermissions)
	})
}

// Collector exports bolt statistics of the ledger database.
func (l *Ledger) Collector() prometheus.Collector {
	return prombbolt.New("lockedgoldDB", l.db)
}
