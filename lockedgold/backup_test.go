package lockedgold_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/lockedgold"
	ledgertest "github.com/sealwatch/slasher/lockedgold/testing"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
)

func TestLedger_Backup(t *testing.T) {
	l := ledgertest.SetupLedger(t)
	ctx := context.Background()
	require.NoError(t, l.IncrementNonvotingAccountBalance(ctx, offender, 50000))

	out := t.TempDir()
	require.NoError(t, l.Backup(ctx, out))
	files, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Equal(t, 1, len(files), "No backups created")

	// The backup is a ledger of its own.
	restoreDir := t.TempDir()
	content, err := os.ReadFile(filepath.Join(out, files[0].Name()))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(restoreDir, "lockedgold.db"), content, 0600))
	restored, err := lockedgold.NewLedger(ctx, restoreDir, ledgertest.CommunityFund)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, restored.Close())
	}()
	assert.Equal(t, primitives.Gold(50000), balance(t, restored, offender))
}

func TestLedger_Collector(t *testing.T) {
	l := ledgertest.SetupLedger(t)
	require.NotNil(t, l.Collector())
}
