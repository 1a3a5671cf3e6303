// Package testing spins up a real bolt-backed ledger for unit tests.
package testing

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sealwatch/slasher/lockedgold"
)

// CommunityFund is the fund account of ledgers created by SetupLedger.
var CommunityFund = common.HexToAddress("0x000000000000000000000000000000000000c0de")

// SetupLedger instantiates a ledger under a temporary directory.
func SetupLedger(t testing.TB) *lockedgold.Ledger {
	l, err := lockedgold.NewLedger(context.Background(), t.TempDir(), CommunityFund)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Fatalf("failed to close ledger: %v", err)
		}
	})
	return l
}
