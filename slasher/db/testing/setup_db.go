// Package testing allows for spinning up a real bolt-db
// instance for unit tests throughout the slasher.
package testing

import (
	"context"
	"testing"

	"github.com/sealwatch/slasher/slasher/db/iface"
	"github.com/sealwatch/slasher/slasher/db/kv"
)

// SetupDB instantiates and returns a slasher database backed by a key value store.
func SetupDB(t testing.TB) iface.Database {
	s, err := kv.NewKVStore(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
	})
	return s
}
