package params

import (
	"time"
)

// MainnetConfig returns the configuration used on the production network.
func MainnetConfig() *SlasherChainConfig {
	return mainnetSlasherConfig
}

var mainnetSlasherConfig = &SlasherChainConfig{
	ConfigName: "mainnet",

	// 24 hours of 5 second blocks.
	EpochSize:           17280,
	HistoryWindowEpochs: 64,
	MaxValidators:       150,

	// Values in the ledger's atomic unit.
	DefaultSlashingPenalty: 9000000000000000000,
	DefaultSlashingReward:  1000000000000000000,

	CommunityFundAddress: "0x000000000000000000000000000000000000c0de",

	SignerCacheSize:      1024,
	SlasherDBName:        "slasher.db",
	LedgerDBName:         "lockedgold.db",
	BoltTimeout:          1 * time.Second,
	ReadWritePermissions: 0600,
}
