// Package params defines the tunable constants of the slasher: the epoch
// geometry used to bind block heights to validator sets, default incentives
// and storage settings.
package params

import (
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mohae/deepcopy"
)

// SlasherChainConfig contains the constants the slasher is configured with.
type SlasherChainConfig struct {
	ConfigName string `yaml:"CONFIG_NAME"`

	// Epoch geometry.
	EpochSize           uint64 `yaml:"EPOCH_SIZE"`            // EpochSize is the number of blocks in one validator epoch.
	HistoryWindowEpochs uint64 `yaml:"HISTORY_WINDOW_EPOCHS"` // HistoryWindowEpochs is how many epochs keep their full signer set.
	MaxValidators       uint64 `yaml:"MAX_VALIDATORS"`        // MaxValidators bounds the size of a recorded signer set.

	// Incentives applied when the engine is initialized without explicit values.
	DefaultSlashingPenalty uint64 `yaml:"DEFAULT_SLASHING_PENALTY"`
	DefaultSlashingReward  uint64 `yaml:"DEFAULT_SLASHING_REWARD"`

	// CommunityFundAddress receives the part of a penalty not paid out as reward.
	CommunityFundAddress string `yaml:"COMMUNITY_FUND_ADDRESS"`

	// Storage.
	SignerCacheSize      int           `yaml:"SIGNER_CACHE_SIZE"`
	SlasherDBName        string        `yaml:"SLASHER_DB_NAME"`
	LedgerDBName         string        `yaml:"LEDGER_DB_NAME"`
	BoltTimeout          time.Duration `yaml:"BOLT_TIMEOUT"`
	ReadWritePermissions os.FileMode
}

// CommunityFund returns the parsed community fund address.
func (c *SlasherChainConfig) CommunityFund() common.Address {
	return common.HexToAddress(c.CommunityFundAddress)
}

// Copy returns a copy of the config object.
func (c *SlasherChainConfig) Copy() *SlasherChainConfig {
	config := deepcopy.Copy(*c).(SlasherChainConfig)
	return &config
}
