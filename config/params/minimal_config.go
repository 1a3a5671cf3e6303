package params

// MinimalConfig returns a small configuration for tests and local networks.
func MinimalConfig() *SlasherChainConfig {
	minimalConfig := mainnetSlasherConfig.Copy()
	minimalConfig.ConfigName = "minimal"
	minimalConfig.EpochSize = 100
	minimalConfig.HistoryWindowEpochs = 4
	minimalConfig.MaxValidators = 32
	minimalConfig.DefaultSlashingPenalty = 10000
	minimalConfig.DefaultSlashingReward = 100
	minimalConfig.SignerCacheSize = 64
	return minimalConfig
}
