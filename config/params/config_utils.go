package params

import (
	"sync"
)

var slasherConfig = MainnetConfig()
var slasherConfigLock sync.RWMutex

// SlasherConfig retrieves the active slasher config.
func SlasherConfig() *SlasherChainConfig {
	slasherConfigLock.RLock()
	defer slasherConfigLock.RUnlock()
	return slasherConfig
}

// OverrideSlasherConfig by replacing the config. The preferred pattern is to
// call SlasherConfig(), change the specific parameters, and then call
// OverrideSlasherConfig(c). Any subsequent calls to params.SlasherConfig()
// will return this new configuration.
func OverrideSlasherConfig(c *SlasherChainConfig) {
	slasherConfigLock.Lock()
	defer slasherConfigLock.Unlock()
	slasherConfig = c
}

// UseMinimalConfig for tests and local networks.
func UseMinimalConfig() {
	OverrideSlasherConfig(MinimalConfig().Copy())
}

// UseMainnetConfig resets the global config to mainnet.
func UseMainnetConfig() {
	OverrideSlasherConfig(MainnetConfig().Copy())
}
