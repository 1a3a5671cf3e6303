package params

import (
	"io/ioutil"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// LoadSlasherConfigFile reads a YAML config file, applies it on top of the
// preset it names (mainnet unless PRESET_BASE is minimal) and overrides the
// global config with the result.
func LoadSlasherConfigFile(configFileName string) error {
	yamlFile, err := ioutil.ReadFile(configFileName) // #nosec G304
	if err != nil {
		return errors.Wrap(err, "failed to read slasher config file")
	}
	conf, err := UnmarshalConfig(yamlFile)
	if err != nil {
		return err
	}
	log.Debugf("Config file values: %+v", conf)
	OverrideSlasherConfig(conf)
	return nil
}

// UnmarshalConfig parses YAML config bytes into a validated config.
func UnmarshalConfig(yamlFile []byte) (*SlasherChainConfig, error) {
	// Default to using mainnet.
	conf := MainnetConfig().Copy()
	hasConfigName := false
	lines := strings.Split(string(yamlFile), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "CONFIG_NAME") {
			hasConfigName = true
		}
		if strings.HasPrefix(line, "PRESET_BASE") {
			if strings.Contains(line, "minimal") {
				conf = MinimalConfig().Copy()
			}
			continue
		}
		kept = append(kept, line)
	}
	if err := yaml.UnmarshalStrict([]byte(strings.Join(kept, "\n")), conf); err != nil {
		return nil, errors.Wrap(err, "failed to parse slasher config yaml file")
	}
	if !hasConfigName {
		conf.ConfigName = "devnet"
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// ConfigToYaml takes a provided config and outputs its YAML. This allows
// printing the effective config of a running node.
func ConfigToYaml(cfg *SlasherChainConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func (c *SlasherChainConfig) validate() error {
	if c.EpochSize == 0 {
		return errors.New("EPOCH_SIZE must be greater than zero")
	}
	if c.HistoryWindowEpochs == 0 {
		return errors.New("HISTORY_WINDOW_EPOCHS must be greater than zero")
	}
	if c.DefaultSlashingReward > c.DefaultSlashingPenalty {
		return errors.New("DEFAULT_SLASHING_REWARD cannot exceed DEFAULT_SLASHING_PENALTY")
	}
	if !common.IsHexAddress(c.CommunityFundAddress) {
		return errors.Errorf("COMMUNITY_FUND_ADDRESS %q is not a hex address", c.CommunityFundAddress)
	}
	return nil
}
