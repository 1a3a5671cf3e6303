package params_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sealwatch/slasher/config/params"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
)

func TestUnmarshalConfig_MinimalPreset(t *testing.T) {
	conf, err := params.UnmarshalConfig([]byte(`PRESET_BASE: minimal
CONFIG_NAME: "local"
EPOCH_SIZE: 20
COMMUNITY_FUND_ADDRESS: "0x00000000000000000000000000000000000000aa"
`))
	require.NoError(t, err)
	assert.Equal(t, "local", conf.ConfigName)
	assert.Equal(t, uint64(20), conf.EpochSize)
	assert.Equal(t, params.MinimalConfig().HistoryWindowEpochs, conf.HistoryWindowEpochs)
	assert.Equal(t, common.HexToAddress("0xaa"), conf.CommunityFund())
}

func TestUnmarshalConfig_DefaultsToMainnet(t *testing.T) {
	conf, err := params.UnmarshalConfig([]byte("HISTORY_WINDOW_EPOCHS: 8\n"))
	require.NoError(t, err)
	assert.Equal(t, "devnet", conf.ConfigName)
	assert.Equal(t, params.MainnetConfig().EpochSize, conf.EpochSize)
	assert.Equal(t, uint64(8), conf.HistoryWindowEpochs)
}

func TestUnmarshalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "zero epoch size", yaml: "EPOCH_SIZE: 0\n", wantErr: "EPOCH_SIZE"},
		{name: "reward above penalty", yaml: "PRESET_BASE: minimal\nDEFAULT_SLASHING_REWARD: 20000\n", wantErr: "DEFAULT_SLASHING_REWARD"},
		{name: "bad fund address", yaml: "COMMUNITY_FUND_ADDRESS: \"celo\"\n", wantErr: "not a hex address"},
		{name: "unknown field", yaml: "SLOTS_PER_EPOCH: 32\n", wantErr: "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := params.UnmarshalConfig([]byte(tt.yaml))
			assert.ErrorContains(t, tt.wantErr, err)
		})
	}
}

func TestLoadSlasherConfigFile(t *testing.T) {
	defer params.UseMainnetConfig()
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("PRESET_BASE: minimal\nEPOCH_SIZE: 50\n"), 0600))
	require.NoError(t, params.LoadSlasherConfigFile(file))
	assert.Equal(t, uint64(50), params.SlasherConfig().EpochSize)
	assert.Equal(t, "devnet", params.SlasherConfig().ConfigName)

	assert.ErrorContains(t, "failed to read", params.LoadSlasherConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestCopy_IsIndependent(t *testing.T) {
	c := params.MinimalConfig()
	c.EpochSize = 7
	assert.Equal(t, uint64(100), params.MinimalConfig().EpochSize)
	assert.NotEqual(t, params.MainnetConfig().EpochSize, params.MinimalConfig().EpochSize)
}
