package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/sealwatch/slasher/config/params"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
	"github.com/urfave/cli/v2"
)

func TestOverrideConfig(t *testing.T) {
	cfg := &Flags{
		MinimalConfig: true,
	}
	reset := InitWithReset(cfg)
	defer reset()
	c := Get()
	assert.Equal(t, true, c.MinimalConfig)
}

func TestDefaultConfig(t *testing.T) {
	reset := InitWithReset(&Flags{})
	defer reset()
	assert.DeepEqual(t, &Flags{}, Get())
}

func TestConfigureSlasher_Minimal(t *testing.T) {
	defer params.UseMainnetConfig()
	reset := InitWithReset(&Flags{})
	defer reset()

	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.Bool(MinimalConfigFlag.Name, true, "test")
	context := cli.NewContext(&app, set, nil)
	require.NoError(t, ConfigureSlasher(context))
	assert.Equal(t, true, Get().MinimalConfig)
	assert.Equal(t, "minimal", params.SlasherConfig().ConfigName)
	assert.Equal(t, uint64(100), params.SlasherConfig().EpochSize)
}

func TestConfigureSlasher_ChainConfigFile(t *testing.T) {
	defer params.UseMainnetConfig()
	reset := InitWithReset(&Flags{})
	defer reset()

	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("CONFIG_NAME: testnet\nEPOCH_SIZE: 720\n"), 0600))

	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.String(ChainConfigFileFlag.Name, "", "test")
	require.NoError(t, set.Set(ChainConfigFileFlag.Name, file))
	context := cli.NewContext(&app, set, nil)
	require.NoError(t, ConfigureSlasher(context))
	assert.Equal(t, file, Get().ChainConfigFile)
	assert.Equal(t, "testnet", params.SlasherConfig().ConfigName)
	assert.Equal(t, uint64(720), params.SlasherConfig().EpochSize)
}

func TestConfigureSlasher_BadChainConfigFile(t *testing.T) {
	defer params.UseMainnetConfig()
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.String(ChainConfigFileFlag.Name, "", "test")
	require.NoError(t, set.Set(ChainConfigFileFlag.Name, filepath.Join(t.TempDir(), "missing.yaml")))
	context := cli.NewContext(&app, set, nil)
	assert.ErrorContains(t, "could not load chain config file", ConfigureSlasher(context))
}
