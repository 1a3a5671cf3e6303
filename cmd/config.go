package cmd

import (
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/config/params"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "cmd")

var sharedConfig *Flags

// Flags is a struct to represent which command line flags were applied to
// the running process.
type Flags struct {
	MinimalConfig   bool
	ChainConfigFile string
}

// Get retrieves the flag config.
func Get() *Flags {
	if sharedConfig == nil {
		return &Flags{}
	}
	return sharedConfig
}

// Init sets the global config equal to the config that is passed in.
func Init(c *Flags) {
	sharedConfig = c
}

// InitWithReset sets the global config and returns a function that is used
// to reset it.
func InitWithReset(c *Flags) func() {
	resetFunc := func() {
		Init(&Flags{})
	}
	Init(c)
	return resetFunc
}

// ConfigureSlasher applies the chain preset and chain config file named by
// the command line to params.SlasherConfig.
func ConfigureSlasher(ctx *cli.Context) error {
	cfg := &Flags{}
	if ctx.Bool(MinimalConfigFlag.Name) {
		log.Warn("Using minimal config")
		cfg.MinimalConfig = true
		params.UseMinimalConfig()
	}
	if ctx.IsSet(ChainConfigFileFlag.Name) {
		cfg.ChainConfigFile = ctx.String(ChainConfigFileFlag.Name)
		if err := params.LoadSlasherConfigFile(cfg.ChainConfigFile); err != nil {
			return errors.Wrap(err, "could not load chain config file")
		}
	}
	Init(cfg)
	return nil
}
