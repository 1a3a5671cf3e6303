// Package main defines the slasher node: an HTTP service that verifies
// double signing fault proofs and punishes proven faults through the locked
// gold ledger.
package main

import (
	"os"

	joonix "github.com/joonix/log"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/cmd"
	"github.com/sealwatch/slasher/cmd/slasher/flags"
	"github.com/sealwatch/slasher/io/logs"
	"github.com/sealwatch/slasher/runtime/version"
	"github.com/sealwatch/slasher/slasher/node"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	_ "go.uber.org/automaxprocs"
)

var log = logrus.WithField("prefix", "main")

var appFlags = []cli.Flag{
	cmd.MinimalConfigFlag,
	cmd.VerbosityFlag,
	cmd.DataDirFlag,
	cmd.EnableTracingFlag,
	cmd.TracingProcessNameFlag,
	cmd.TracingEndpointFlag,
	cmd.TraceSampleFractionFlag,
	cmd.MonitoringHostFlag,
	cmd.BackupWebhookOutputDir,
	flags.MonitoringPortFlag,
	cmd.DisableMonitoringFlag,
	cmd.LogFileName,
	cmd.LogFormat,
	cmd.ClearDB,
	cmd.ForceClearDB,
	cmd.ConfigFileFlag,
	cmd.ChainConfigFileFlag,
	flags.RPCHost,
	flags.RPCPort,
	flags.RPCTimeoutFlag,
	flags.RPCAllowedOriginsFlag,
	flags.SlashRateLimitFlag,
	flags.SlashRateBurstFlag,
	flags.AuditFileFlag,
	flags.AuditRecentSizeFlag,
}

func init() {
	appFlags = cmd.WrapFlags(appFlags)
}

func startSlasher(cliCtx *cli.Context) error {
	verbosity := cliCtx.String(cmd.VerbosityFlag.Name)
	level, err := logrus.ParseLevel(verbosity)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	log.WithField("version", version.Version()).Info("Starting slasher")
	slasher, err := node.New(cliCtx)
	if err != nil {
		return err
	}
	slasher.Start()
	return nil
}

func configureLogging(ctx *cli.Context) error {
	format := ctx.String(cmd.LogFormat.Name)
	switch format {
	case "text":
		formatter := new(prefixed.TextFormatter)
		formatter.TimestampFormat = "2006-01-02 15:04:05"
		formatter.FullTimestamp = true
		// If persistent log files are written - we disable the log messages coloring because
		// the colors are ANSI codes and seen as gibberish in the log files.
		formatter.DisableColors = ctx.String(cmd.LogFileName.Name) != ""
		logrus.SetFormatter(formatter)
	case "fluentd":
		logrus.SetFormatter(joonix.NewFormatter())
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "journald":
		if err := logs.EnableJournald(); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown log format %s", format)
	}

	logFileName := ctx.String(cmd.LogFileName.Name)
	if logFileName != "" {
		if err := logs.ConfigurePersistentLogging(logFileName); err != nil {
			log.WithError(err).Error("Failed to configuring logging to disk.")
		}
	}
	return nil
}

func main() {
	app := cli.App{}
	app.Name = "slasher"
	app.Usage = "verifies double signing fault proofs and slashes the offending validators"
	app.Version = version.Version()
	app.Flags = appFlags
	app.Action = startSlasher
	app.Before = func(ctx *cli.Context) error {
		// Load any flags from file, if specified.
		if ctx.IsSet(cmd.ConfigFileFlag.Name) {
			if err := altsrc.InitInputSourceWithContext(
				appFlags,
				altsrc.NewYamlSourceFromFlagFunc(
					cmd.ConfigFileFlag.Name))(ctx); err != nil {
				return err
			}
		}
		return configureLogging(ctx)
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
