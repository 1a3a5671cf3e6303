// Package main runs a daemon that periodically scrapes the prometheus
// endpoint of a slasher and reports a summary to a client stats endpoint.
package main

import (
	"os"
	"time"

	joonix "github.com/joonix/log"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/async"
	"github.com/sealwatch/slasher/cmd"
	"github.com/sealwatch/slasher/cmd/client-stats/flags"
	"github.com/sealwatch/slasher/io/logs"
	"github.com/sealwatch/slasher/monitoring/clientstats"
	"github.com/sealwatch/slasher/runtime/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var log = logrus.WithField("prefix", "main")

var appFlags = []cli.Flag{
	cmd.VerbosityFlag,
	cmd.LogFormat,
	cmd.LogFileName,
	cmd.ConfigFileFlag,
	flags.SlasherMetricsURLFlag,
	flags.ClientStatsAPIURLFlag,
	flags.ScrapeIntervalFlag,
}

var scrapeInterval = 120 * time.Second

func init() {
	appFlags = cmd.WrapFlags(appFlags)
}

func main() {
	app := cli.App{}
	app.Name = "client-stats"
	app.Usage = "daemon to scrape slasher metrics and report them to a client stats endpoint"
	app.Version = version.Version()
	app.Action = run
	app.Flags = appFlags

	app.Before = func(ctx *cli.Context) error {
		if ctx.IsSet(cmd.ConfigFileFlag.Name) {
			if err := altsrc.InitInputSourceWithContext(
				appFlags,
				altsrc.NewYamlSourceFromFlagFunc(
					cmd.ConfigFileFlag.Name))(ctx); err != nil {
				return err
			}
		}

		format := ctx.String(cmd.LogFormat.Name)
		switch format {
		case "text":
			formatter := new(prefixed.TextFormatter)
			formatter.TimestampFormat = "2006-01-02 15:04:05"
			formatter.FullTimestamp = true
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

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	level, err := logrus.ParseLevel(ctx.String(cmd.VerbosityFlag.Name))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if ctx.IsSet(flags.ScrapeIntervalFlag.Name) {
		scrapeInterval = ctx.Duration(flags.ScrapeIntervalFlag.Name)
	}

	var upd clientstats.Updater
	if ctx.IsSet(flags.ClientStatsAPIURLFlag.Name) {
		u := ctx.String(flags.ClientStatsAPIURLFlag.Name)
		upd = clientstats.NewClientStatsHTTPPostUpdater(u)
		log.WithField("url", logs.MaskCredentialsLogging(u)).Info("Reporting client stats")
	} else {
		log.Warn("No --clientstats-api-url flag set, writing to stdout as default metrics sink.")
		upd = clientstats.NewGenericClientStatsUpdater(os.Stdout)
	}

	if !ctx.IsSet(flags.SlasherMetricsURLFlag.Name) {
		return errors.Errorf("--%s is required", flags.SlasherMetricsURLFlag.Name)
	}
	u := ctx.String(flags.SlasherMetricsURLFlag.Name)
	scraper := clientstats.NewSlasherScraper(u)
	log.WithField("url", logs.MaskCredentialsLogging(u)).Info("Scraping slasher metrics")

	async.RunNowAndEvery(ctx.Context, scrapeInterval, func() {
		scrapeOnce(scraper, upd)
	})
	<-ctx.Context.Done()
	return nil
}

func scrapeOnce(scraper clientstats.Scraper, upd clientstats.Updater) {
	r, err := scraper.Scrape()
	if err != nil {
		log.WithError(err).Error("Scraper error")
		return
	}
	if err := upd.Update(r); err != nil {
		log.WithError(err).Error("Client stats update error")
	}
}
