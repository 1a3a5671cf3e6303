// Package node is the main service which launches a slasher node. It wires
// the databases, the slashing engine and its collaborators, the HTTP API and
// the monitoring services into a single service registry.
package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	gprom "github.com/prometheus/client_golang/prometheus"
	"github.com/sealwatch/slasher/async"
	"github.com/sealwatch/slasher/cmd"
	"github.com/sealwatch/slasher/cmd/slasher/flags"
	"github.com/sealwatch/slasher/config/params"
	"github.com/sealwatch/slasher/lockedgold"
	"github.com/sealwatch/slasher/monitoring/backup"
	"github.com/sealwatch/slasher/monitoring/prometheus"
	"github.com/sealwatch/slasher/monitoring/tracing"
	"github.com/sealwatch/slasher/runtime"
	"github.com/sealwatch/slasher/slasher/audit"
	"github.com/sealwatch/slasher/slasher/db/kv"
	"github.com/sealwatch/slasher/slasher/directory"
	"github.com/sealwatch/slasher/slasher/engine"
	"github.com/sealwatch/slasher/slasher/oracle/rlpheader"
	"github.com/sealwatch/slasher/slasher/rpc"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "node")

// SlasherDbDirName is the directory under the data dir holding the slasher
// database and the locked gold ledger.
const SlasherDbDirName = "slasherdata"

const healthCheckInterval = time.Minute

// SlasherNode defines a struct that handles the services running a slashing
// engine. It handles the lifecycle of the entire system and registers
// services to a service registry.
type SlasherNode struct {
	cliCtx    *cli.Context
	ctx       context.Context
	cancel    context.CancelFunc
	lock      sync.RWMutex
	services  *runtime.ServiceRegistry
	stop      chan struct{} // Channel to wait for termination notifications.
	db        *kv.Store
	ledger    *lockedgold.Ledger
	directory *directory.Directory
}

// New creates a new node instance, sets up configuration options,
// and registers every required service.
func New(cliCtx *cli.Context) (*SlasherNode, error) {
	if err := tracing.Setup(
		"slasher", // Service name.
		cliCtx.String(cmd.TracingProcessNameFlag.Name),
		cliCtx.String(cmd.TracingEndpointFlag.Name),
		cliCtx.Float64(cmd.TraceSampleFractionFlag.Name),
		cliCtx.Bool(cmd.EnableTracingFlag.Name),
	); err != nil {
		return nil, err
	}
	if err := cmd.ConfigureSlasher(cliCtx); err != nil {
		return nil, err
	}
	cfg := params.SlasherConfig()
	log.WithFields(logrus.Fields{
		"config":        cfg.ConfigName,
		"epochSize":     cfg.EpochSize,
		"historyWindow": cfg.HistoryWindowEpochs,
	}).Info("Using slasher chain parameters")

	ctx, cancel := context.WithCancel(cliCtx.Context)
	slasher := &SlasherNode{
		cliCtx:   cliCtx,
		ctx:      ctx,
		cancel:   cancel,
		services: runtime.NewServiceRegistry(),
		stop:     make(chan struct{}),
	}

	if err := slasher.startDB(); err != nil {
		cancel()
		return nil, err
	}
	if err := slasher.registerServices(); err != nil {
		slasher.closeDB()
		cancel()
		return nil, err
	}
	return slasher, nil
}

func (s *SlasherNode) registerServices() error {
	e, err := s.registerEngine()
	if err != nil {
		return errors.Wrap(err, "could not register slashing engine")
	}
	auditor, err := s.registerAuditService(e)
	if err != nil {
		return errors.Wrap(err, "could not register audit service")
	}
	if err := s.registerRPCService(e); err != nil {
		return errors.Wrap(err, "could not register rpc service")
	}
	if !s.cliCtx.Bool(cmd.DisableMonitoringFlag.Name) {
		if err := s.registerPrometheusService(auditor); err != nil {
			return errors.Wrap(err, "could not register prometheus service")
		}
	}
	return nil
}

// Start the slasher and kick off every registered service.
func (s *SlasherNode) Start() {
	s.lock.Lock()
	s.services.StartAll()
	s.lock.Unlock()

	log.WithField("dataDir", s.cliCtx.String(cmd.DataDirFlag.Name)).Info("Starting slasher node")
	async.RunEvery(s.ctx, healthCheckInterval, s.checkHealth)

	stop := s.stop
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Info("Got interrupt, shutting down...")
		go s.Close()
		for i := 10; i > 0; i-- {
			<-sigc
			if i > 1 {
				log.WithField("times", i-1).Info("Already shutting down, interrupt more to panic")
			}
		}
		panic("Panic closing the slasher node")
	}()

	// Wait for stop channel to be closed.
	<-stop
}

func (s *SlasherNode) checkHealth() {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if err := s.services.Healthy(); err != nil {
		log.WithError(err).Warn("Slasher node is unhealthy")
	}
}

// Close handles graceful shutdown of the system.
func (s *SlasherNode) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	log.Info("Stopping slasher node")
	if err := s.services.StopAll(); err != nil {
		log.WithError(err).Error("Failed to stop every service")
	}
	s.closeDB()
	s.cancel()
	close(s.stop)
}

func (s *SlasherNode) startDB() error {
	baseDir := s.cliCtx.String(cmd.DataDirFlag.Name)
	if baseDir == "" {
		return errors.New("no data directory configured")
	}
	dbPath := filepath.Join(baseDir, SlasherDbDirName)
	clearDB := s.cliCtx.Bool(cmd.ClearDB.Name)
	forceClearDB := s.cliCtx.Bool(cmd.ForceClearDB.Name)

	log.WithField("database-path", dbPath).Info("Checking DB")
	if err := s.openDB(dbPath); err != nil {
		return err
	}

	clearDBConfirmed := false
	if clearDB && !forceClearDB {
		actionText := "This will delete your slasher database and locked gold ledger stored in your data directory. " +
			"Your database backups will not be removed - do you want to proceed? (Y/N)"
		deniedText := "Database will not be deleted. No changes have been made."
		var err error
		clearDBConfirmed, err = cmd.ConfirmAction(actionText, deniedText)
		if err != nil {
			s.closeDB()
			return err
		}
	}
	if clearDBConfirmed || forceClearDB {
		log.Warning("Removing database")
		if err := s.db.Close(); err != nil {
			return errors.Wrap(err, "could not close db prior to clearing")
		}
		if err := s.ledger.Close(); err != nil {
			return errors.Wrap(err, "could not close ledger prior to clearing")
		}
		if err := s.db.ClearDB(); err != nil {
			return errors.Wrap(err, "could not clear database")
		}
		if err := s.ledger.ClearDB(); err != nil {
			return errors.Wrap(err, "could not clear ledger")
		}
		if err := s.openDB(dbPath); err != nil {
			return errors.Wrap(err, "could not create new database")
		}
	}
	return nil
}

func (s *SlasherNode) openDB(dbPath string) error {
	d, err := kv.NewKVStore(s.ctx, dbPath)
	if err != nil {
		return errors.Wrap(err, "could not open slasher database")
	}
	l, err := lockedgold.NewLedger(s.ctx, dbPath, params.SlasherConfig().CommunityFund())
	if err != nil {
		if closeErr := d.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Failed to close database")
		}
		return errors.Wrap(err, "could not open locked gold ledger")
	}
	s.db = d
	s.ledger = l
	return nil
}

func (s *SlasherNode) closeDB() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.WithError(err).Error("Failed to close database")
		}
	}
	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			log.WithError(err).Error("Failed to close ledger")
		}
	}
}

func (s *SlasherNode) registerEngine() (*engine.Service, error) {
	cfg := params.SlasherConfig()
	dir, err := directory.New(&directory.Config{
		DB:                  s.db,
		HistoryWindowEpochs: cfg.HistoryWindowEpochs,
		MaxValidators:       cfg.MaxValidators,
		CacheSize:           cfg.SignerCacheSize,
	})
	if err != nil {
		return nil, err
	}
	s.directory = dir
	headers, err := rlpheader.New(cfg.EpochSize, dir)
	if err != nil {
		return nil, err
	}
	e, err := engine.New(s.ctx, &engine.Config{
		DB:           s.db,
		HeaderOracle: headers,
		SealOracle:   headers,
		Directory:    dir,
		Ledger:       s.ledger,
		EpochSize:    cfg.EpochSize,
	})
	if err != nil {
		return nil, err
	}
	return e, s.services.RegisterService(e)
}

func (s *SlasherNode) registerAuditService(e *engine.Service) (*audit.Service, error) {
	auditor, err := audit.New(s.ctx, &audit.Config{
		Feed:       e,
		FilePath:   s.cliCtx.String(flags.AuditFileFlag.Name),
		RecentSize: s.cliCtx.Int(flags.AuditRecentSizeFlag.Name),
	})
	if err != nil {
		return nil, err
	}
	return auditor, s.services.RegisterService(auditor)
}

func (s *SlasherNode) registerRPCService(e *engine.Service) error {
	host := s.cliCtx.String(flags.RPCHost.Name)
	port := s.cliCtx.Int(flags.RPCPort.Name)
	server, err := rpc.New(
		s.ctx,
		rpc.WithHTTPAddr(fmt.Sprintf("%s:%d", host, port)),
		rpc.WithEngine(e),
		rpc.WithDirectory(s.directory),
		rpc.WithBalances(s.ledger),
		rpc.WithNonces(s.db),
		rpc.WithTimeout(s.cliCtx.Duration(flags.RPCTimeoutFlag.Name)),
		rpc.WithAllowedOrigins(s.cliCtx.StringSlice(flags.RPCAllowedOriginsFlag.Name)),
		rpc.WithSlashRateLimit(
			s.cliCtx.Float64(flags.SlashRateLimitFlag.Name),
			int64(s.cliCtx.Int(flags.SlashRateBurstFlag.Name)),
		),
	)
	if err != nil {
		return err
	}
	return s.services.RegisterService(server)
}

func (s *SlasherNode) registerPrometheusService(auditor *audit.Service) error {
	for _, c := range []gprom.Collector{s.db.Collector(), s.ledger.Collector()} {
		if err := gprom.Register(c); err != nil {
			var already gprom.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return errors.Wrap(err, "could not register database collector")
			}
		}
	}
	outputDir := s.cliCtx.String(cmd.BackupWebhookOutputDir.Name)
	service := prometheus.NewService(
		fmt.Sprintf("%s:%d", s.cliCtx.String(cmd.MonitoringHostFlag.Name), s.cliCtx.Int(flags.MonitoringPortFlag.Name)),
		s.services,
		prometheus.Handler{Path: "/db/backup", Handler: backup.Handler(outputDir, s.db, s.ledger)},
		prometheus.Handler{Path: "/recent-slashes", Handler: auditor.RecentSlashesHandler},
	)
	logrus.AddHook(prometheus.NewLogrusCollector())
	return s.services.RegisterService(service)
}
