// Package audit follows the slash events of the engine. Every punished fault
// is logged, counted and, when a file is configured, appended to it as one
// JSON line.
package audit

import (
	"context"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const eventBufferSize = 64

// SlashEventFeed is the event source of the audit service.
type SlashEventFeed interface {
	SubscribeSlashEvents(ch chan<- *types.SlashEvent) event.Subscription
}

// Config for the audit service.
type Config struct {
	Feed SlashEventFeed
	// FilePath of the JSON lines audit file. Empty disables the file.
	FilePath string
	// RecentSize is how many records Recent keeps.
	RecentSize int
}

// Service consumes slash events.
type Service struct {
	ctx        context.Context
	cancel     context.CancelFunc
	feed       SlashEventFeed
	filePath   string
	file       *os.File
	recentSize int
	recent     []*types.SlashRecord
	lock       sync.RWMutex
	sub        event.Subscription
	events     chan *types.SlashEvent
	done       chan struct{}
	started    bool
	runErr     error
}

// New creates an audit service.
func New(ctx context.Context, cfg *Config) (*Service, error) {
	if cfg.Feed == nil {
		return nil, errors.New("nil slash event feed")
	}
	size := cfg.RecentSize
	if size <= 0 {
		size = 16
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Service{
		ctx:        ctx,
		cancel:     cancel,
		feed:       cfg.Feed,
		filePath:   cfg.FilePath,
		recentSize: size,
		events:     make(chan *types.SlashEvent, eventBufferSize),
		done:       make(chan struct{}),
	}, nil
}

// Start subscribes to the feed and processes events until Stop.
func (s *Service) Start() {
	s.lock.Lock()
	if s.started || s.ctx.Err() != nil {
		s.lock.Unlock()
		return
	}
	s.started = true
	s.lock.Unlock()
	if s.filePath != "" {
		f, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // #nosec G304
		if err != nil {
			s.setErr(errors.Wrap(err, "could not open audit file"))
			log.WithError(err).Error("Could not open audit file")
			close(s.done)
			return
		}
		s.file = f
	}
	s.sub = s.feed.SubscribeSlashEvents(s.events)
	go s.run()
}

// Stop the service and wait for pending events to be handled.
func (s *Service) Stop() error {
	s.cancel()
	s.lock.RLock()
	started := s.started
	s.lock.RUnlock()
	if !started {
		return nil
	}
	<-s.done
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// Status reports subscription or file failures.
func (s *Service) Status() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.runErr
}

// Recent returns the latest slash records, newest last.
func (s *Service) Recent() []*types.SlashRecord {
	s.lock.RLock()
	defer s.lock.RUnlock()
	out := make([]*types.SlashRecord, len(s.recent))
	copy(out, s.recent)
	return out
}

func (s *Service) run() {
	defer close(s.done)
	defer s.sub.Unsubscribe()
	for {
		select {
		case ev := <-s.events:
			s.handle(ev)
		case err := <-s.sub.Err():
			s.setErr(err)
			log.WithError(err).Error("Slash event subscription failed")
			return
		case <-s.ctx.Done():
			// Drain what the engine already delivered.
			for {
				select {
				case ev := <-s.events:
					s.handle(ev)
				default:
					log.Debug("Context closed, exiting goroutine")
					return
				}
			}
		}
	}
}

func (s *Service) handle(ev *types.SlashEvent) {
	if ev == nil || ev.Record == nil {
		return
	}
	r := ev.Record
	auditedSlashes.Inc()
	auditedPenalty.Add(float64(r.Penalty))
	auditedReward.Add(float64(r.Reward))
	auditedCommunityFund.Add(float64(r.CommunityFund))
	lastSlashedHeight.Set(float64(r.Height))

	s.lock.Lock()
	s.recent = append(s.recent, r)
	if len(s.recent) > s.recentSize {
		s.recent = s.recent[len(s.recent)-s.recentSize:]
	}
	s.lock.Unlock()

	log.WithFields(logrus.Fields{
		"offender":       r.Offender.Hex(),
		"validatorIndex": r.ValidatorIndex,
		"epoch":          r.Epoch,
		"height":         r.Height,
		"penalty":        r.Penalty,
		"reward":         r.Reward,
	}).Info("Audited slash")

	if s.file == nil {
		return
	}
	line, err := json.Marshal(r)
	if err != nil {
		log.WithError(err).Error("Could not encode audit record")
		return
	}
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		s.setErr(errors.Wrap(err, "could not write audit file"))
		log.WithError(err).Error("Could not write audit record")
	}
}

func (s *Service) setErr(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.runErr = err
}
