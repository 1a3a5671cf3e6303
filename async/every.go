// Package async includes helpers for scheduling periodic functions.
package async

import (
	"context"
	"reflect"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "async")

// RunEvery runs f every period in a goroutine until ctx is done.
func RunEvery(ctx context.Context, period time.Duration, f func()) {
	go runEvery(ctx, period, f, false)
}

// RunNowAndEvery runs f once right away and then every period, all in one
// goroutine, until ctx is done.
func RunNowAndEvery(ctx context.Context, period time.Duration, f func()) {
	go runEvery(ctx, period, f, true)
}

func runEvery(ctx context.Context, period time.Duration, f func(), now bool) {
	funcName := runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name()
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	if now && ctx.Err() == nil {
		f()
	}
	for {
		select {
		case <-ticker.C:
			log.WithField("function", funcName).Trace("Running")
			f()
		case <-ctx.Done():
			log.WithField("function", funcName).Debug("Context is closed, exiting")
			return
		}
	}
}
