//go:build linux

package logs

import (
	"github.com/wercker/journalhook"
)

// EnableJournald sends log entries to the systemd journal instead of
// stdout. When no journal is available logging is left unchanged.
func EnableJournald() error {
	journalhook.Enable()
	return nil
}
