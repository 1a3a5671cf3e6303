//go:build !linux

package logs

import "github.com/pkg/errors"

// EnableJournald is only supported on linux.
func EnableJournald() error {
	return errors.New("journald logging is only supported on linux")
}
