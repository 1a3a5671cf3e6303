// Package flags holds flag value types shared by the slasher binaries.
package flags

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// EnumValue is a string flag restricted to a fixed set of values. Matching
// ignores case and the canonical spelling from Enum is stored.
type EnumValue struct {
	Name        string
	Usage       string
	Destination *string
	Enum        []string
	Value       string
}

// Set stores the entry of Enum matching value.
func (e *EnumValue) Set(value string) error {
	for _, allowed := range e.Enum {
		if strings.EqualFold(allowed, strings.TrimSpace(value)) {
			*e.Destination = allowed
			return nil
		}
	}
	return errors.Errorf("allowed values are %s", strings.Join(e.Enum, ", "))
}

func (e *EnumValue) String() string {
	if e.Destination == nil || *e.Destination == "" {
		return e.Value
	}
	return *e.Destination
}

// GenericFlag returns the cli flag backed by e. The allowed values are
// appended to the usage text.
func (e EnumValue) GenericFlag() *cli.GenericFlag {
	*e.Destination = e.Value
	usage := e.Usage
	if len(e.Enum) > 0 {
		usage = fmt.Sprintf("%s (one of: %s)", usage, strings.Join(e.Enum, ", "))
	}
	v := &e
	return &cli.GenericFlag{Name: e.Name, Usage: usage, Value: v}
}
