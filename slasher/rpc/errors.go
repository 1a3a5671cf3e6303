package rpc

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/lockedgold"
	"github.com/sealwatch/slasher/slasher/db/kv"
	"github.com/sealwatch/slasher/slasher/engine"
	"github.com/sealwatch/slasher/slasher/oracle"
)

var (
	errInvalidAddress   = errors.New("not a hex encoded address")
	errMissingSignature = errors.New("missing request signature")
	errInvalidSignature = errors.New("invalid request signature")
)

// DecodeError represents an error resulting from trying to decode a request field.
type DecodeError struct {
	path []string
	err  error
}

// NewDecodeError wraps an error (either the initial decoding error or another DecodeError).
// The current field that failed decoding must be passed in.
func NewDecodeError(err error, field string) *DecodeError {
	de, ok := err.(*DecodeError)
	if ok {
		return &DecodeError{path: append([]string{field}, de.path...), err: de.err}
	}
	return &DecodeError{path: []string{field}, err: err}
}

// Error returns the formatted error message which contains the full field path.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode %s: %s", strings.Join(e.path, "."), e.err.Error())
}

// statusCode maps a failed engine, directory or ledger call to an HTTP status.
func statusCode(err error) int {
	switch {
	case errors.Is(err, errMissingSignature),
		errors.Is(err, errInvalidSignature),
		errors.Is(err, kv.ErrStaleNonce):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrAlreadyInitialized),
		errors.Is(err, engine.ErrAlreadySlashed),
		errors.Is(err, kv.ErrEpochRecorded):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrHeightMismatch),
		errors.Is(err, engine.ErrIdenticalEvidence),
		errors.Is(err, engine.ErrNotSigner),
		errors.Is(err, engine.ErrWrongSigner),
		errors.Is(err, oracle.ErrMalformedHeader),
		errors.Is(err, oracle.ErrNoSigner):
		return http.StatusBadRequest
	case errors.Is(err, oracle.ErrUnknownEpoch):
		return http.StatusNotFound
	case errors.Is(err, lockedgold.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
