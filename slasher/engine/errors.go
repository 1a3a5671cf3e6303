package engine

import "github.com/pkg/errors"

var (
	// ErrUnauthorized is returned when a non-owner calls an owner-only method.
	ErrUnauthorized = errors.New("caller is not the owner")
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("slasher already initialized")
	// ErrNotInitialized is returned by calls that need an owner and incentives.
	ErrNotInitialized = errors.New("slasher not initialized")
	// ErrHeightMismatch is returned when the two headers are at different heights.
	ErrHeightMismatch = errors.New("block headers are at different heights")
	// ErrIdenticalEvidence is returned when both header blobs are equal.
	ErrIdenticalEvidence = errors.New("block headers are identical")
	// ErrNotSigner is returned when the validator did not seal both headers.
	ErrNotSigner = errors.New("validator did not sign both blocks")
	// ErrWrongSigner is returned when the validator index does not belong to the offender.
	ErrWrongSigner = errors.New("offender is not the signer at validator index")
	// ErrAlreadySlashed is returned when the fault was already punished.
	ErrAlreadySlashed = errors.New("offender already slashed for this height")
)
