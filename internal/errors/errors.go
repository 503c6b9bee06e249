package errors

import (
	"errors"
	"fmt"
)

// Common error types for the leads client
var (
	// Session errors
	ErrUnauthenticated       = errors.New("authentication failed")
	ErrAuthorizationRejected = fmt.Errorf("authorization rejected by server: %w", ErrUnauthenticated)
	ErrRefreshUnavailable    = errors.New("refresh unavailable")
	ErrCorruptedSession      = errors.New("corrupted session data")

	// Transport errors
	ErrTransport = errors.New("transport failure")

	// Job errors
	ErrJobFailed    = errors.New("job failed")
	ErrJobTimedOut  = errors.New("job timed out")
	ErrJobCancelled = errors.New("job cancelled")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrBadResponse = errors.New("unexpected response")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Transport marks err as a network level failure. err stays in the chain.
func Transport(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
