package goSession

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the session manager.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailUnverified is an exported constant or variable used by the session manager.
	ErrEmailUnverified = errors.New("email not verified")
	// ErrNoSession is an exported constant or variable used by the session manager.
	ErrNoSession = errors.New("no active session")
	// ErrOperationInProgress is an exported constant or variable used by the session manager.
	ErrOperationInProgress = errors.New("another operation is in progress")
	// ErrProviderUnavailable is an exported constant or variable used by the session manager.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrUnknown is an exported constant or variable used by the session manager.
	ErrUnknown = errors.New("unclassified provider error")
	// ErrNotStarted is an exported constant or variable used by the session manager.
	ErrNotStarted = errors.New("manager not started")
	// ErrAlreadyStarted is an exported constant or variable used by the session manager.
	ErrAlreadyStarted = errors.New("manager already started")
	// ErrClosed is an exported constant or variable used by the session manager.
	ErrClosed = errors.New("manager closed")
)

// ProviderError defines a public type used by goSession APIs.
//
// ProviderError instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Adapters wrap every vendor failure in a ProviderError so callers can
// branch on Kind with [errors.Is] while keeping the vendor detail for logs.
type ProviderError struct {
	// Kind is one of the package sentinels, never nil.
	Kind error
	// Message is a human-readable summary safe to log.
	Message string
	// Raw is the untouched vendor error, possibly nil.
	Raw error
}

// Error describes the error operation and its observable behavior.
//
// Error may return an error when input validation, dependency calls, or security checks fail.
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "provider error"
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap may return an error when input validation, dependency calls, or security checks fail.
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// Kind describes the kind operation and its observable behavior.
//
// Kind may return an error when input validation, dependency calls, or security checks fail.
// Kind does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Kind collapses any error to its taxonomy sentinel, falling back to
// [ErrUnknown] for errors outside the taxonomy and nil for nil.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, ErrEmailUnverified):
		return ErrEmailUnverified
	case errors.Is(err, ErrNoSession):
		return ErrNoSession
	case errors.Is(err, ErrOperationInProgress):
		return ErrOperationInProgress
	case errors.Is(err, ErrProviderUnavailable):
		return ErrProviderUnavailable
	case errors.Is(err, ErrNotStarted):
		return ErrNotStarted
	case errors.Is(err, ErrAlreadyStarted):
		return ErrAlreadyStarted
	case errors.Is(err, ErrClosed):
		return ErrClosed
	default:
		return ErrUnknown
	}
}
