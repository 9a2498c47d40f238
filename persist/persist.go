package persist

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// ErrNotFound is an exported constant or variable used by the session manager.
var ErrNotFound = errors.New("no session record")

// ErrUnavailable is an exported constant or variable used by the session manager.
//
// Store errors other than a plain miss wrap ErrUnavailable so consumers can
// distinguish "nothing saved" from "backend down".
var ErrUnavailable = errors.New("session store unavailable")

// Record defines a public type used by goSession APIs.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// A Record is the durable form of an authenticated session: the identity it
// belongs to, the token pair that proves it, and when it was written.
type Record struct {
	Identity session.Identity
	Tokens   session.TokenPair
	SavedAt  time.Time
}

// Clone describes the clone operation and its observable behavior.
//
// Clone may return an error when input validation, dependency calls, or security checks fail.
// Clone does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Record) Clone() Record {
	return Record{
		Identity: r.Identity.Clone(),
		Tokens:   r.Tokens,
		SavedAt:  r.SavedAt,
	}
}

// Store defines a public type used by goSession APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store interface {
	// Load returns the saved record, or ErrNotFound when nothing is saved.
	Load(ctx context.Context) (*Record, error)

	// Save replaces the record.
	Save(ctx context.Context, rec Record) error

	// Clear removes the record. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
