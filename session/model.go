package session

import "time"

// Status enumerates the lifecycle phases of a session snapshot.
//
// Status instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Status uint8

const (
	// StatusInitializing is the state before the first restore attempt settles.
	StatusInitializing Status = iota
	// StatusAnonymous is the state with no signed-in identity.
	StatusAnonymous
	// StatusAuthenticated is the state with a signed-in identity.
	StatusAuthenticated
)

// String describes the status in lower-case wire-friendly form.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity defines a public type used by goSession APIs.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity struct {
	// ID is the provider-assigned opaque identifier. It is stable across
	// logins and never interpreted by this library.
	ID string

	Email         string
	EmailVerified bool

	// Metadata carries provider-defined attributes verbatim.
	Metadata map[string]any
}

// Clone returns a deep copy of the identity, including Metadata.
func (i Identity) Clone() Identity {
	out := i
	if i.Metadata != nil {
		out.Metadata = make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// TokenPair defines a public type used by goSession APIs.
//
// TokenPair instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenPair struct {
	AccessToken string

	// RefreshToken may be empty when the provider does not issue one.
	RefreshToken string

	// ExpiresAt is the access token expiry. A zero value means the expiry
	// is unknown.
	ExpiresAt time.Time
}

// Valid reports whether the access token is present and not within leeway of
// its expiry at the given instant. An unknown expiry is assumed valid.
func (t TokenPair) Valid(now time.Time, leeway time.Duration) bool {
	if t.AccessToken == "" {
		return false
	}
	if t.ExpiresAt.IsZero() {
		return true
	}
	return now.Add(leeway).Before(t.ExpiresAt)
}

// Grant defines a public type used by goSession APIs.
//
// Grant instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Grant struct {
	Identity Identity

	// Tokens is nil when the provider acknowledged the account without
	// issuing a session, such as a signup that still requires email
	// verification.
	Tokens *TokenPair
}

// Clone returns a deep copy of the grant.
func (g Grant) Clone() Grant {
	out := Grant{Identity: g.Identity.Clone()}
	if g.Tokens != nil {
		tokens := *g.Tokens
		out.Tokens = &tokens
	}
	return out
}

// Snapshot defines a public type used by goSession APIs.
//
// Snapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Snapshot struct {
	// Identity is nil unless Status is StatusAuthenticated.
	Identity *Identity

	// Tokens is nil when no session tokens are held.
	Tokens *TokenPair

	Status Status

	// Loading is true while an operation that may change the snapshot is in
	// flight, including the initial restore.
	Loading bool

	// Seq increases by exactly one per published change.
	Seq uint64

	// ChangedAt is the publication time of this snapshot.
	ChangedAt time.Time
}

// Authenticated reports whether the snapshot carries a signed-in identity.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Identity != nil {
		ident := s.Identity.Clone()
		out.Identity = &ident
	}
	if s.Tokens != nil {
		tokens := *s.Tokens
		out.Tokens = &tokens
	}
	return out
}
