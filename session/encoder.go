package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// The codec persists the durable subset of a snapshot: identity and tokens.
// The envelope is append-only: new versions add fields but never reinterpret
// old ones.
const snapshotSchemaVersionCurrent = 1

// ErrUnknownSchemaVersion is an exported constant or variable used by the session manager.
var ErrUnknownSchemaVersion = errors.New("unknown snapshot schema version")

type snapshotEnvelope struct {
	Version  int             `json:"v"`
	SavedAt  time.Time       `json:"saved_at"`
	Identity *identityRecord `json:"identity,omitempty"`
	Tokens   *tokenRecord    `json:"tokens,omitempty"`
}

type identityRecord struct {
	ID            string         `json:"id"`
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"email_verified,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type tokenRecord struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// EncodeSnapshot describes the encode snapshot operation and its observable behavior.
//
// EncodeSnapshot may return an error when input validation, dependency calls, or security checks fail.
// EncodeSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Only identity and tokens are encoded. Seq, Loading, and Status are
// rebuilt on decode and never persisted.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	env := snapshotEnvelope{
		Version: snapshotSchemaVersionCurrent,
		SavedAt: s.ChangedAt,
	}
	if env.SavedAt.IsZero() {
		env.SavedAt = time.Now().UTC()
	}
	if s.Identity != nil {
		if s.Identity.ID == "" {
			return nil, errors.New("snapshot identity is missing an id")
		}
		env.Identity = &identityRecord{
			ID:            s.Identity.ID,
			Email:         s.Identity.Email,
			EmailVerified: s.Identity.EmailVerified,
			Metadata:      s.Identity.Metadata,
		}
	}
	if s.Tokens != nil && s.Tokens.AccessToken != "" {
		env.Tokens = &tokenRecord{
			AccessToken:  s.Tokens.AccessToken,
			RefreshToken: s.Tokens.RefreshToken,
		}
		if !s.Tokens.ExpiresAt.IsZero() {
			exp := s.Tokens.ExpiresAt
			env.Tokens.ExpiresAt = &exp
		}
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot describes the decode snapshot operation and its observable behavior.
//
// DecodeSnapshot may return an error when input validation, dependency calls, or security checks fail.
// DecodeSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Unknown schema versions and malformed input are rejected. The returned
// snapshot has Status derived from the presence of an identity, Seq zero,
// and ChangedAt set to the persisted save time.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, errors.New("empty snapshot payload")
	}
	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if env.Version != snapshotSchemaVersionCurrent {
		return nil, ErrUnknownSchemaVersion
	}

	s := &Snapshot{
		Status:    StatusAnonymous,
		ChangedAt: env.SavedAt,
	}
	if env.Identity != nil {
		if env.Identity.ID == "" {
			return nil, errors.New("snapshot identity is missing an id")
		}
		ident := Identity{
			ID:            env.Identity.ID,
			Email:         env.Identity.Email,
			EmailVerified: env.Identity.EmailVerified,
			Metadata:      env.Identity.Metadata,
		}
		s.Identity = &ident
		s.Status = StatusAuthenticated
	}
	if env.Tokens != nil {
		if env.Tokens.AccessToken == "" {
			return nil, errors.New("snapshot tokens are missing an access token")
		}
		tokens := TokenPair{
			AccessToken:  env.Tokens.AccessToken,
			RefreshToken: env.Tokens.RefreshToken,
		}
		if env.Tokens.ExpiresAt != nil {
			tokens.ExpiresAt = *env.Tokens.ExpiresAt
		}
		s.Tokens = &tokens
	}
	return s, nil
}
