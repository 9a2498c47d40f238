package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is an exported constant or variable used by the session manager.
var ErrMalformedToken = errors.New("malformed access token")

// Claims defines a public type used by goSession APIs.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Claims values come from unverified token payloads. They are suitable for
// display and scheduling, never for authorization decisions.
type Claims struct {
	Subject   string
	Email     string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type rawClaims struct {
	Email     string `json:"email,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// Peek describes the peek operation and its observable behavior.
//
// Peek may return an error when input validation, dependency calls, or security checks fail.
// Peek does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Peek decodes the payload without verifying the signature: a token with a
// forged signature still parses. Callers must treat the result as untrusted
// input.
func Peek(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}

	var raw rawClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &raw); err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}

	claims := &Claims{
		Subject:   raw.Subject,
		Email:     raw.Email,
		SessionID: raw.SessionID,
	}
	if raw.IssuedAt != nil {
		claims.IssuedAt = raw.IssuedAt.Time
	}
	if raw.ExpiresAt != nil {
		claims.ExpiresAt = raw.ExpiresAt.Time
	}
	return claims, nil
}

// ExpiryOf describes the expiry of operation and its observable behavior.
//
// ExpiryOf may return an error when input validation, dependency calls, or security checks fail.
// ExpiryOf does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A zero time with a nil error means the token parsed but carries no exp
// claim.
func ExpiryOf(token string) (time.Time, error) {
	claims, err := Peek(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt, nil
}
