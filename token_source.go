package goSession

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrEthical07/goSession/jwt"
)

// TokenSource defines a public type used by goSession APIs.
//
// TokenSource instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// A TokenSource hands out access tokens for outbound calls. It serves from
// the current snapshot while the token is fresh and coalesces concurrent
// refreshes into a single provider flight when it is not: under a stampede
// exactly one refresh runs and every waiter shares its outcome.
type TokenSource struct {
	manager *Manager
	leeway  time.Duration
	group   singleflight.Group
}

// Token describes the token operation and its observable behavior.
//
// Token may return an error when input validation, dependency calls, or security checks fail.
// Token does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A token is served from the snapshot when it is valid for at least the
// configured leeway. Tokens without a known expiry are inspected for a JWT
// exp claim first; opaque tokens are assumed valid. When a refresh flight is
// needed, waiters that join it share the first caller's context, and the
// wait is bounded by [OperationsConfig.ProviderTimeout]. A refresh that
// loses the in-flight guard to a user operation fails with
// [ErrOperationInProgress]; callers may retry once the operation settles.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if s == nil || s.manager == nil {
		return "", ErrNotStarted
	}

	start := time.Now()
	if tok, ok := s.cachedToken(); ok {
		s.manager.metricInc(MetricTokenServed)
		s.manager.observeLatency(MetricTokenWaitLatency, time.Since(start))
		return tok, nil
	}

	v, err, shared := s.group.Do("refresh", func() (any, error) {
		// A waiter that queued behind a finished flight may find the
		// snapshot already fresh.
		if tok, ok := s.cachedToken(); ok {
			return tok, nil
		}
		s.manager.metricInc(MetricTokenRefreshTriggered)
		pair, err := s.manager.Refresh(ctx)
		if err != nil {
			return "", err
		}
		return pair.AccessToken, nil
	})
	s.group.Forget("refresh")

	if err != nil {
		s.manager.metricInc(MetricTokenUnavailable)
		return "", err
	}
	if shared {
		s.manager.metricInc(MetricTokenCoalesced)
	}
	s.manager.metricInc(MetricTokenServed)
	s.manager.observeLatency(MetricTokenWaitLatency, time.Since(start))
	return v.(string), nil
}

// cachedToken reports the snapshot's access token when it is still valid
// under the leeway. A pair without a wall-clock expiry falls back to the
// token's own exp claim; a token carrying neither is assumed valid because
// only the provider can judge an opaque token.
func (s *TokenSource) cachedToken() (string, bool) {
	snap := s.manager.Snapshot()
	if snap.Tokens == nil || snap.Tokens.AccessToken == "" {
		return "", false
	}

	pair := *snap.Tokens
	if pair.ExpiresAt.IsZero() {
		if exp, err := jwt.ExpiryOf(pair.AccessToken); err == nil {
			pair.ExpiresAt = exp
		}
	}
	if !pair.Valid(time.Now(), s.leeway) {
		return "", false
	}
	return pair.AccessToken, true
}
