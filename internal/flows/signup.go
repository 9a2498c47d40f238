package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// SignupDeps captures signup flow dependencies.
type SignupDeps struct {
	Call    func(ctx context.Context, email, password string, metadata map[string]any) (*session.Grant, error)
	Timeout time.Duration
	Kinds   Kinds
}

type SignupResult struct {
	Grant *session.Grant
	// Pending reports that the account was created but no session was
	// issued, typically because email verification is required first.
	Pending  bool
	TimedOut bool
	Err      error
}

func RunSignup(ctx context.Context, email, password string, metadata map[string]any, deps SignupDeps) SignupResult {
	if deps.Call == nil {
		return SignupResult{Err: deps.Kinds.Unavailable}
	}

	grant, timedOut, err := awaitGrant(ctx, deps.Timeout, deps.Kinds, func(c context.Context) (*session.Grant, error) {
		return deps.Call(c, email, password, metadata)
	})
	if err != nil {
		return SignupResult{TimedOut: timedOut, Err: err}
	}
	if grant == nil {
		return SignupResult{Err: deps.Kinds.Unknown}
	}
	if grant.Tokens == nil || grant.Tokens.AccessToken == "" {
		pending := *grant
		pending.Tokens = nil
		return SignupResult{Grant: &pending, Pending: true}
	}
	return SignupResult{Grant: grant}
}
