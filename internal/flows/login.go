package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Call    func(ctx context.Context, email, password string) (*session.Grant, error)
	Timeout time.Duration
	Kinds   Kinds
}

type LoginResult struct {
	Grant    *session.Grant
	TimedOut bool
	Err      error
}

func RunLogin(ctx context.Context, email, password string, deps LoginDeps) LoginResult {
	if deps.Call == nil {
		return LoginResult{Err: deps.Kinds.Unavailable}
	}

	grant, timedOut, err := awaitGrant(ctx, deps.Timeout, deps.Kinds, func(c context.Context) (*session.Grant, error) {
		return deps.Call(c, email, password)
	})
	if err != nil {
		return LoginResult{TimedOut: timedOut, Err: err}
	}
	// A login that succeeds must carry a live session; anything else is a
	// provider contract violation.
	if grant == nil || grant.Tokens == nil || grant.Tokens.AccessToken == "" {
		return LoginResult{Err: deps.Kinds.Unknown}
	}
	return LoginResult{Grant: grant}
}
