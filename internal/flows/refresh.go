package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Call    func(ctx context.Context) (*session.TokenPair, error)
	Timeout time.Duration
	Kinds   Kinds
}

type RefreshResult struct {
	Tokens   *session.TokenPair
	TimedOut bool
	Err      error
}

func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	if deps.Call == nil {
		return RefreshResult{Err: deps.Kinds.Unavailable}
	}

	tokens, timedOut, err := awaitTokens(ctx, deps.Timeout, deps.Kinds, deps.Call)
	if err != nil {
		return RefreshResult{TimedOut: timedOut, Err: err}
	}
	if tokens == nil || tokens.AccessToken == "" {
		return RefreshResult{Err: deps.Kinds.Unknown}
	}
	return RefreshResult{Tokens: tokens}
}
