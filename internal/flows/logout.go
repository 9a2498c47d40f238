package flows

import (
	"context"
	"time"
)

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Call    func(ctx context.Context) error
	Timeout time.Duration
	Kinds   Kinds
}

type LogoutResult struct {
	TimedOut bool
	Err      error
}

// RunLogout reports the provider outcome only. Clearing local state happens
// in the Manager regardless of this result.
func RunLogout(ctx context.Context, deps LogoutDeps) LogoutResult {
	if deps.Call == nil {
		return LogoutResult{Err: deps.Kinds.Unavailable}
	}

	timedOut, err := awaitErr(ctx, deps.Timeout, deps.Kinds, deps.Call)
	return LogoutResult{TimedOut: timedOut, Err: err}
}
