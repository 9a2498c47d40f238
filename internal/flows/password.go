package flows

import (
	"context"
	"time"
)

// PasswordDeps captures password reset and update flow dependencies.
type PasswordDeps struct {
	Reset   func(ctx context.Context, email string) error
	Update  func(ctx context.Context, newPassword string) error
	Timeout time.Duration
	Kinds   Kinds
}

type PasswordResult struct {
	TimedOut bool
	Err      error
}

func RunPasswordReset(ctx context.Context, email string, deps PasswordDeps) PasswordResult {
	if deps.Reset == nil {
		return PasswordResult{Err: deps.Kinds.Unavailable}
	}

	timedOut, err := awaitErr(ctx, deps.Timeout, deps.Kinds, func(c context.Context) error {
		return deps.Reset(c, email)
	})
	return PasswordResult{TimedOut: timedOut, Err: err}
}

func RunPasswordUpdate(ctx context.Context, newPassword string, deps PasswordDeps) PasswordResult {
	if deps.Update == nil {
		return PasswordResult{Err: deps.Kinds.Unavailable}
	}

	timedOut, err := awaitErr(ctx, deps.Timeout, deps.Kinds, func(c context.Context) error {
		return deps.Update(c, newPassword)
	})
	return PasswordResult{TimedOut: timedOut, Err: err}
}
