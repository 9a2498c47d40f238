package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// InitializeDeps captures restore flow dependencies.
type InitializeDeps struct {
	Restore  func(ctx context.Context) (*session.Grant, error)
	Identity func(ctx context.Context) (*session.Identity, error)

	// VerifyRestored revalidates a restored grant through Identity before
	// trusting it.
	VerifyRestored bool

	Timeout time.Duration
	Kinds   Kinds
}

type InitializeResult struct {
	// Grant is nil when there is no session to restore.
	Grant *session.Grant
	// Verified reports that the restored identity was revalidated against
	// the provider.
	Verified bool
	TimedOut bool
	Err      error
}

type IdentityResult struct {
	// Identity is nil when the provider holds no session.
	Identity *session.Identity
	TimedOut bool
	Err      error
}

func RunInitialize(ctx context.Context, deps InitializeDeps) InitializeResult {
	if deps.Restore == nil {
		return InitializeResult{Err: deps.Kinds.Unavailable}
	}

	grant, timedOut, err := awaitGrant(ctx, deps.Timeout, deps.Kinds, deps.Restore)
	if err != nil {
		return InitializeResult{TimedOut: timedOut, Err: err}
	}
	if grant == nil {
		return InitializeResult{}
	}

	if deps.VerifyRestored && deps.Identity != nil {
		verified := RunCurrentIdentity(ctx, deps)
		if verified.Err != nil || verified.Identity == nil {
			// A restore that fails revalidation degrades to a miss
			// rather than failing the start.
			return InitializeResult{TimedOut: verified.TimedOut}
		}
		fresh := *grant
		fresh.Identity = *verified.Identity
		return InitializeResult{Grant: &fresh, Verified: true}
	}

	return InitializeResult{Grant: grant}
}

func RunCurrentIdentity(ctx context.Context, deps InitializeDeps) IdentityResult {
	if deps.Identity == nil {
		return IdentityResult{Err: deps.Kinds.Unavailable}
	}

	ident, timedOut, err := awaitIdentity(ctx, deps.Timeout, deps.Kinds, deps.Identity)
	if err != nil {
		return IdentityResult{TimedOut: timedOut, Err: err}
	}
	return IdentityResult{Identity: ident}
}
