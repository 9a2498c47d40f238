package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// Kinds carries the taxonomy sentinels injected by the root package so flow
// code stays free of upward imports.
type Kinds struct {
	// Unavailable is returned when the provider does not answer within the
	// bounded wait.
	Unavailable error
	// Unknown is returned when the provider answered with something the
	// contract does not allow, such as a nil grant with a nil error.
	Unknown error
}

// Deps groups every flow's dependency set, wired once at Build.
type Deps struct {
	Initialize InitializeDeps
	Login      LoginDeps
	Signup     SignupDeps
	Logout     LogoutDeps
	Refresh    RefreshDeps
	Password   PasswordDeps
}

// boundedContext derives the call context every flow hands to the provider.
func boundedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// awaitGrant runs a grant-returning provider call under the bounded wait.
// A provider that ignores its context and hangs is abandoned once the wait
// expires; its goroutine finishes into a buffered channel and is collected.
func awaitGrant(ctx context.Context, timeout time.Duration, kinds Kinds, call func(context.Context) (*session.Grant, error)) (*session.Grant, bool, error) {
	callCtx, cancel := boundedContext(ctx, timeout)
	defer cancel()

	type outcome struct {
		grant *session.Grant
		err   error
	}
	ch := make(chan outcome, 1)
	go func() {
		grant, err := call(callCtx)
		ch <- outcome{grant: grant, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return nil, true, kinds.Unavailable
			}
			return nil, false, out.err
		}
		return out.grant, false, nil
	case <-callCtx.Done():
		timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
		return nil, timedOut, kinds.Unavailable
	}
}

// awaitIdentity is awaitGrant for identity-returning calls.
func awaitIdentity(ctx context.Context, timeout time.Duration, kinds Kinds, call func(context.Context) (*session.Identity, error)) (*session.Identity, bool, error) {
	callCtx, cancel := boundedContext(ctx, timeout)
	defer cancel()

	type outcome struct {
		ident *session.Identity
		err   error
	}
	ch := make(chan outcome, 1)
	go func() {
		ident, err := call(callCtx)
		ch <- outcome{ident: ident, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return nil, true, kinds.Unavailable
			}
			return nil, false, out.err
		}
		return out.ident, false, nil
	case <-callCtx.Done():
		timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
		return nil, timedOut, kinds.Unavailable
	}
}

// awaitTokens is awaitGrant for token-returning calls.
func awaitTokens(ctx context.Context, timeout time.Duration, kinds Kinds, call func(context.Context) (*session.TokenPair, error)) (*session.TokenPair, bool, error) {
	callCtx, cancel := boundedContext(ctx, timeout)
	defer cancel()

	type outcome struct {
		tokens *session.TokenPair
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		tokens, err := call(callCtx)
		ch <- outcome{tokens: tokens, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return nil, true, kinds.Unavailable
			}
			return nil, false, out.err
		}
		return out.tokens, false, nil
	case <-callCtx.Done():
		timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
		return nil, timedOut, kinds.Unavailable
	}
}

// awaitErr is awaitGrant for calls that only report success or failure.
func awaitErr(ctx context.Context, timeout time.Duration, kinds Kinds, call func(context.Context) error) (bool, error) {
	callCtx, cancel := boundedContext(ctx, timeout)
	defer cancel()

	ch := make(chan error, 1)
	go func() {
		ch <- call(callCtx)
	}()

	select {
	case err := <-ch:
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return true, kinds.Unavailable
			}
			return false, err
		}
		return false, nil
	case <-callCtx.Done():
		timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
		return timedOut, kinds.Unavailable
	}
}
