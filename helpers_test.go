package goSession

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProvider is a scriptable Provider. Zero-value behavior: nothing to
// restore, logins and signups succeed with testGrant, everything else
// succeeds without effect. Individual calls are overridden per test through
// the fn fields.
type fakeProvider struct {
	initializeFn func(ctx context.Context) (*Grant, error)
	loginFn      func(ctx context.Context, email, password string) (*Grant, error)
	signupFn     func(ctx context.Context, email, password string, metadata map[string]any) (*Grant, error)
	logoutFn     func(ctx context.Context) error
	identityFn   func(ctx context.Context) (*Identity, error)
	refreshFn    func(ctx context.Context) (*TokenPair, error)
	resetFn      func(ctx context.Context, email string) error
	updateFn     func(ctx context.Context, newPassword string) error

	loginCalls   atomic.Int64
	signupCalls  atomic.Int64
	logoutCalls  atomic.Int64
	refreshCalls atomic.Int64
	resetCalls   atomic.Int64
	updateCalls  atomic.Int64

	mu      sync.Mutex
	subs    map[int]func(SessionEvent)
	nextSub int
}

func testGrant(email string) *Grant {
	return &Grant{
		Identity: Identity{
			ID:            "user-1",
			Email:         email,
			EmailVerified: true,
		},
		Tokens: &TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	}
}

func testPair(access string) *TokenPair {
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: "refresh-" + access,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func (f *fakeProvider) Initialize(ctx context.Context) (*Grant, error) {
	if f.initializeFn != nil {
		return f.initializeFn(ctx)
	}
	return nil, nil
}

func (f *fakeProvider) Login(ctx context.Context, email, password string) (*Grant, error) {
	f.loginCalls.Add(1)
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return testGrant(email), nil
}

func (f *fakeProvider) Signup(ctx context.Context, email, password string, metadata map[string]any) (*Grant, error) {
	f.signupCalls.Add(1)
	if f.signupFn != nil {
		return f.signupFn(ctx, email, password, metadata)
	}
	return testGrant(email), nil
}

func (f *fakeProvider) Logout(ctx context.Context) error {
	f.logoutCalls.Add(1)
	if f.logoutFn != nil {
		return f.logoutFn(ctx)
	}
	return nil
}

func (f *fakeProvider) CurrentIdentity(ctx context.Context) (*Identity, error) {
	if f.identityFn != nil {
		return f.identityFn(ctx)
	}
	return nil, nil
}

func (f *fakeProvider) AccessToken() (string, bool) {
	return "", false
}

func (f *fakeProvider) Refresh(ctx context.Context) (*TokenPair, error) {
	f.refreshCalls.Add(1)
	if f.refreshFn != nil {
		return f.refreshFn(ctx)
	}
	return testPair("access-2"), nil
}

func (f *fakeProvider) RequestPasswordReset(ctx context.Context, email string) error {
	f.resetCalls.Add(1)
	if f.resetFn != nil {
		return f.resetFn(ctx, email)
	}
	return nil
}

func (f *fakeProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	f.updateCalls.Add(1)
	if f.updateFn != nil {
		return f.updateFn(ctx, newPassword)
	}
	return nil
}

func (f *fakeProvider) OnSessionChange(fn func(SessionEvent)) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = map[int]func(SessionEvent){}
	}
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// fire delivers a provider-originated change to every subscriber, the way a
// background refresh would.
func (f *fakeProvider) fire(ev SessionEvent) {
	f.mu.Lock()
	fns := make([]func(SessionEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (f *fakeProvider) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func newTestManager(t *testing.T, fp *fakeProvider, mutate func(*Config)) *Manager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Operations.ProviderTimeout = 2 * time.Second
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := New().WithProvider(fp).WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func startedManager(t *testing.T, fp *fakeProvider, mutate func(*Config)) *Manager {
	t.Helper()
	m := newTestManager(t, fp, mutate)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start manager: %v", err)
	}
	return m
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func counterValue(m *Manager, id MetricID) uint64 {
	return m.MetricsSnapshot().Counters[id]
}
