package goSession

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestConcurrentLoginSecondRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fp := &fakeProvider{
		loginFn: func(ctx context.Context, email, password string) (*Grant, error) {
			close(entered)
			<-release
			return testGrant(email), nil
		},
	}
	m := startedManager(t, fp, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "first@example.com", "pw")
		firstErr <- err
	}()
	<-entered

	snap, err := m.Login(context.Background(), "second@example.com", "pw")
	if !errors.Is(err, ErrOperationInProgress) {
		t.Fatalf("second Login() = %v, want ErrOperationInProgress", err)
	}
	if snap.Status == StatusAuthenticated {
		t.Fatal("rejected login produced an authenticated snapshot")
	}

	close(release)
	if err := <-firstErr; err != nil {
		t.Fatalf("first Login() = %v", err)
	}
	if snap := m.Snapshot(); snap.Identity == nil || snap.Identity.Email != "first@example.com" {
		t.Fatalf("winning login not reflected: %+v", snap.Identity)
	}
	if got := fp.loginCalls.Load(); got != 1 {
		t.Fatalf("provider login calls = %d, want 1 (rejected call must not reach provider)", got)
	}
	if got := counterValue(m, MetricOperationRejectedBusy); got != 1 {
		t.Fatalf("busy rejection counter = %d, want 1", got)
	}
}

func TestRejectedOperationDoesNotPoisonGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fp := &fakeProvider{
		refreshFn: func(ctx context.Context) (*TokenPair, error) {
			close(entered)
			<-release
			return testPair("access-2"), nil
		},
	}
	fp.initializeFn = func(ctx context.Context) (*Grant, error) {
		return testGrant("user@example.com"), nil
	}
	m := startedManager(t, fp, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := m.Refresh(context.Background()); err != nil {
			t.Errorf("Refresh() = %v", err)
		}
	}()
	<-entered

	if err := m.Logout(context.Background()); !errors.Is(err, ErrOperationInProgress) {
		t.Fatalf("Logout() during refresh = %v, want ErrOperationInProgress", err)
	}

	close(release)
	<-done

	// Guard released; the next operation goes through.
	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() after release = %v", err)
	}
	if snap := m.Snapshot(); snap.Status != StatusAnonymous {
		t.Fatalf("Status = %v, want StatusAnonymous", snap.Status)
	}
}

func TestSubscribersSeeMonotonicSeq(t *testing.T) {
	fp := &fakeProvider{}
	m := startedManager(t, fp, nil)

	var mu sync.Mutex
	var seqs []uint64
	cancel := m.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seqs = append(seqs, snap.Seq)
		mu.Unlock()
	})
	defer cancel()

	ctx := context.Background()
	if _, err := m.Login(ctx, "user@example.com", "pw"); err != nil {
		t.Fatalf("Login() = %v", err)
	}
	if _, err := m.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() = %v", err)
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout() = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seqs) == 0 {
		t.Fatal("subscriber saw no publications")
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] != seqs[i-1]+1 {
			t.Fatalf("seq gap at %d: %d -> %d", i, seqs[i-1], seqs[i])
		}
	}
}

func TestCanceledSubscriberStopsReceiving(t *testing.T) {
	fp := &fakeProvider{}
	m := startedManager(t, fp, nil)

	var mu sync.Mutex
	calls := 0
	cancel := m.Subscribe(func(Snapshot) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	ctx := context.Background()
	if _, err := m.Login(ctx, "user@example.com", "pw"); err != nil {
		t.Fatalf("Login() = %v", err)
	}
	mu.Lock()
	seen := calls
	mu.Unlock()
	if seen == 0 {
		t.Fatal("subscriber saw no publications before cancel")
	}

	cancel()
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout() = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != seen {
		t.Fatalf("subscriber called %d times after cancel, want 0", calls-seen)
	}
}

func TestSnapshotSafeDuringOperations(t *testing.T) {
	fp := &fakeProvider{}
	m := startedManager(t, fp, nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					snap := m.Snapshot()
					if snap.Status == StatusAuthenticated && snap.Tokens == nil {
						t.Error("authenticated snapshot without tokens")
						return
					}
				}
			}
		}()
	}

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if _, err := m.Login(ctx, "user@example.com", "pw"); err != nil {
			t.Fatalf("Login() = %v", err)
		}
		if err := m.Logout(ctx); err != nil {
			t.Fatalf("Logout() = %v", err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestSnapshotIsolatedFromCallerMutation(t *testing.T) {
	fp := &fakeProvider{}
	m := startedManager(t, fp, nil)

	if _, err := m.Login(context.Background(), "user@example.com", "pw"); err != nil {
		t.Fatalf("Login() = %v", err)
	}

	snap := m.Snapshot()
	snap.Identity.Email = "tampered@example.com"
	snap.Tokens.AccessToken = "tampered"

	clean := m.Snapshot()
	if clean.Identity.Email != "user@example.com" {
		t.Fatalf("caller mutation leaked into store: %q", clean.Identity.Email)
	}
	if clean.Tokens.AccessToken != "access-1" {
		t.Fatalf("caller mutation leaked into tokens: %q", clean.Tokens.AccessToken)
	}
}
