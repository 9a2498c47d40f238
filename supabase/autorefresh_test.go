package supabase

import (
	"context"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

func waitForEvent(t *testing.T, ch <-chan goSession.SessionEvent, timeout time.Duration) goSession.SessionEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatal("timed out waiting for session change event")
		return goSession.SessionEvent{}
	}
}

func TestAutoRefreshRenewsBeforeExpiry(t *testing.T) {
	stub, srv := newStubGoTrue(t)
	stub.set(func(s *stubGoTrue) { s.expiresIn = 1 })
	p := newTestProvider(t, srv, WithAutoRefresh(500*time.Millisecond))

	events := make(chan goSession.SessionEvent, 4)
	cancel := p.OnSessionChange(func(ev goSession.SessionEvent) { events <- ev })
	defer cancel()

	if _, err := p.Login(context.Background(), "a@b.com", "correct horse"); err != nil {
		t.Fatalf("login: %v", err)
	}

	ev := waitForEvent(t, events, 4*time.Second)
	if ev.Reason != goSession.ReasonTokenRefreshed {
		t.Fatalf("event reason: got %v", ev.Reason)
	}
	if ev.Grant == nil || ev.Grant.Tokens == nil || ev.Grant.Tokens.AccessToken != "access-2" {
		t.Fatalf("event grant: %+v", ev.Grant)
	}

	if tok, ok := p.AccessToken(); !ok || tok != "access-2" {
		t.Fatalf("token after auto refresh: %q %v", tok, ok)
	}
}

func TestAutoRefreshSignsOutWhenRevoked(t *testing.T) {
	stub, srv := newStubGoTrue(t)
	stub.set(func(s *stubGoTrue) {
		s.expiresIn = 1
		s.refreshRevoked = true
	})
	p := newTestProvider(t, srv, WithAutoRefresh(500*time.Millisecond))

	events := make(chan goSession.SessionEvent, 4)
	cancel := p.OnSessionChange(func(ev goSession.SessionEvent) { events <- ev })
	defer cancel()

	if _, err := p.Login(context.Background(), "a@b.com", "correct horse"); err != nil {
		t.Fatalf("login: %v", err)
	}

	ev := waitForEvent(t, events, 4*time.Second)
	if ev.Reason != goSession.ReasonSignedOut {
		t.Fatalf("event reason: got %v", ev.Reason)
	}
	if ev.Grant != nil {
		t.Fatalf("sign-out event must carry no grant: %+v", ev.Grant)
	}

	if _, ok := p.AccessToken(); ok {
		t.Fatal("tokens must clear after forced sign-out")
	}
}

func TestCloseStopsAutoRefresh(t *testing.T) {
	stub, srv := newStubGoTrue(t)
	stub.set(func(s *stubGoTrue) { s.expiresIn = 1 })
	p := newTestProvider(t, srv, WithAutoRefresh(500*time.Millisecond))

	if _, err := p.Login(context.Background(), "a@b.com", "correct horse"); err != nil {
		t.Fatalf("login: %v", err)
	}
	p.Close()

	time.Sleep(1500 * time.Millisecond)

	if _, refreshCalls, _ := stub.counts(); refreshCalls != 0 {
		t.Fatalf("refresh after close: got %d calls", refreshCalls)
	}
}

func TestManualRefreshReschedulesTimer(t *testing.T) {
	stub, srv := newStubGoTrue(t)
	p := newTestProvider(t, srv, WithAutoRefresh(time.Minute))

	if _, err := p.Login(context.Background(), "a@b.com", "correct horse"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// A manager-driven refresh replaces the pair; the timer must follow the
	// new expiry rather than fire for the old one.
	if _, err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	p.mu.Lock()
	hasTimer := p.timer != nil
	p.mu.Unlock()
	if !hasTimer {
		t.Fatal("refresh must leave the auto-refresh timer armed")
	}

	if _, refreshCalls, _ := stub.counts(); refreshCalls != 1 {
		t.Fatalf("refresh calls: got %d want 1", refreshCalls)
	}
}
