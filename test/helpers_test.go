//go:build integration
// +build integration

package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/persist"
	"github.com/MrEthical07/goSession/supabase"
)

const (
	integrationUserID   = "a81bc81b-dead-4e5d-abff-90865d1e13b1"
	integrationEmail    = "alice@example.com"
	integrationPassword = "correct-horse"
)

// fakeIdentity speaks the GoTrue wire subset the Supabase provider uses.
// Tokens are sequential; only the most recently issued refresh token is
// accepted for exchange.
type fakeIdentity struct {
	mu           sync.Mutex
	seq          int
	access       string
	refresh      string
	revoked      bool
	loginCalls   int
	refreshCalls int
	logoutCalls  int
}

func (f *fakeIdentity) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/auth/v1")
		switch {
		case path == "/token" && r.URL.Query().Get("grant_type") == "password":
			f.handlePassword(w, r)
		case path == "/token" && r.URL.Query().Get("grant_type") == "refresh_token":
			f.handleRefresh(w, r)
		case path == "/signup":
			f.mu.Lock()
			f.writeSessionLocked(w)
			f.mu.Unlock()
		case path == "/user" && r.Method == http.MethodGet:
			f.handleGetUser(w, r)
		case path == "/user" && r.Method == http.MethodPut:
			writeIdentityJSON(w, http.StatusOK, userBody())
		case path == "/logout":
			f.mu.Lock()
			f.logoutCalls++
			f.access = ""
			f.refresh = ""
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		case path == "/recover":
			writeIdentityJSON(w, http.StatusOK, map[string]any{})
		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeIdentity) handlePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
		body.Email != integrationEmail || body.Password != integrationPassword {
		writeIdentityJSON(w, http.StatusBadRequest, map[string]any{
			"code": 400, "msg": "Invalid login credentials",
		})
		return
	}
	f.mu.Lock()
	f.loginCalls++
	f.writeSessionLocked(w)
	f.mu.Unlock()
}

func (f *fakeIdentity) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if err != nil || f.revoked || body.RefreshToken == "" || body.RefreshToken != f.refresh {
		writeIdentityJSON(w, http.StatusBadRequest, map[string]any{
			"code": 400, "msg": "Invalid Refresh Token: Refresh Token Not Found",
		})
		return
	}
	f.writeSessionLocked(w)
}

func (f *fakeIdentity) handleGetUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	current := f.access
	f.mu.Unlock()
	if current == "" || r.Header.Get("Authorization") != "Bearer "+current {
		writeIdentityJSON(w, http.StatusUnauthorized, map[string]any{
			"code": 401, "msg": "invalid JWT",
		})
		return
	}
	writeIdentityJSON(w, http.StatusOK, userBody())
}

// writeSessionLocked issues the next session. Callers hold f.mu.
func (f *fakeIdentity) writeSessionLocked(w http.ResponseWriter) {
	f.seq++
	f.access = fmt.Sprintf("it-access-%d", f.seq)
	f.refresh = fmt.Sprintf("it-refresh-%d", f.seq)
	writeIdentityJSON(w, http.StatusOK, map[string]any{
		"access_token":  f.access,
		"token_type":    "bearer",
		"expires_in":    3600,
		"refresh_token": f.refresh,
		"user":          userBody(),
	})
}

func (f *fakeIdentity) currentAccess() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeIdentity) revoke() {
	f.mu.Lock()
	f.revoked = true
	f.mu.Unlock()
}

func (f *fakeIdentity) counts() (login, refresh, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.refreshCalls, f.logoutCalls
}

func userBody() map[string]any {
	return map[string]any{
		"id":                 integrationUserID,
		"email":              integrationEmail,
		"email_confirmed_at": time.Now().UTC().Format(time.RFC3339),
	}
}

func writeIdentityJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newIdentityBackend starts a fake identity backend that lives until the
// test ends, so several managers can share one backend.
func newIdentityBackend(t *testing.T) (*fakeIdentity, *httptest.Server) {
	t.Helper()

	fake := &fakeIdentity{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return fake, srv
}

// newManagerFor wires a manager to the given backend through the real
// Supabase adapter, persisting into the given record store. The returned
// cleanup tears down the manager and provider but not the backend.
func newManagerFor(t *testing.T, srv *httptest.Server, records persist.Store) (*goSession.Manager, func()) {
	t.Helper()

	opts := []supabase.Option{}
	if records != nil {
		opts = append(opts, supabase.WithPersistence(records))
	}
	provider, err := supabase.New(supabase.Config{URL: srv.URL, AnonKey: "anon-key"}, opts...)
	if err != nil {
		t.Fatalf("provider init failed: %v", err)
	}

	cfg := goSession.DefaultConfig()
	cfg.Operations.ProviderTimeout = 5 * time.Second
	cfg.Metrics.Enabled = true

	manager, err := goSession.New().WithProvider(provider).WithConfig(cfg).Build()
	if err != nil {
		provider.Close()
		t.Fatalf("manager build failed: %v", err)
	}

	return manager, func() {
		manager.Close()
		provider.Close()
	}
}

// newIntegrationManager is the single-manager convenience wrapper.
func newIntegrationManager(t *testing.T, records persist.Store) (*goSession.Manager, *fakeIdentity, func()) {
	t.Helper()

	fake, srv := newIdentityBackend(t)
	manager, cleanup := newManagerFor(t, srv, records)
	return manager, fake, cleanup
}
