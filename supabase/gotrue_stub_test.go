package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const stubUserID = "a81bc81b-dead-4e5d-abff-90865d1e13b1"

// stubGoTrue is a minimal in-process GoTrue endpoint: one user, real JSON
// shapes, and switchable failure modes.
type stubGoTrue struct {
	t *testing.T

	mu sync.Mutex

	email         string
	password      string
	confirmEmails bool
	expiresIn     int

	refreshRevoked bool
	refreshDown    bool
	logoutFails    bool

	accessSeq    int
	loginCalls   int
	refreshCalls int
	logoutCalls  int
	recoverCalls int
	updateCalls  int
	lastAuth     string
}

func newStubGoTrue(t *testing.T) (*stubGoTrue, *httptest.Server) {
	t.Helper()
	s := &stubGoTrue{
		t:         t,
		email:     "a@b.com",
		password:  "correct horse",
		expiresIn: 3600,
	}
	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *stubGoTrue) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		path := strings.TrimPrefix(r.URL.Path, "/auth/v1")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case path == "/token" && r.URL.Query().Get("grant_type") == "password":
			s.loginCalls++
			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				s.writeError(w, http.StatusBadRequest, "bad request body")
				return
			}
			if body.Email != s.email || body.Password != s.password {
				s.writeError(w, http.StatusBadRequest, "Invalid login credentials")
				return
			}
			s.writeSession(w)

		case path == "/token" && r.URL.Query().Get("grant_type") == "refresh_token":
			s.refreshCalls++
			if s.refreshDown {
				s.writeError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}
			if s.refreshRevoked {
				s.writeError(w, http.StatusBadRequest, "Invalid Refresh Token: Refresh Token Not Found")
				return
			}
			s.writeSession(w)

		case path == "/signup":
			if s.confirmEmails {
				s.writeUser(w, false)
				return
			}
			s.writeSession(w)

		case path == "/user" && r.Method == http.MethodGet:
			s.lastAuth = r.Header.Get("Authorization")
			s.writeUser(w, true)

		case path == "/user" && r.Method == http.MethodPut:
			s.updateCalls++
			s.lastAuth = r.Header.Get("Authorization")
			s.writeUser(w, true)

		case path == "/recover":
			s.recoverCalls++
			fmt.Fprint(w, `{}`)

		case path == "/logout":
			s.logoutCalls++
			s.lastAuth = r.Header.Get("Authorization")
			if s.logoutFails {
				s.writeError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			s.writeError(w, http.StatusNotFound, "unknown route "+r.URL.Path)
		}
	})
}

func (s *stubGoTrue) writeSession(w http.ResponseWriter) {
	s.accessSeq++
	fmt.Fprintf(w,
		`{"access_token":"access-%d","token_type":"bearer","expires_in":%d,"refresh_token":"refresh-%d","user":%s}`,
		s.accessSeq, s.expiresIn, s.accessSeq, s.userJSON(true),
	)
}

func (s *stubGoTrue) writeUser(w http.ResponseWriter, confirmed bool) {
	fmt.Fprint(w, s.userJSON(confirmed))
}

func (s *stubGoTrue) userJSON(confirmed bool) string {
	confirmedAt := ""
	if confirmed {
		confirmedAt = `,"email_confirmed_at":"2024-01-01T00:00:00Z"`
	}
	return fmt.Sprintf(`{"id":%q,"email":%q,"user_metadata":{"plan":"pro"}%s}`, stubUserID, s.email, confirmedAt)
}

func (s *stubGoTrue) writeError(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"code":%d,"msg":%q}`, code, msg)
}

func (s *stubGoTrue) counts() (login, refresh, logout int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls, s.refreshCalls, s.logoutCalls
}

func (s *stubGoTrue) authHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

func (s *stubGoTrue) set(fn func(*stubGoTrue)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func newTestProvider(t *testing.T, srv *httptest.Server, opts ...Option) *Provider {
	t.Helper()
	p, err := New(Config{URL: srv.URL, AnonKey: "anon-key"}, opts...)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}
