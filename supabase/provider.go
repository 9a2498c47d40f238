package supabase

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/persist"
)

// Provider defines a public type used by goSession APIs.
//
// Provider instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Provider implements the goSession provider port against a Supabase GoTrue
// endpoint. It holds the live token pair and identity, mirrors them into an
// optional persist.Store, and can renew tokens in the background via
// [WithAutoRefresh].
type Provider struct {
	cfg        Config
	client     gotrue.Client
	store      persist.Store
	httpClient *http.Client

	autoRefresh   bool
	refreshLeeway time.Duration

	mu         sync.Mutex
	tokens     *goSession.TokenPair
	identity   *goSession.Identity
	subs       map[uint64]func(goSession.SessionEvent)
	nextSub    uint64
	timer      *time.Timer
	refreshGen uint64
	closed     bool
}

// Option defines a public type used by goSession APIs.
//
// Option instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Option func(*Provider)

// WithPersistence describes the withpersistence operation and its observable behavior.
//
// WithPersistence may return an error when input validation, dependency calls, or security checks fail.
// WithPersistence does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Saved sessions are restored on Initialize and updated after every
// successful login, signup, and refresh. Store failures never fail the
// operation that triggered them; they are logged and skipped.
func WithPersistence(store persist.Store) Option {
	return func(p *Provider) {
		p.store = store
	}
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient may return an error when input validation, dependency calls, or security checks fail.
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = hc
	}
}

// WithAutoRefresh describes the withautorefresh operation and its observable behavior.
//
// WithAutoRefresh may return an error when input validation, dependency calls, or security checks fail.
// WithAutoRefresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Tokens are renewed leeway before expiry, and the outcome is reported
// through OnSessionChange: a refreshed pair as a token refresh, a revoked
// session as a sign-out.
func WithAutoRefresh(leeway time.Duration) Option {
	return func(p *Provider) {
		p.autoRefresh = true
		p.refreshLeeway = leeway
	}
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config, opts ...Option) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		cfg:  cfg,
		subs: map[uint64]func(goSession.SessionEvent){},
	}
	for _, opt := range opts {
		opt(p)
	}

	client := gotrue.New(projectRef(cfg.URL), cfg.AnonKey).
		WithCustomGoTrueURL(authURL(cfg.URL))
	if p.httpClient != nil {
		client = client.WithClient(*p.httpClient)
	}
	p.client = client

	return p, nil
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Close stops the background refresh. It does not sign the session out.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopRefreshLocked()
}

// Initialize describes the initialize operation and its observable behavior.
//
// Initialize may return an error when input validation, dependency calls, or security checks fail.
// Initialize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Initialize restores the persisted session when one exists. A record with a
// refresh token is exchanged for fresh tokens; one holding only a still
// valid access token is adopted as is. A missing, unreadable, or revoked
// record restores nothing and returns (nil, nil). Only an unreachable
// identity service is an error, so the caller can distinguish "no session"
// from "cannot know yet".
func (p *Provider) Initialize(ctx context.Context) (*goSession.Grant, error) {
	if p.store == nil {
		return nil, nil
	}

	rec, err := p.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, persist.ErrNotFound) {
			// Unreadable record: drop it so the next start is clean.
			p.clearPersisted(ctx)
		}
		return nil, nil
	}

	if rec.Tokens.RefreshToken == "" {
		if rec.Tokens.Valid(time.Now(), 0) {
			ident := rec.Identity.Clone()
			pair := rec.Tokens
			grant := goSession.Grant{Identity: ident, Tokens: &pair}
			p.setLocal(&grant)
			return &grant, nil
		}
		p.clearPersisted(ctx)
		return nil, nil
	}

	resp, err := p.client.RefreshToken(rec.Tokens.RefreshToken)
	if err != nil {
		perr := classify(err)
		if errors.Is(perr, goSession.ErrProviderUnavailable) {
			return nil, perr
		}
		// Rotated or revoked since it was saved. Forget it.
		p.clearPersisted(ctx)
		return nil, nil
	}

	grant := grantFromSession(resp.Session)
	p.setLocal(&grant)
	p.persistGrant(ctx, &grant)
	return &grant, nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) Login(ctx context.Context, email, password string) (*goSession.Grant, error) {
	resp, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, classify(err)
	}

	grant := grantFromSession(resp.Session)
	p.setLocal(&grant)
	p.persistGrant(ctx, &grant)
	return &grant, nil
}

// Signup describes the signup operation and its observable behavior.
//
// Signup may return an error when input validation, dependency calls, or security checks fail.
// Signup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Projects with email confirmation enabled answer without a session; the
// returned grant then carries the identity and nil tokens, and nothing is
// adopted locally until the user confirms and logs in.
func (p *Provider) Signup(ctx context.Context, email, password string, metadata map[string]any) (*goSession.Grant, error) {
	req := types.SignupRequest{
		Email:    email,
		Password: password,
	}
	if len(metadata) > 0 {
		req.Data = metadata
	}

	resp, err := p.client.Signup(req)
	if err != nil {
		return nil, classify(err)
	}

	if resp.Session.AccessToken == "" {
		return &goSession.Grant{Identity: identityFromUser(resp.User)}, nil
	}

	grant := grantFromSession(resp.Session)
	p.setLocal(&grant)
	p.persistGrant(ctx, &grant)
	return &grant, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Local state and the persisted record clear no matter what the revocation
// call answers; the error only reports that the server side may still hold
// a live session.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	var accessToken string
	if p.tokens != nil {
		accessToken = p.tokens.AccessToken
	}
	p.mu.Unlock()

	var remoteErr error
	if accessToken != "" {
		if err := p.client.WithToken(accessToken).Logout(); err != nil {
			remoteErr = classify(err)
		}
	}

	p.clearLocal()
	p.clearPersisted(ctx)
	return remoteErr
}

// CurrentIdentity describes the current identity operation and its observable behavior.
//
// CurrentIdentity may return an error when input validation, dependency calls, or security checks fail.
// CurrentIdentity does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// (nil, nil) means no session is held or the held one was rejected.
func (p *Provider) CurrentIdentity(ctx context.Context) (*goSession.Identity, error) {
	p.mu.Lock()
	var accessToken string
	if p.tokens != nil {
		accessToken = p.tokens.AccessToken
	}
	p.mu.Unlock()

	if accessToken == "" {
		return nil, nil
	}

	resp, err := p.client.WithToken(accessToken).GetUser()
	if err != nil {
		perr := classify(err)
		if errors.Is(perr, goSession.ErrNoSession) {
			return nil, nil
		}
		return nil, perr
	}

	ident := identityFromUser(resp.User)

	p.mu.Lock()
	if p.tokens != nil && p.tokens.AccessToken == accessToken {
		stored := ident.Clone()
		p.identity = &stored
	}
	p.mu.Unlock()

	return &ident, nil
}

// AccessToken describes the access token operation and its observable behavior.
//
// AccessToken may return an error when input validation, dependency calls, or security checks fail.
// AccessToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) AccessToken() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokens == nil || !p.tokens.Valid(time.Now(), 0) {
		return "", false
	}
	return p.tokens.AccessToken, true
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) Refresh(ctx context.Context) (*goSession.TokenPair, error) {
	p.mu.Lock()
	var refreshToken string
	if p.tokens != nil {
		refreshToken = p.tokens.RefreshToken
	}
	p.mu.Unlock()

	if refreshToken == "" {
		return nil, &goSession.ProviderError{
			Kind:    goSession.ErrNoSession,
			Message: "no refresh token held",
		}
	}

	resp, err := p.client.RefreshToken(refreshToken)
	if err != nil {
		return nil, classify(err)
	}

	grant := grantFromSession(resp.Session)
	p.setLocal(&grant)
	p.persistGrant(ctx, &grant)

	pair := *grant.Tokens
	return &pair, nil
}

// RequestPasswordReset describes the request password reset operation and its observable behavior.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) RequestPasswordReset(ctx context.Context, email string) error {
	if err := p.client.Recover(types.RecoverRequest{Email: email}); err != nil {
		return classify(err)
	}
	return nil
}

// UpdatePassword describes the update password operation and its observable behavior.
//
// UpdatePassword may return an error when input validation, dependency calls, or security checks fail.
// UpdatePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) UpdatePassword(ctx context.Context, newPassword string) error {
	p.mu.Lock()
	var accessToken string
	if p.tokens != nil {
		accessToken = p.tokens.AccessToken
	}
	p.mu.Unlock()

	if accessToken == "" {
		return &goSession.ProviderError{
			Kind:    goSession.ErrNoSession,
			Message: "no session for password update",
		}
	}

	req := types.UpdateUserRequest{Password: &newPassword}
	if _, err := p.client.WithToken(accessToken).UpdateUser(req); err != nil {
		return classify(err)
	}
	return nil
}

// OnSessionChange describes the on session change operation and its observable behavior.
//
// OnSessionChange may return an error when input validation, dependency calls, or security checks fail.
// OnSessionChange does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) OnSessionChange(fn func(goSession.SessionEvent)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Provider) notify(ev goSession.SessionEvent) {
	p.mu.Lock()
	fns := make([]func(goSession.SessionEvent), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (p *Provider) setLocal(grant *goSession.Grant) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ident := grant.Identity.Clone()
	p.identity = &ident
	if grant.Tokens != nil {
		pair := *grant.Tokens
		p.tokens = &pair
	} else {
		p.tokens = nil
	}
	p.scheduleRefreshLocked()
}

func (p *Provider) clearLocal() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.identity = nil
	p.tokens = nil
	p.stopRefreshLocked()
}

func (p *Provider) persistGrant(ctx context.Context, grant *goSession.Grant) {
	if p.store == nil || grant == nil || grant.Tokens == nil {
		return
	}

	rec := persist.Record{
		Identity: grant.Identity.Clone(),
		Tokens:   *grant.Tokens,
		SavedAt:  time.Now().UTC(),
	}
	if err := p.store.Save(ctx, rec); err != nil {
		log.Print("goSession: session record save failed")
	}
}

func (p *Provider) clearPersisted(ctx context.Context) {
	if p.store == nil {
		return
	}
	if err := p.store.Clear(ctx); err != nil {
		log.Print("goSession: session record clear failed")
	}
}
