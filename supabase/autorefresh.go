package supabase

import (
	"context"
	"errors"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/jwt"
)

const (
	// minRefreshDelay keeps an already-stale pair from hot-looping the
	// refresh endpoint.
	minRefreshDelay = time.Second

	// retryRefreshDelay spaces retries when the identity service is down.
	retryRefreshDelay = 30 * time.Second
)

// scheduleRefreshLocked arms the refresh timer for the current pair. The
// caller must hold p.mu. Pairs without a refresh token or any discoverable
// expiry are not scheduled; external refreshes are their only renewal path.
func (p *Provider) scheduleRefreshLocked() {
	p.stopRefreshLocked()

	if !p.autoRefresh || p.closed || p.tokens == nil || p.tokens.RefreshToken == "" {
		return
	}

	expiry := p.tokens.ExpiresAt
	if expiry.IsZero() {
		if exp, err := jwt.ExpiryOf(p.tokens.AccessToken); err == nil {
			expiry = exp
		}
	}
	if expiry.IsZero() {
		return
	}

	delay := time.Until(expiry) - p.refreshLeeway
	if delay < minRefreshDelay {
		delay = minRefreshDelay
	}

	p.refreshGen++
	gen := p.refreshGen
	p.timer = time.AfterFunc(delay, func() {
		p.autoRefreshFire(gen)
	})
}

// stopRefreshLocked disarms the timer and invalidates any fire already in
// flight. The caller must hold p.mu.
func (p *Provider) stopRefreshLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.refreshGen++
}

func (p *Provider) autoRefreshFire(gen uint64) {
	p.mu.Lock()
	stale := p.closed || gen != p.refreshGen
	p.mu.Unlock()
	if stale {
		return
	}

	pair, err := p.Refresh(context.Background())
	if err == nil {
		p.mu.Lock()
		var ident goSession.Identity
		if p.identity != nil {
			ident = p.identity.Clone()
		}
		p.mu.Unlock()

		p.notify(goSession.SessionEvent{
			Reason: goSession.ReasonTokenRefreshed,
			Grant:  &goSession.Grant{Identity: ident, Tokens: pair},
		})
		return
	}

	if errors.Is(err, goSession.ErrNoSession) || errors.Is(err, goSession.ErrInvalidCredentials) {
		// The provider revoked the session behind our back.
		p.clearLocal()
		p.clearPersisted(context.Background())
		p.notify(goSession.SessionEvent{Reason: goSession.ReasonSignedOut})
		return
	}

	p.mu.Lock()
	if !p.closed && p.tokens != nil {
		p.refreshGen++
		retryGen := p.refreshGen
		p.timer = time.AfterFunc(retryRefreshDelay, func() {
			p.autoRefreshFire(retryGen)
		})
	}
	p.mu.Unlock()
}
