package goSession

import (
	"context"
	"time"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Login authenticates against the provider under the bounded wait. On
// failure the pre-login snapshot survives untouched except for the loading
// flag. The returned snapshot is the post-operation state either way.
func (m *Manager) Login(ctx context.Context, email, password string) (Snapshot, error) {
	if m == nil {
		return Snapshot{}, ErrNotStarted
	}
	if err := m.operational(); err != nil {
		return m.store.Snapshot(), err
	}
	if !m.beginOp() {
		return m.store.Snapshot(), m.rejectBusy(ctx, "login", email)
	}
	defer m.endOp()

	start := time.Now()
	m.store.SetLoading(true)

	res := m.flows.Login(ctx, email, password)
	if res.Err != nil {
		m.store.SetLoading(false)
		m.metricInc(MetricLoginFailure)
		if res.TimedOut {
			m.metricInc(MetricProviderTimeout)
		}
		m.emitEvent(ctx, eventLoginFailure, false, "", email, res.Err, nil)
		m.observeLatency(MetricLoginLatency, time.Since(start))
		return m.store.Snapshot(), res.Err
	}

	m.store.SetAuthenticated(*res.Grant)
	m.store.SetLoading(false)
	m.metricInc(MetricLoginSuccess)
	m.emitEvent(ctx, eventLoginSuccess, true, res.Grant.Identity.ID, res.Grant.Identity.Email, nil, nil)
	m.observeLatency(MetricLoginLatency, time.Since(start))
	return m.store.Snapshot(), nil
}

// Signup describes the signup operation and its observable behavior.
//
// Signup may return an error when input validation, dependency calls, or security checks fail.
// Signup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// When the provider requires email verification before issuing tokens the
// result reports PendingVerification and the snapshot stays anonymous.
// Otherwise signup behaves like login: the grant is published and the
// snapshot turns authenticated.
func (m *Manager) Signup(ctx context.Context, email, password string, metadata map[string]any) (SignupResult, error) {
	if m == nil {
		return SignupResult{}, ErrNotStarted
	}
	if err := m.operational(); err != nil {
		return SignupResult{Snapshot: m.store.Snapshot()}, err
	}
	if !m.beginOp() {
		return SignupResult{Snapshot: m.store.Snapshot()}, m.rejectBusy(ctx, "signup", email)
	}
	defer m.endOp()

	m.store.SetLoading(true)

	res := m.flows.Signup(ctx, email, password, metadata)
	if res.Err != nil {
		m.store.SetLoading(false)
		m.metricInc(MetricSignupFailure)
		if res.TimedOut {
			m.metricInc(MetricProviderTimeout)
		}
		m.emitEvent(ctx, eventSignupFailure, false, "", email, res.Err, nil)
		return SignupResult{Snapshot: m.store.Snapshot()}, res.Err
	}

	if res.Pending {
		m.store.SetLoading(false)
		m.metricInc(MetricSignupPending)
		m.emitEvent(ctx, eventSignupPending, true, res.Grant.Identity.ID, res.Grant.Identity.Email, nil, nil)
		ident := res.Grant.Identity.Clone()
		return SignupResult{
			PendingVerification: true,
			Identity:            &ident,
			Snapshot:            m.store.Snapshot(),
		}, nil
	}

	m.store.SetAuthenticated(*res.Grant)
	m.store.SetLoading(false)
	m.metricInc(MetricSignupSuccess)
	m.emitEvent(ctx, eventSignupSuccess, true, res.Grant.Identity.ID, res.Grant.Identity.Email, nil, nil)
	ident := res.Grant.Identity.Clone()
	return SignupResult{
		Identity: &ident,
		Snapshot: m.store.Snapshot(),
	}, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The local session clears no matter what the provider answers: a failed or
// timed-out revocation still leaves the snapshot anonymous, and the error
// reports that the server side may still hold a live session.
func (m *Manager) Logout(ctx context.Context) error {
	if m == nil {
		return ErrNotStarted
	}
	if err := m.operational(); err != nil {
		return err
	}
	if !m.beginOp() {
		return m.rejectBusy(ctx, "logout", "")
	}
	defer m.endOp()

	prior := m.store.Snapshot()
	var userID, email string
	if prior.Identity != nil {
		userID = prior.Identity.ID
		email = prior.Identity.Email
	}

	m.store.SetLoading(true)
	res := m.flows.Logout(ctx)

	// Local state clears regardless of the provider outcome.
	m.store.Clear()
	m.store.SetLoading(false)

	if res.Err != nil {
		m.metricInc(MetricLogoutForced)
		if res.TimedOut {
			m.metricInc(MetricProviderTimeout)
		}
		m.emitEvent(ctx, eventLogoutForced, false, userID, email, res.Err, func() map[string]string {
			return map[string]string{
				"local_state": "cleared",
			}
		})
		return res.Err
	}

	m.metricInc(MetricLogoutSuccess)
	m.emitEvent(ctx, eventLogoutSuccess, true, userID, email, nil, nil)
	return nil
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Refresh rotates tokens in place: identity and status never change, only
// the token pair. Failure leaves the previous tokens untouched so callers
// can keep using them until the provider invalidates them.
func (m *Manager) Refresh(ctx context.Context) (TokenPair, error) {
	if m == nil {
		return TokenPair{}, ErrNotStarted
	}
	if err := m.operational(); err != nil {
		return TokenPair{}, err
	}
	if !m.beginOp() {
		return TokenPair{}, m.rejectBusy(ctx, "refresh", "")
	}
	defer m.endOp()

	prior := m.store.Snapshot()
	var userID, email string
	if prior.Identity != nil {
		userID = prior.Identity.ID
		email = prior.Identity.Email
	}

	start := time.Now()
	m.store.SetLoading(true)

	res := m.flows.Refresh(ctx)
	if res.Err != nil {
		m.store.SetLoading(false)
		m.metricInc(MetricRefreshFailure)
		if res.TimedOut {
			m.metricInc(MetricProviderTimeout)
		}
		m.emitEvent(ctx, eventRefreshFailure, false, userID, email, res.Err, nil)
		m.observeLatency(MetricRefreshLatency, time.Since(start))
		return TokenPair{}, res.Err
	}

	m.store.SetTokens(*res.Tokens)
	m.store.SetLoading(false)
	m.metricInc(MetricRefreshSuccess)
	m.emitEvent(ctx, eventRefreshSuccess, true, userID, email, nil, nil)
	m.observeLatency(MetricRefreshLatency, time.Since(start))
	return *res.Tokens, nil
}
