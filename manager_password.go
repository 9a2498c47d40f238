package goSession

import "context"

// RequestPasswordReset describes the request password reset operation and its observable behavior.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The reset request never touches the snapshot and does not take the
// in-flight guard: it can run while a login or refresh is active because it
// mutates nothing locally.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	if m == nil {
		return ErrNotStarted
	}
	if err := m.operational(); err != nil {
		return err
	}

	res := m.flows.RequestPasswordReset(ctx, email)
	if res.Err != nil {
		m.metricInc(MetricPasswordResetFailure)
		if res.TimedOut {
			m.metricInc(MetricProviderTimeout)
		}
		m.emitEvent(ctx, eventPasswordResetFailure, false, "", email, res.Err, nil)
		return res.Err
	}

	m.metricInc(MetricPasswordResetRequested)
	m.emitEvent(ctx, eventPasswordResetRequested, true, "", email, nil, nil)
	return nil
}

// UpdatePassword describes the update password operation and its observable behavior.
//
// UpdatePassword may return an error when input validation, dependency calls, or security checks fail.
// UpdatePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// UpdatePassword requires an authenticated session on the provider side and
// takes the in-flight guard because some providers rotate tokens on
// password change.
func (m *Manager) UpdatePassword(ctx context.Context, newPassword string) error {
	if m == nil {
		return ErrNotStarted
	}
	if err := m.operational(); err != nil {
		return err
	}
	if !m.beginOp() {
		return m.rejectBusy(ctx, "update_password", "")
	}
	defer m.endOp()

	snap := m.store.Snapshot()
	var userID, email string
	if snap.Identity != nil {
		userID = snap.Identity.ID
		email = snap.Identity.Email
	}

	m.store.SetLoading(true)
	res := m.flows.UpdatePassword(ctx, newPassword)
	m.store.SetLoading(false)

	if res.Err != nil {
		m.metricInc(MetricPasswordUpdateFailure)
		if res.TimedOut {
			m.metricInc(MetricProviderTimeout)
		}
		m.emitEvent(ctx, eventPasswordUpdateFailure, false, userID, email, res.Err, nil)
		return res.Err
	}

	m.metricInc(MetricPasswordUpdated)
	m.emitEvent(ctx, eventPasswordUpdated, true, userID, email, nil, nil)
	return nil
}
