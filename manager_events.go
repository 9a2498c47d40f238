package goSession

import (
	"context"
	"errors"
	"time"
)

// Event types emitted by the Manager. Names are stable: downstream
// pipelines key on them.
const (
	eventStartRestored  = "start_restored"
	eventStartAnonymous = "start_anonymous"

	eventLoginSuccess = "login_success"
	eventLoginFailure = "login_failure"

	eventSignupSuccess = "signup_success"
	eventSignupPending = "signup_pending_verification"
	eventSignupFailure = "signup_failure"

	eventLogoutSuccess = "logout_success"
	eventLogoutForced  = "logout_forced"

	eventRefreshSuccess = "refresh_success"
	eventRefreshFailure = "refresh_failure"

	eventPasswordResetRequested = "password_reset_requested"
	eventPasswordResetFailure   = "password_reset_failure"
	eventPasswordUpdated        = "password_updated"
	eventPasswordUpdateFailure  = "password_update_failure"

	eventOperationRejected = "operation_rejected_busy"

	eventExternalRefresh = "external_token_refreshed"
	eventExternalSignout = "external_signed_out"
)

// EventErrorCode defines a public type used by goSession APIs.
//
// EventErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// The code appears in [Event.Error] and is derived from the sentinel chain
// of the operation error, so event consumers never parse error strings.
type EventErrorCode string

const (
	eventErrInvalidCredentials  EventErrorCode = "invalid_credentials"
	eventErrEmailUnverified     EventErrorCode = "email_unverified"
	eventErrNoSession           EventErrorCode = "no_session"
	eventErrOperationInProgress EventErrorCode = "operation_in_progress"
	eventErrProviderUnavailable EventErrorCode = "provider_unavailable"
	eventErrNotStarted          EventErrorCode = "not_started"
	eventErrAlreadyStarted      EventErrorCode = "already_started"
	eventErrClosed              EventErrorCode = "closed"
	eventErrUnknown             EventErrorCode = "unknown_error"
)

// emitEvent builds and dispatches one observability event. It is a no-op
// when the dispatcher is disabled, and the metadata builder only runs when
// an event will actually be emitted.
func (m *Manager) emitEvent(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.events == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Success:   success,
		Metadata:  metadata,
	}
	if code := eventErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.events.Emit(ctx, event)
}

func eventErrorCode(err error) EventErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return eventErrInvalidCredentials
	case errors.Is(err, ErrEmailUnverified):
		return eventErrEmailUnverified
	case errors.Is(err, ErrNoSession):
		return eventErrNoSession
	case errors.Is(err, ErrOperationInProgress):
		return eventErrOperationInProgress
	case errors.Is(err, ErrProviderUnavailable):
		return eventErrProviderUnavailable
	case errors.Is(err, ErrNotStarted):
		return eventErrNotStarted
	case errors.Is(err, ErrAlreadyStarted):
		return eventErrAlreadyStarted
	case errors.Is(err, ErrClosed):
		return eventErrClosed
	default:
		return eventErrUnknown
	}
}
