package goSession

import (
	"context"
	"io"

	internalevents "github.com/MrEthical07/goSession/internal/events"
	internalmetrics "github.com/MrEthical07/goSession/internal/metrics"
	"github.com/MrEthical07/goSession/session"
)

// Identity is the provider-agnostic description of a signed-in principal.
type Identity = session.Identity

// TokenPair carries an access token, an optional refresh token, and the
// access token expiry (zero when unknown).
type TokenPair = session.TokenPair

// Grant is what a provider returns for operations that may establish a
// session. A Grant with nil Tokens means the account exists but no session
// was issued, such as a signup awaiting email verification.
type Grant = session.Grant

// Snapshot is the immutable view of current session state published by the
// manager.
type Snapshot = session.Snapshot

// Status is the lifecycle phase carried by a [Snapshot].
type Status = session.Status

const (
	// StatusInitializing is an exported constant or variable used by the session manager.
	StatusInitializing = session.StatusInitializing
	// StatusAnonymous is an exported constant or variable used by the session manager.
	StatusAnonymous = session.StatusAnonymous
	// StatusAuthenticated is an exported constant or variable used by the session manager.
	StatusAuthenticated = session.StatusAuthenticated
)

// SessionChangeReason classifies provider-originated session changes
// delivered through [Provider.OnSessionChange].
type SessionChangeReason uint8

const (
	// ReasonTokenRefreshed is an exported constant or variable used by the session manager.
	ReasonTokenRefreshed SessionChangeReason = iota
	// ReasonSignedOut is an exported constant or variable used by the session manager.
	ReasonSignedOut
)

// String describes the reason in lower-case wire-friendly form.
func (r SessionChangeReason) String() string {
	switch r {
	case ReasonTokenRefreshed:
		return "token_refreshed"
	case ReasonSignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// SessionEvent is a provider-originated session change. Grant is nil for
// [ReasonSignedOut].
type SessionEvent struct {
	Reason SessionChangeReason
	Grant  *Grant
}

// Provider is the port interface that callers must implement to integrate
// goSession with an identity backend. Implementations classify every failure
// eagerly into the package error taxonomy, preferably by returning a
// [ProviderError].
//
// Methods taking a context perform network I/O and must honor cancellation
// where the underlying SDK allows it; the manager additionally bounds each
// call with OperationsConfig.ProviderTimeout.
type Provider interface {
	// Initialize restores a previously persisted session. (nil, nil) means
	// no session to restore.
	Initialize(ctx context.Context) (*Grant, error)

	// Login authenticates with email and password.
	Login(ctx context.Context, email, password string) (*Grant, error)

	// Signup registers a new account. A returned Grant with nil Tokens
	// means the account awaits verification.
	Signup(ctx context.Context, email, password string, metadata map[string]any) (*Grant, error)

	// Logout revokes the provider-side session. It is idempotent: logging
	// out without a session succeeds.
	Logout(ctx context.Context) error

	// CurrentIdentity queries the provider for the identity behind the
	// held session. (nil, nil) means none.
	CurrentIdentity(ctx context.Context) (*Identity, error)

	// AccessToken reports the currently held access token without any
	// network round trip. ok is false when no usable token is held.
	AccessToken() (token string, ok bool)

	// Refresh exchanges the held refresh token for new tokens.
	Refresh(ctx context.Context) (*TokenPair, error)

	// RequestPasswordReset asks the provider to start a reset flow for the
	// given email. It requires no session.
	RequestPasswordReset(ctx context.Context, email string) error

	// UpdatePassword changes the password of the signed-in account.
	UpdatePassword(ctx context.Context, newPassword string) error

	// OnSessionChange registers a callback for provider-originated session
	// changes. The returned cancel releases the registration and is safe
	// to call more than once.
	OnSessionChange(fn func(SessionEvent)) (cancel func())
}

// SignupResult is returned by [Manager.Signup]. PendingVerification reports
// that the account was created without a live session; the snapshot then
// still describes the pre-signup state.
type SignupResult struct {
	PendingVerification bool
	Identity            *Identity
	Snapshot            Snapshot
}

// Event is a structured lifecycle record emitted by the manager.
type Event = internalevents.Event

// EventSink receives [Event] values from the manager's event dispatcher.
type EventSink = internalevents.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = internalevents.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = internalevents.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalevents.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalevents.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalevents.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricStartRestoreHit is an exported constant or variable used by the session manager.
	MetricStartRestoreHit = MetricID(internalmetrics.MetricStartRestoreHit)
	// MetricStartRestoreMiss is an exported constant or variable used by the session manager.
	MetricStartRestoreMiss = MetricID(internalmetrics.MetricStartRestoreMiss)
	// MetricLoginSuccess is an exported constant or variable used by the session manager.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure is an exported constant or variable used by the session manager.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricSignupSuccess is an exported constant or variable used by the session manager.
	MetricSignupSuccess = MetricID(internalmetrics.MetricSignupSuccess)
	// MetricSignupPending is an exported constant or variable used by the session manager.
	MetricSignupPending = MetricID(internalmetrics.MetricSignupPending)
	// MetricSignupFailure is an exported constant or variable used by the session manager.
	MetricSignupFailure = MetricID(internalmetrics.MetricSignupFailure)
	// MetricLogoutSuccess is an exported constant or variable used by the session manager.
	MetricLogoutSuccess = MetricID(internalmetrics.MetricLogoutSuccess)
	// MetricLogoutForced is an exported constant or variable used by the session manager.
	MetricLogoutForced = MetricID(internalmetrics.MetricLogoutForced)
	// MetricRefreshSuccess is an exported constant or variable used by the session manager.
	MetricRefreshSuccess = MetricID(internalmetrics.MetricRefreshSuccess)
	// MetricRefreshFailure is an exported constant or variable used by the session manager.
	MetricRefreshFailure = MetricID(internalmetrics.MetricRefreshFailure)
	// MetricPasswordResetRequested is an exported constant or variable used by the session manager.
	MetricPasswordResetRequested = MetricID(internalmetrics.MetricPasswordResetRequested)
	// MetricPasswordResetFailure is an exported constant or variable used by the session manager.
	MetricPasswordResetFailure = MetricID(internalmetrics.MetricPasswordResetFailure)
	// MetricPasswordUpdated is an exported constant or variable used by the session manager.
	MetricPasswordUpdated = MetricID(internalmetrics.MetricPasswordUpdated)
	// MetricPasswordUpdateFailure is an exported constant or variable used by the session manager.
	MetricPasswordUpdateFailure = MetricID(internalmetrics.MetricPasswordUpdateFailure)
	// MetricOperationRejectedBusy is an exported constant or variable used by the session manager.
	MetricOperationRejectedBusy = MetricID(internalmetrics.MetricOperationRejectedBusy)
	// MetricProviderTimeout is an exported constant or variable used by the session manager.
	MetricProviderTimeout = MetricID(internalmetrics.MetricProviderTimeout)
	// MetricExternalRefresh is an exported constant or variable used by the session manager.
	MetricExternalRefresh = MetricID(internalmetrics.MetricExternalRefresh)
	// MetricExternalSignout is an exported constant or variable used by the session manager.
	MetricExternalSignout = MetricID(internalmetrics.MetricExternalSignout)
	// MetricTokenServed is an exported constant or variable used by the session manager.
	MetricTokenServed = MetricID(internalmetrics.MetricTokenServed)
	// MetricTokenCoalesced is an exported constant or variable used by the session manager.
	MetricTokenCoalesced = MetricID(internalmetrics.MetricTokenCoalesced)
	// MetricTokenRefreshTriggered is an exported constant or variable used by the session manager.
	MetricTokenRefreshTriggered = MetricID(internalmetrics.MetricTokenRefreshTriggered)
	// MetricTokenUnavailable is an exported constant or variable used by the session manager.
	MetricTokenUnavailable = MetricID(internalmetrics.MetricTokenUnavailable)
	// MetricStartLatency is an exported constant or variable used by the session manager.
	MetricStartLatency = MetricID(internalmetrics.MetricStartLatency)
	// MetricLoginLatency is an exported constant or variable used by the session manager.
	MetricLoginLatency = MetricID(internalmetrics.MetricLoginLatency)
	// MetricRefreshLatency is an exported constant or variable used by the session manager.
	MetricRefreshLatency = MetricID(internalmetrics.MetricRefreshLatency)
	// MetricTokenWaitLatency is an exported constant or variable used by the session manager.
	MetricTokenWaitLatency = MetricID(internalmetrics.MetricTokenWaitLatency)

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics provides lock-free counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
