package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session manager.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricStartRestoreHit, Name: "gosession_start_restore_hit_total", Help: "Start calls that restored a previous session."},
	{ID: goSession.MetricStartRestoreMiss, Name: "gosession_start_restore_miss_total", Help: "Start calls that settled anonymous."},
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful login operations."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed login operations."},
	{ID: goSession.MetricSignupSuccess, Name: "gosession_signup_success_total", Help: "Signups that produced a live session."},
	{ID: goSession.MetricSignupPending, Name: "gosession_signup_pending_total", Help: "Signups awaiting email verification."},
	{ID: goSession.MetricSignupFailure, Name: "gosession_signup_failure_total", Help: "Failed signup operations."},
	{ID: goSession.MetricLogoutSuccess, Name: "gosession_logout_success_total", Help: "Clean logout operations."},
	{ID: goSession.MetricLogoutForced, Name: "gosession_logout_forced_total", Help: "Logouts that cleared local state despite a provider failure."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Successful token refreshes."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: goSession.MetricPasswordResetRequested, Name: "gosession_password_reset_requested_total", Help: "Accepted password reset requests."},
	{ID: goSession.MetricPasswordResetFailure, Name: "gosession_password_reset_failure_total", Help: "Rejected password reset requests."},
	{ID: goSession.MetricPasswordUpdated, Name: "gosession_password_updated_total", Help: "Successful password updates."},
	{ID: goSession.MetricPasswordUpdateFailure, Name: "gosession_password_update_failure_total", Help: "Failed password updates."},
	{ID: goSession.MetricOperationRejectedBusy, Name: "gosession_operation_rejected_busy_total", Help: "Operations rejected while another held the in-flight guard."},
	{ID: goSession.MetricProviderTimeout, Name: "gosession_provider_timeout_total", Help: "Provider calls that exceeded the bounded wait."},
	{ID: goSession.MetricExternalRefresh, Name: "gosession_external_refresh_total", Help: "Token refreshes reported by the provider."},
	{ID: goSession.MetricExternalSignout, Name: "gosession_external_signout_total", Help: "Sign-outs reported by the provider."},
	{ID: goSession.MetricTokenServed, Name: "gosession_token_served_total", Help: "Token calls that returned a token."},
	{ID: goSession.MetricTokenCoalesced, Name: "gosession_token_coalesced_total", Help: "Token calls that joined an in-flight refresh."},
	{ID: goSession.MetricTokenRefreshTriggered, Name: "gosession_token_refresh_triggered_total", Help: "Token calls that started a refresh."},
	{ID: goSession.MetricTokenUnavailable, Name: "gosession_token_unavailable_total", Help: "Token calls that failed."},
}

// HistogramDefs is an exported constant or variable used by the session manager.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricStartLatency, Name: "gosession_start_latency_seconds", Help: "Start latency histogram."},
	{ID: goSession.MetricLoginLatency, Name: "gosession_login_latency_seconds", Help: "Login latency histogram."},
	{ID: goSession.MetricRefreshLatency, Name: "gosession_refresh_latency_seconds", Help: "Refresh latency histogram."},
	{ID: goSession.MetricTokenWaitLatency, Name: "gosession_token_wait_latency_seconds", Help: "Token call wait latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session manager.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session manager.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
