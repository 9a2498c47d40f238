package goSession

import (
	"errors"

	internalevents "github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/session"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config    Config
	provider  Provider
	eventSink EventSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithProvider describes the withprovider operation and its observable behavior.
//
// WithProvider may return an error when input validation, dependency calls, or security checks fail.
// WithProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithProvider(p Provider) *Builder {
	b.provider = p
	return b
}

// WithEventSink describes the witheventsink operation and its observable behavior.
//
// WithEventSink may return an error when input validation, dependency calls, or security checks fail.
// WithEventSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Build wires the manager but does not touch the provider; nothing talks to
// it until [Manager.Start].
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config

	if b.provider == nil {
		return nil, errors.New("identity provider required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kinds := flows.Kinds{
		Unavailable: ErrProviderUnavailable,
		Unknown:     ErrUnknown,
	}
	timeout := cfg.Operations.ProviderTimeout

	// -------- PROVIDER FLOWS --------
	service := flows.New(flows.Deps{
		Initialize: flows.InitializeDeps{
			Restore:        b.provider.Initialize,
			Identity:       b.provider.CurrentIdentity,
			VerifyRestored: cfg.Restore.VerifyIdentity,
			Timeout:        timeout,
			Kinds:          kinds,
		},
		Login: flows.LoginDeps{
			Call:    b.provider.Login,
			Timeout: timeout,
			Kinds:   kinds,
		},
		Signup: flows.SignupDeps{
			Call:    b.provider.Signup,
			Timeout: timeout,
			Kinds:   kinds,
		},
		Logout: flows.LogoutDeps{
			Call:    b.provider.Logout,
			Timeout: timeout,
			Kinds:   kinds,
		},
		Refresh: flows.RefreshDeps{
			Call:    b.provider.Refresh,
			Timeout: timeout,
			Kinds:   kinds,
		},
		Password: flows.PasswordDeps{
			Reset:   b.provider.RequestPasswordReset,
			Update:  b.provider.UpdatePassword,
			Timeout: timeout,
			Kinds:   kinds,
		},
	})

	// -------- MANAGER --------
	manager := &Manager{
		config:   cfg,
		provider: b.provider,
		store:    session.NewStore(),
		flows:    service,
	}

	manager.events = internalevents.NewDispatcher(internalevents.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, b.eventSink)
	manager.metrics = NewMetrics(cfg.Metrics)
	manager.supplier = &TokenSource{
		manager: manager,
		leeway:  cfg.Supplier.RefreshLeeway,
	}

	b.built = true

	return manager, nil
}
