package goSession

import (
	"errors"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Operations OperationsConfig
	Restore    RestoreConfig
	Supplier   SupplierConfig
	Events     EventsConfig
	Metrics    MetricsConfig
}

/*
====================================
OPERATIONS CONFIG
====================================
*/

// OperationsConfig defines a public type used by goSession APIs.
//
// OperationsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OperationsConfig struct {
	// ProviderTimeout bounds every provider call made by a manager
	// operation. When the provider does not answer in time, the operation
	// fails with ErrProviderUnavailable and session state is left coherent.
	ProviderTimeout time.Duration
}

/*
====================================
RESTORE CONFIG
====================================
*/

// RestoreConfig defines a public type used by goSession APIs.
//
// RestoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RestoreConfig struct {
	// VerifyIdentity revalidates a restored session against the provider
	// via CurrentIdentity before trusting it. A failed revalidation
	// downgrades the start to anonymous instead of failing it.
	VerifyIdentity bool
}

/*
====================================
SUPPLIER CONFIG
====================================
*/

// SupplierConfig defines a public type used by goSession APIs.
//
// SupplierConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SupplierConfig struct {
	// RefreshLeeway is how long before expiry a token stops being served
	// as-is and a refresh is triggered instead.
	RefreshLeeway time.Duration
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig defines a public type used by goSession APIs.
//
// EventsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the default config operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Operations: OperationsConfig{
			ProviderTimeout: 10 * time.Second,
		},
		Restore: RestoreConfig{
			VerifyIdentity: false,
		},
		Supplier: SupplierConfig{
			RefreshLeeway: 30 * time.Second,
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Operations
	if c.Operations.ProviderTimeout <= 0 {
		return errors.New("Operations ProviderTimeout must be > 0")
	}
	if c.Operations.ProviderTimeout > time.Hour {
		return errors.New("Operations ProviderTimeout is too large")
	}

	// Supplier
	if c.Supplier.RefreshLeeway < 0 {
		return errors.New("Supplier RefreshLeeway must be >= 0")
	}
	if c.Supplier.RefreshLeeway > 24*time.Hour {
		return errors.New("Supplier RefreshLeeway is too large")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when Events are enabled")
	}

	return nil
}
