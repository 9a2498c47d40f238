// Package flows contains pure-function orchestrators for every Manager operation.
//
// Each flow function (RunLogin, RunRefresh, RunInitialize, etc.) accepts a
// typed dependency struct and returns a result value without side-effects
// beyond those dependencies. Flows own the bounded provider wait: every call
// runs under the configured timeout, and a provider that hangs or reports a
// deadline surfaces as the injected unavailable sentinel.
//
// # Architecture boundaries
//
// Flow functions call the provider port and nothing else. They do NOT touch
// the snapshot store, the event dispatcher, or metrics — mapping results to
// state transitions, events, and counters stays with the Manager.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSession (to avoid import cycles).
//   - Perform I/O directly — all I/O is mediated through dependency functions.
package flows
