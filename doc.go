// Package goSession provides a provider-agnostic authentication session
// manager: one snapshot of "who is signed in and with which tokens",
// serialized operations against a pluggable identity provider, and a
// coalescing token supplier for outbound requests.
//
// The package is designed for concurrent client and service workloads:
// Manager methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Manager], [Builder],
// [Config], [TokenSource], the [Provider] port, and value types (Snapshot,
// Identity, TokenPair, MetricsSnapshot, etc.). All internal coordination —
// flow orchestration with the bounded provider wait, snapshot publication,
// event dispatch, metric storage — lives under internal/ and session/ and is
// never re-exported beyond the aliases in this package.
//
// # What this package must NOT do
//
//   - Interpret, verify, or mint tokens. Tokens pass through opaque; only
//     the unverified expiry peek in the jwt sub-package reads them, and only
//     to schedule refreshes.
//   - Talk to a concrete identity service. Everything behind [Provider] is
//     an adapter concern (see the supabase sub-package).
//   - Queue session mutations. One operation holds the in-flight guard;
//     concurrent ones fail fast with [ErrOperationInProgress].
//
// # Performance contract
//
// Snapshot and Subscribe are the hot path. Snapshot must complete without
// provider round-trips and with one deep copy per call. TokenSource.Token
// must serve a fresh token without locking beyond the snapshot read, and a
// token stampede must collapse into a single provider refresh.
package goSession
