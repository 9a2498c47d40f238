// Package persist stores one session record per process so a restart can
// resume the previous session without re-authenticating.
//
// # Architecture boundaries
//
// A [Store] holds at most one [Record]: the identity and token pair of the
// principal this process acts as. Implementations cover the common shapes —
// in-memory for tests and ephemeral processes, a file for desktop and CLI
// use, Redis for fleets that share a service identity.
//
// # What this package must NOT do
//
//   - Interpret tokens. Records pass through as opaque values.
//   - Call the identity provider. Whether a restored record is still valid
//     is decided by the consumer, never here.
//   - Cache across Load calls. Every Load reflects the backing medium.
package persist
