// Package session provides the authentication state model, a concurrency-safe
// snapshot store with ordered change notification, and a versioned codec for
// the durable subset of a snapshot.
//
// # Snapshot publication
//
// The [Store] holds exactly one current [Snapshot]. Every mutation publishes a
// new snapshot with a sequence number incremented by one, and subscribers
// observe publications in publication order. Subscribers receive the snapshot
// as of the publication that triggered the call, never a newer one.
//
// # Architecture boundaries
//
// This package owns session state and nothing else. Providers decide WHAT the
// state becomes; the [Store] only records transitions and fans them out.
//
// # What this package must NOT do
//
//   - Import goSession, supabase, persist, or transport (no upward imports).
//   - Perform network or file I/O.
//   - Interpret or verify token contents.
package session
