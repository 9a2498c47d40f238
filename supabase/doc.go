// Package supabase adapts a Supabase GoTrue project to the goSession
// [github.com/MrEthical07/goSession.Provider] port.
//
// The adapter owns the provider-side session state: the current token pair,
// the identity it belongs to, optional persistence through a
// [github.com/MrEthical07/goSession/persist.Store], and an optional
// background refresh that renews tokens shortly before they expire and
// reports the outcome through the port's change callback.
//
// The underlying gotrue-go client issues requests without a context; the
// manager's bounded provider wait supplies the deadline, and
// [WithHTTPClient] can add transport-level timeouts on top.
//
// # What this package must NOT do
//
//   - Publish snapshots or emit manager events. It only answers port calls
//     and reports provider-originated changes via OnSessionChange.
//   - Verify tokens. Expiry scheduling reads the unverified exp claim at
//     most; everything else treats tokens as opaque.
package supabase
