// Package transport attaches session access tokens to outbound HTTP
// requests.
//
// The round tripper asks a token source for a token per request, which
// keeps authenticated clients working across refreshes without rebuilding
// them. Requests that already carry an Authorization header pass through
// untouched, and a request whose token cannot be fetched is sent
// unauthenticated rather than failed: the origin's 401 stays the single
// source of truth for rejection.
package transport
