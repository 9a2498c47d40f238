// Package jwt inspects access-token claims without verifying signatures,
// for display and expiry-scheduling purposes only — never authorization.
package jwt
