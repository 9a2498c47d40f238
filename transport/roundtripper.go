package transport

import (
	"context"
	"net/http"
)

// TokenSource defines a public type used by goSession APIs.
//
// TokenSource instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// It is satisfied by the manager's token supplier; any func-backed or static
// source works for tests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Option defines a public type used by goSession APIs.
//
// Option instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Option func(*RoundTripper)

// WithBase describes the withbase operation and its observable behavior.
//
// WithBase may return an error when input validation, dependency calls, or security checks fail.
// WithBase does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func WithBase(base http.RoundTripper) Option {
	return func(rt *RoundTripper) {
		rt.base = base
	}
}

// WithUnauthorizedHandler describes the withunauthorizedhandler operation and its observable behavior.
//
// WithUnauthorizedHandler may return an error when input validation, dependency calls, or security checks fail.
// WithUnauthorizedHandler does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The handler runs after a response with status 401 and can trigger
// re-authentication. It must not retry the request itself; the response is
// returned to the caller unchanged.
func WithUnauthorizedHandler(fn func(*http.Request)) Option {
	return func(rt *RoundTripper) {
		rt.onUnauthorized = fn
	}
}

// RoundTripper defines a public type used by goSession APIs.
//
// RoundTripper instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RoundTripper struct {
	source         TokenSource
	base           http.RoundTripper
	onUnauthorized func(*http.Request)
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(source TokenSource, opts ...Option) *RoundTripper {
	rt := &RoundTripper{
		source: source,
		base:   http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.base == nil {
		rt.base = http.DefaultTransport
	}
	return rt
}

// RoundTrip describes the round trip operation and its observable behavior.
//
// RoundTrip may return an error when input validation, dependency calls, or security checks fail.
// RoundTrip does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// An Authorization header already present on the request always wins. A
// token fetch failure sends the request unauthenticated instead of failing
// it.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// The RoundTripper contract forbids mutating the caller's request.
	out := req.Clone(req.Context())

	if out.Header.Get("Authorization") == "" && rt.source != nil {
		if tok, err := rt.source.Token(req.Context()); err == nil && tok != "" {
			out.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := rt.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && rt.onUnauthorized != nil {
		rt.onUnauthorized(out)
	}
	return resp, nil
}

// Client describes the client operation and its observable behavior.
//
// Client may return an error when input validation, dependency calls, or security checks fail.
// Client does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (rt *RoundTripper) Client() *http.Client {
	return &http.Client{Transport: rt}
}
