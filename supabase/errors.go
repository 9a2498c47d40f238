package supabase

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	goSession "github.com/MrEthical07/goSession"
)

// classify folds a gotrue-go error into the goSession error taxonomy. The
// client reports GoTrue rejections as flat "response status code N: body"
// strings, so classification sniffs the body for the known GoTrue messages
// first and falls back to the status code.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pe *goSession.ProviderError
	if errors.As(err, &pe) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &goSession.ProviderError{
			Kind:    goSession.ErrProviderUnavailable,
			Message: "request canceled",
			Raw:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &goSession.ProviderError{
			Kind:    goSession.ErrProviderUnavailable,
			Message: "network timeout",
			Raw:     err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &goSession.ProviderError{
			Kind:    goSession.ErrProviderUnavailable,
			Message: "identity service unreachable",
			Raw:     err,
		}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid grant"),
		strings.Contains(msg, "user not found"):
		return &goSession.ProviderError{
			Kind:    goSession.ErrInvalidCredentials,
			Message: "invalid login credentials",
			Raw:     err,
		}

	case strings.Contains(msg, "email not confirmed"):
		return &goSession.ProviderError{
			Kind:    goSession.ErrEmailUnverified,
			Message: "email not confirmed",
			Raw:     err,
		}

	case strings.Contains(msg, "invalid refresh token"),
		strings.Contains(msg, "refresh token not found"),
		strings.Contains(msg, "session not found"),
		strings.Contains(msg, "session_not_found"):
		return &goSession.ProviderError{
			Kind:    goSession.ErrNoSession,
			Message: "session no longer valid",
			Raw:     err,
		}
	}

	if code, ok := statusCode(msg); ok {
		switch {
		case code >= 500, code == 429, code == 408:
			return &goSession.ProviderError{
				Kind:    goSession.ErrProviderUnavailable,
				Message: "identity service unavailable",
				Raw:     err,
			}
		case code == 401, code == 403:
			return &goSession.ProviderError{
				Kind:    goSession.ErrNoSession,
				Message: "session rejected",
				Raw:     err,
			}
		}
	}

	return &goSession.ProviderError{
		Kind:    goSession.ErrUnknown,
		Message: err.Error(),
		Raw:     err,
	}
}

func statusCode(msg string) (int, bool) {
	const marker = "response status code "
	i := strings.Index(msg, marker)
	if i < 0 {
		return 0, false
	}

	code := 0
	found := false
	for _, r := range msg[i+len(marker):] {
		if r < '0' || r > '9' {
			break
		}
		code = code*10 + int(r-'0')
		found = true
	}
	return code, found
}
