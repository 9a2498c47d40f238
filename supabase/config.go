package supabase

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// URL is the project base URL, e.g. https://abc.supabase.co or a
	// self-hosted endpoint. The /auth/v1 path is appended when missing.
	URL string

	// AnonKey is the project's anon/public API key.
	AnonKey string
}

// ConfigFromEnv describes the config from env operation and its observable behavior.
//
// ConfigFromEnv may return an error when input validation, dependency calls, or security checks fail.
// ConfigFromEnv does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// ConfigFromEnv reads SUPABASE_URL and SUPABASE_ANON_KEY, loading a .env
// file from the working directory first when one exists.
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		URL:     os.Getenv("SUPABASE_URL"),
		AnonKey: os.Getenv("SUPABASE_ANON_KEY"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("Supabase URL required")
	}

	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("Supabase URL must be a valid http or https URL")
	}

	if c.AnonKey == "" {
		return errors.New("Supabase AnonKey required")
	}
	return nil
}

// projectRef extracts the project reference from a hosted Supabase URL.
// Self-hosted deployments have no reference; "local" keeps the underlying
// client constructible, the custom URL override does the actual routing.
func projectRef(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "local"
	}
	host := u.Hostname()
	if strings.HasSuffix(host, ".supabase.co") {
		return strings.TrimSuffix(host, ".supabase.co")
	}
	return "local"
}

func authURL(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	if strings.HasSuffix(trimmed, "/auth/v1") {
		return trimmed
	}
	return trimmed + "/auth/v1"
}
