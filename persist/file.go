package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrEthical07/goSession/session"
)

const fileSchemaVersionCurrent = 1

type fileRecord struct {
	SchemaVersion int          `yaml:"schema_version"`
	SavedAt       time.Time    `yaml:"saved_at"`
	Identity      fileIdentity `yaml:"identity"`
	Tokens        fileTokens   `yaml:"tokens"`
}

type fileIdentity struct {
	ID            string         `yaml:"id"`
	Email         string         `yaml:"email,omitempty"`
	EmailVerified bool           `yaml:"email_verified,omitempty"`
	Metadata      map[string]any `yaml:"metadata,omitempty"`
}

type fileTokens struct {
	AccessToken  string     `yaml:"access_token"`
	RefreshToken string     `yaml:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `yaml:"expires_at,omitempty"`
}

// FileStore defines a public type used by goSession APIs.
//
// FileStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// FileStore writes the record as a YAML document readable only by the
// owning user. Writes go through a temp file and rename, so a crash mid-save
// leaves either the old record or the new one, never a torn file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore describes the new file store operation and its observable behavior.
//
// NewFileStore may return an error when input validation, dependency calls, or security checks fail.
// NewFileStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *FileStore) Load(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var fr fileRecord
	if err := yaml.Unmarshal(data, &fr); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	if fr.SchemaVersion != fileSchemaVersionCurrent {
		return nil, fmt.Errorf("unsupported session record schema version %d", fr.SchemaVersion)
	}
	if fr.Identity.ID == "" {
		return nil, errors.New("session record missing identity id")
	}
	if fr.Tokens.AccessToken == "" {
		return nil, errors.New("session record missing access token")
	}

	rec := Record{
		Identity: session.Identity{
			ID:            fr.Identity.ID,
			Email:         fr.Identity.Email,
			EmailVerified: fr.Identity.EmailVerified,
			Metadata:      fr.Identity.Metadata,
		},
		Tokens: session.TokenPair{
			AccessToken:  fr.Tokens.AccessToken,
			RefreshToken: fr.Tokens.RefreshToken,
		},
		SavedAt: fr.SavedAt,
	}
	if fr.Tokens.ExpiresAt != nil {
		rec.Tokens.ExpiresAt = *fr.Tokens.ExpiresAt
	}
	return &rec, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *FileStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fr := fileRecord{
		SchemaVersion: fileSchemaVersionCurrent,
		SavedAt:       rec.SavedAt,
		Identity: fileIdentity{
			ID:            rec.Identity.ID,
			Email:         rec.Identity.Email,
			EmailVerified: rec.Identity.EmailVerified,
			Metadata:      rec.Identity.Metadata,
		},
		Tokens: fileTokens{
			AccessToken:  rec.Tokens.AccessToken,
			RefreshToken: rec.Tokens.RefreshToken,
		},
	}
	if fr.SavedAt.IsZero() {
		fr.SavedAt = time.Now().UTC()
	}
	if !rec.Tokens.ExpiresAt.IsZero() {
		exp := rec.Tokens.ExpiresAt
		fr.Tokens.ExpiresAt = &exp
	}

	data, err := yaml.Marshal(&fr)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Temp-and-rename within the same directory keeps the swap atomic.
	tmp, err := os.CreateTemp(dir, ".gosession-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
