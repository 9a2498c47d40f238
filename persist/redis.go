package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/session"
)

const defaultRedisPrefix = "gosession"

// RedisStore defines a public type used by goSession APIs.
//
// RedisStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// RedisStore keeps the record under a single prefixed key, encoded with the
// same versioned envelope the session codec uses, so records are portable
// across store implementations. A non-zero TTL lets Redis expire abandoned
// sessions without a cleanup job.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore describes the new redis store operation and its observable behavior.
//
// NewRedisStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// An empty prefix falls back to "gosession". A zero ttl stores the record
// without expiry.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key() string {
	return s.prefix + ":record"
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Load(ctx context.Context) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	snap, err := session.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	if snap.Identity == nil || snap.Tokens == nil {
		return nil, errors.New("session record missing identity or tokens")
	}

	return &Record{
		Identity: snap.Identity.Clone(),
		Tokens:   *snap.Tokens,
		SavedAt:  snap.ChangedAt,
	}, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	ident := rec.Identity.Clone()
	tokens := rec.Tokens
	snap := session.Snapshot{
		Identity:  &ident,
		Tokens:    &tokens,
		Status:    session.StatusAuthenticated,
		ChangedAt: rec.SavedAt,
	}

	data, err := session.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
