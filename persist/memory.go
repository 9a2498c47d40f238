package persist

import (
	"context"
	"sync"
)

// MemoryStore defines a public type used by goSession APIs.
//
// MemoryStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// MemoryStore keeps the record in process memory. It survives nothing, which
// makes it the right store for tests and for processes that should always
// authenticate fresh.
type MemoryStore struct {
	mu  sync.Mutex
	rec *Record
}

// NewMemoryStore describes the new memory store operation and its observable behavior.
//
// NewMemoryStore may return an error when input validation, dependency calls, or security checks fail.
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Load(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec == nil {
		return nil, ErrNotFound
	}
	out := s.rec.Clone()
	return &out, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := rec.Clone()
	s.rec = &stored
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec = nil
	return nil
}
