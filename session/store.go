package session

import (
	"sync"
	"time"
)

// Store defines a public type used by goSession APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// A Store holds the single current [Snapshot] and fans out every published
// change to subscribers in publication order. All methods are safe for
// concurrent use.
type Store struct {
	mu      sync.Mutex
	current Snapshot
	subs    map[uint64]func(Snapshot)
	nextSub uint64
	now     func() time.Time
}

// NewStore describes the new store operation and its observable behavior.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
// NewStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The returned store starts at sequence zero in [StatusInitializing] with
// Loading set, the state before the first restore attempt settles.
func NewStore() *Store {
	return &Store{
		current: Snapshot{Status: StatusInitializing, Loading: true},
		subs:    make(map[uint64]func(Snapshot)),
		now:     time.Now,
	}
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The returned value is a deep copy: mutating its Identity.Metadata does not
// affect the store or other callers.
func (s *Store) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// SetLoading describes the set loading operation and its observable behavior.
//
// SetLoading may return an error when input validation, dependency calls, or security checks fail.
// SetLoading does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Setting the current value again is a no-op and publishes nothing.
func (s *Store) SetLoading(loading bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Loading == loading {
		return
	}
	next := s.current
	next.Loading = loading
	s.publishLocked(next)
}

// SetAuthenticated describes the set authenticated operation and its observable behavior.
//
// SetAuthenticated may return an error when input validation, dependency calls, or security checks fail.
// SetAuthenticated does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The grant is deep-copied before publication, so the caller may reuse it.
func (s *Store) SetAuthenticated(grant Grant) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g := grant.Clone()
	next := s.current
	next.Identity = &g.Identity
	next.Tokens = g.Tokens
	next.Status = StatusAuthenticated
	s.publishLocked(next)
}

// SetTokens describes the set tokens operation and its observable behavior.
//
// SetTokens may return an error when input validation, dependency calls, or security checks fail.
// SetTokens does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Only the token pair changes; identity and status are preserved.
func (s *Store) SetTokens(tokens TokenPair) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := tokens
	next := s.current
	next.Tokens = &t
	s.publishLocked(next)
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Clear drops identity and tokens and moves the store to [StatusAnonymous].
// It always publishes, even when the store is already anonymous.
func (s *Store) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current
	next.Identity = nil
	next.Tokens = nil
	next.Status = StatusAnonymous
	s.publishLocked(next)
}

// Subscribe describes the subscribe operation and its observable behavior.
//
// Subscribe may return an error when input validation, dependency calls, or security checks fail.
// Subscribe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The callback runs synchronously on the publishing goroutine and receives
// the snapshot as of that publication. Callbacks must not call back into the
// Store; doing so deadlocks. After cancel returns no further calls are made,
// and calling cancel more than once is safe.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// publishLocked installs next as the current snapshot and notifies all
// subscribers while still holding the mutex, which is what guarantees
// publication-ordered delivery and that no callback runs after its cancel
// returned.
func (s *Store) publishLocked(next Snapshot) {
	next.Seq = s.current.Seq + 1
	next.ChangedAt = s.now()
	s.current = next
	for _, fn := range s.subs {
		fn(s.current.clone())
	}
}
