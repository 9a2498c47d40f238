package goSession

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	internalevents "github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/session"
)

const (
	lifecycleNew int32 = iota
	lifecycleStarted
	lifecycleClosed
)

// Manager defines a public type used by goSession APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// A Manager owns the session snapshot for exactly one principal and drives
// every provider operation through a single in-flight guard: one session
// mutation at a time, concurrent ones are rejected with
// [ErrOperationInProgress] rather than queued.
type Manager struct {
	config   Config
	provider Provider
	store    *session.Store
	flows    flows.Service
	events   *internalevents.Dispatcher
	metrics  *Metrics
	supplier *TokenSource

	lifecycle atomic.Int32
	opBusy    atomic.Bool

	mu        sync.Mutex
	portUnsub func()
	closeOnce sync.Once
}

// Start describes the start operation and its observable behavior.
//
// Start may return an error when input validation, dependency calls, or security checks fail.
// Start does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Start runs the provider restore under the bounded wait and settles the
// snapshot to authenticated or anonymous. Restore failures are absorbed into
// an anonymous start, never returned. Only lifecycle violations error:
// a second Start returns [ErrAlreadyStarted], Start after Close returns
// [ErrClosed].
func (m *Manager) Start(ctx context.Context) error {
	if m == nil {
		return ErrNotStarted
	}
	if !m.lifecycle.CompareAndSwap(lifecycleNew, lifecycleStarted) {
		if m.lifecycle.Load() == lifecycleClosed {
			return ErrClosed
		}
		return ErrAlreadyStarted
	}

	start := time.Now()
	res := m.flows.Initialize(ctx)
	switch {
	case res.Err != nil:
		m.store.Clear()
		m.store.SetLoading(false)
		m.metricInc(MetricStartRestoreMiss)
		if res.TimedOut {
			m.metricInc(MetricProviderTimeout)
		}
		m.emitEvent(ctx, eventStartAnonymous, false, "", "", res.Err, nil)
	case res.Grant == nil:
		m.store.Clear()
		m.store.SetLoading(false)
		m.metricInc(MetricStartRestoreMiss)
		m.emitEvent(ctx, eventStartAnonymous, true, "", "", nil, nil)
	default:
		m.store.SetAuthenticated(*res.Grant)
		m.store.SetLoading(false)
		m.metricInc(MetricStartRestoreHit)
		verified := res.Verified
		m.emitEvent(ctx, eventStartRestored, true, res.Grant.Identity.ID, res.Grant.Identity.Email, nil, func() map[string]string {
			if !verified {
				return nil
			}
			return map[string]string{"verified": "true"}
		})
	}
	m.observeLatency(MetricStartLatency, time.Since(start))

	m.mu.Lock()
	if m.lifecycle.Load() == lifecycleStarted {
		m.portUnsub = m.provider.OnSessionChange(m.handlePortEvent)
	}
	m.mu.Unlock()

	return nil
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Close releases the provider change subscription and drains the event
// dispatcher. Operations after Close fail with [ErrClosed]. Close is
// idempotent.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.closeOnce.Do(func() {
		m.lifecycle.Store(lifecycleClosed)

		m.mu.Lock()
		unsub := m.portUnsub
		m.portUnsub = nil
		m.mu.Unlock()
		if unsub != nil {
			unsub()
		}

		if m.events != nil {
			m.events.Close()
		}
	})
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Snapshot never blocks on provider calls and works in every lifecycle
// phase, including after Close.
func (m *Manager) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return m.store.Snapshot()
}

// Subscribe describes the subscribe operation and its observable behavior.
//
// Subscribe may return an error when input validation, dependency calls, or security checks fail.
// Subscribe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Callbacks observe snapshot publications in order and must not call back
// into the Manager's store-mutating operations. The returned cancel is safe
// to call more than once.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	if m == nil {
		return func() {}
	}
	return m.store.Subscribe(fn)
}

// Identity describes the identity operation and its observable behavior.
//
// Identity may return an error when input validation, dependency calls, or security checks fail.
// Identity does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Identity queries the provider rather than the snapshot, under the bounded
// wait. (nil, nil) means the provider holds no session. It does not take the
// in-flight guard because it never mutates state.
func (m *Manager) Identity(ctx context.Context) (*Identity, error) {
	if m == nil {
		return nil, ErrNotStarted
	}
	if err := m.operational(); err != nil {
		return nil, err
	}

	res := m.flows.CurrentIdentity(ctx)
	if res.Err != nil {
		if res.TimedOut {
			m.metricInc(MetricProviderTimeout)
		}
		return nil, res.Err
	}
	return res.Identity, nil
}

// TokenSource describes the token source operation and its observable behavior.
//
// TokenSource may return an error when input validation, dependency calls, or security checks fail.
// TokenSource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The returned supplier is shared: every caller coalesces on the same
// refresh flight.
func (m *Manager) TokenSource() *TokenSource {
	if m == nil {
		return nil
	}
	return m.supplier
}

// EventsDropped describes the events dropped operation and its observable behavior.
//
// EventsDropped may return an error when input validation, dependency calls, or security checks fail.
// EventsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) EventsDropped() uint64 {
	if m == nil || m.events == nil {
		return 0
	}
	return m.events.Dropped()
}

// MetricsSnapshot describes the metrics snapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.SnapshotNow()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) observeLatency(id MetricID, d time.Duration) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Observe(id, d)
}

func (m *Manager) operational() error {
	switch m.lifecycle.Load() {
	case lifecycleClosed:
		return ErrClosed
	case lifecycleNew:
		return ErrNotStarted
	default:
		return nil
	}
}

// beginOp takes the single in-flight guard. Callers that fail to take it
// must reject with ErrOperationInProgress, never queue.
func (m *Manager) beginOp() bool {
	return m.opBusy.CompareAndSwap(false, true)
}

func (m *Manager) endOp() {
	m.opBusy.Store(false)
}

func (m *Manager) rejectBusy(ctx context.Context, operation, email string) error {
	m.metricInc(MetricOperationRejectedBusy)
	m.emitEvent(ctx, eventOperationRejected, false, "", email, ErrOperationInProgress, func() map[string]string {
		return map[string]string{
			"operation": operation,
		}
	})
	return ErrOperationInProgress
}

// handlePortEvent re-derives snapshot state from provider-originated
// changes. It runs on the provider's goroutine.
func (m *Manager) handlePortEvent(ev SessionEvent) {
	if m == nil || m.lifecycle.Load() != lifecycleStarted {
		return
	}

	switch ev.Reason {
	case ReasonSignedOut:
		m.store.Clear()
		m.metricInc(MetricExternalSignout)
		m.emitEvent(context.Background(), eventExternalSignout, true, "", "", nil, nil)

	case ReasonTokenRefreshed:
		if ev.Grant == nil {
			return
		}
		if m.store.Snapshot().Authenticated() {
			if ev.Grant.Tokens != nil {
				m.store.SetTokens(*ev.Grant.Tokens)
			}
		} else {
			if ev.Grant.Tokens == nil {
				return
			}
			m.store.SetAuthenticated(*ev.Grant)
		}
		m.metricInc(MetricExternalRefresh)
		m.emitEvent(context.Background(), eventExternalRefresh, true, ev.Grant.Identity.ID, ev.Grant.Identity.Email, nil, nil)
	}
}
