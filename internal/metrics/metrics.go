package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one counter or latency histogram slot.
type MetricID uint16

const (
	// MetricStartRestoreHit counts Start calls that restored a session.
	MetricStartRestoreHit MetricID = iota
	// MetricStartRestoreMiss counts Start calls that settled anonymous.
	MetricStartRestoreMiss
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts failed logins.
	MetricLoginFailure
	// MetricSignupSuccess counts signups that produced a live session.
	MetricSignupSuccess
	// MetricSignupPending counts signups awaiting verification.
	MetricSignupPending
	// MetricSignupFailure counts failed signups.
	MetricSignupFailure
	// MetricLogoutSuccess counts clean logouts.
	MetricLogoutSuccess
	// MetricLogoutForced counts logouts where the provider call failed but
	// local state was cleared anyway.
	MetricLogoutForced
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed token refreshes.
	MetricRefreshFailure
	// MetricPasswordResetRequested counts accepted reset requests.
	MetricPasswordResetRequested
	// MetricPasswordResetFailure counts rejected reset requests.
	MetricPasswordResetFailure
	// MetricPasswordUpdated counts successful password updates.
	MetricPasswordUpdated
	// MetricPasswordUpdateFailure counts failed password updates.
	MetricPasswordUpdateFailure
	// MetricOperationRejectedBusy counts operations rejected because another
	// operation held the in-flight guard.
	MetricOperationRejectedBusy
	// MetricProviderTimeout counts provider calls that exceeded the bounded
	// wait.
	MetricProviderTimeout
	// MetricExternalRefresh counts token refreshes reported by the provider.
	MetricExternalRefresh
	// MetricExternalSignout counts sign-outs reported by the provider.
	MetricExternalSignout
	// MetricTokenServed counts Token calls served from the current snapshot.
	MetricTokenServed
	// MetricTokenCoalesced counts Token calls that joined an in-flight
	// refresh instead of starting their own.
	MetricTokenCoalesced
	// MetricTokenRefreshTriggered counts Token calls that started a refresh.
	MetricTokenRefreshTriggered
	// MetricTokenUnavailable counts Token calls that failed.
	MetricTokenUnavailable
	// MetricStartLatency is the Start operation latency histogram.
	MetricStartLatency
	// MetricLoginLatency is the Login operation latency histogram.
	MetricLoginLatency
	// MetricRefreshLatency is the Refresh operation latency histogram.
	MetricRefreshLatency
	// MetricTokenWaitLatency is the Token call wait latency histogram.
	MetricTokenWaitLatency
	// MetricIDCount is the number of metric slots; keep it last.
	MetricIDCount
)

const (
	// HistBucketCount is the fixed bucket count of every latency histogram.
	HistBucketCount = 8

	cacheLineSize = 64
)

type metricHistogram struct {
	buckets [HistBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls which metric families are recorded.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics is the allocation-free metric storage shared by a manager and its
// exporters. A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]metricHistogram
}

// Snapshot is a point-in-time copy of all counters and histograms.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New returns metric storage honoring cfg. Latency histograms record only
// when both Enabled and EnableLatency are set.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Enabled reports whether counters record.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms record.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter slot.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a duration into the histogram slot. Non-histogram IDs are
// ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= MetricIDCount {
		return
	}
	if !IsLatencyID(id) {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads one counter slot.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// SnapshotNow copies every slot. The result is detached from live storage.
func (m *Metrics) SnapshotNow() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 4),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if IsLatencyID(id) {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for id := MetricID(0); id < MetricIDCount; id++ {
			if !IsLatencyID(id) {
				continue
			}
			buckets := make([]uint64, HistBucketCount)
			for i := 0; i < HistBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

// IsLatencyID reports whether the slot is a latency histogram rather than a
// counter.
func IsLatencyID(id MetricID) bool {
	switch id {
	case MetricStartLatency, MetricLoginLatency, MetricRefreshLatency, MetricTokenWaitLatency:
		return true
	default:
		return false
	}
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
