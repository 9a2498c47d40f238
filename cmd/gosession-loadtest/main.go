package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/persist"
)

// loadProvider is an in-process identity backend with configurable call
// latency, so the harness measures manager overhead and coalescing rather
// than network noise.
type loadProvider struct {
	latency time.Duration
	ttl     time.Duration
	userID  string
	email   string
	seq     atomic.Int64
	calls   atomic.Int64
}

func newLoadProvider(latency, ttl time.Duration) *loadProvider {
	return &loadProvider{
		latency: latency,
		ttl:     ttl,
		userID:  uuid.NewString(),
		email:   "loadtest@example.com",
	}
}

func (p *loadProvider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(p.latency):
		return nil
	case <-ctx.Done():
		return &goSession.ProviderError{Kind: goSession.ErrProviderUnavailable, Message: "canceled", Raw: ctx.Err()}
	}
}

func (p *loadProvider) pair() *goSession.TokenPair {
	n := p.seq.Add(1)
	return &goSession.TokenPair{
		AccessToken:  fmt.Sprintf("access-%d", n),
		RefreshToken: fmt.Sprintf("refresh-%d", n),
		ExpiresAt:    time.Now().Add(p.ttl),
	}
}

func (p *loadProvider) identity() goSession.Identity {
	return goSession.Identity{ID: p.userID, Email: p.email, EmailVerified: true}
}

func (p *loadProvider) Initialize(ctx context.Context) (*goSession.Grant, error) {
	return nil, nil
}

func (p *loadProvider) Login(ctx context.Context, email, password string) (*goSession.Grant, error) {
	p.calls.Add(1)
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return &goSession.Grant{Identity: p.identity(), Tokens: p.pair()}, nil
}

func (p *loadProvider) Signup(ctx context.Context, email, password string, metadata map[string]any) (*goSession.Grant, error) {
	p.calls.Add(1)
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return &goSession.Grant{Identity: p.identity(), Tokens: p.pair()}, nil
}

func (p *loadProvider) Logout(ctx context.Context) error {
	p.calls.Add(1)
	return p.wait(ctx)
}

func (p *loadProvider) CurrentIdentity(ctx context.Context) (*goSession.Identity, error) {
	p.calls.Add(1)
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	ident := p.identity()
	return &ident, nil
}

func (p *loadProvider) AccessToken() (string, bool) {
	return "", false
}

func (p *loadProvider) Refresh(ctx context.Context) (*goSession.TokenPair, error) {
	p.calls.Add(1)
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.pair(), nil
}

func (p *loadProvider) RequestPasswordReset(ctx context.Context, email string) error {
	p.calls.Add(1)
	return p.wait(ctx)
}

func (p *loadProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	p.calls.Add(1)
	return p.wait(ctx)
}

func (p *loadProvider) OnSessionChange(fn func(goSession.SessionEvent)) (cancel func()) {
	return func() {}
}

func main() {
	var (
		ops             = flag.Int("ops", 200000, "operations per phase")
		concurrency     = flag.Int("concurrency", 256, "number of concurrent workers")
		providerLatency = flag.Duration("provider-latency", 2*time.Millisecond, "simulated identity backend latency")
		tokenTTL        = flag.Duration("token-ttl", 150*time.Millisecond, "lifetime of issued access tokens")
		leeway          = flag.Duration("leeway", 20*time.Millisecond, "refresh leeway for the token supplier")
		redisAddr       = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix          = flag.String("prefix", "gosession-load", "session record key prefix")
	)
	flag.Parse()

	if *ops <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "ops and concurrency must be > 0")
		os.Exit(2)
	}
	if *tokenTTL <= 0 {
		fmt.Fprintln(os.Stderr, "token-ttl must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	provider := newLoadProvider(*providerLatency, *tokenTTL)
	cfg := goSession.DefaultConfig()
	cfg.Operations.ProviderTimeout = 5 * time.Second
	cfg.Supplier.RefreshLeeway = *leeway
	cfg.Metrics.Enabled = true

	manager, err := goSession.New().
		WithProvider(provider).
		WithConfig(cfg).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	if err := manager.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "start failed: %v\n", err)
		os.Exit(1)
	}
	if _, err := manager.Login(ctx, provider.email, "loadtest-password"); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("token phase: ops=%d concurrency=%d ttl=%s leeway=%s provider-latency=%s\n",
		*ops, *concurrency, *tokenTTL, *leeway, *providerLatency)
	tokenStats := runTokenPhase(ctx, manager, *ops, *concurrency)
	snapshotStats := runSnapshotPhase(manager, *ops, *concurrency)
	persistStats := runPersistPhase(ctx, *redisAddr, *prefix, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("token", tokenStats)
	printStats("snapshot", snapshotStats)
	printStats("persist", persistStats)

	snap := manager.MetricsSnapshot()
	served := snap.Counters[goSession.MetricTokenServed]
	flights := snap.Counters[goSession.MetricTokenRefreshTriggered]
	coalesced := snap.Counters[goSession.MetricTokenCoalesced]
	fmt.Printf("tokens served=%d refresh flights=%d coalesced waits=%d provider calls=%d\n",
		served, flights, coalesced, provider.calls.Load())
	if served > 0 && flights > 0 {
		fmt.Printf("coalescing: %.1f tokens per provider refresh\n", float64(served)/float64(flights))
	}
}

func runTokenPhase(ctx context.Context, manager *goSession.Manager, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	source := manager.TokenSource()
	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				_, err := source.Token(ctx)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runSnapshotPhase(manager *goSession.Manager, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				snap := manager.Snapshot()
				d := time.Since(t0)
				if snap.Status != goSession.StatusAuthenticated {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runPersistPhase(ctx context.Context, redisAddr, prefix string, ops, concurrency int) phaseStats {
	addr := redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("persist phase: using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("persist phase: using redis at %s\n", addr)
	}
	defer cleanup()

	// One store per worker; prefixes keep the records apart.
	stores := make([]persist.Store, concurrency)
	for w := 0; w < concurrency; w++ {
		stores[w] = persist.NewRedisStore(client, fmt.Sprintf("%s-%d", prefix, w), time.Hour)
	}

	record := persist.Record{
		Identity: goSession.Identity{ID: uuid.NewString(), Email: "loadtest@example.com", EmailVerified: true},
		Tokens: goSession.TokenPair{
			AccessToken:  "access-persist",
			RefreshToken: "refresh-persist",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
		SavedAt: time.Now().UTC(),
	}

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			store := stores[worker]
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := store.Save(ctx, record)
				if err == nil {
					_, err = store.Load(ctx)
				}
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
