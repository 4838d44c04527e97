package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/accounts"
	"github.com/MrEthical07/goGate/permission"
)

func main() {
	var (
		accountCount = flag.Int("accounts", 10000, "number of accounts to seed")
		perAccount   = flag.Int("sessions-per-account", 3, "sessions registered per account")
		clients      = flag.Int("clients", 5000, "distinct admission client ids")
		concurrency  = flag.Int("concurrency", 256, "number of concurrent workers")
		ops          = flag.Int("ops", 200000, "operations per phase")
		redisAddr    = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env, then the memory store, is used")
		useMini      = flag.Bool("miniredis", false, "use an embedded miniredis for rate windows")
	)
	flag.Parse()

	if *accountCount <= 0 || *perAccount <= 0 || *clients <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, sessions-per-account, clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var client redis.UniversalClient
	switch {
	case addr != "":
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		defer client.Close()
		fmt.Printf("rate windows in redis at %s\n", addr)
	case *useMini:
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		defer mr.Close()
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()
		fmt.Printf("rate windows in miniredis at %s\n", mr.Addr())
	default:
		fmt.Println("rate windows in process memory")
	}

	store := accounts.NewMemoryStore()
	for i := 0; i < *accountCount; i++ {
		a := permission.Account{ID: "acct-" + strconv.Itoa(i), Role: permission.RoleFan}
		if i%4 == 0 {
			a.Tickets = []permission.Ticket{{ID: uuid.NewString(), Tier: permission.TierVIP, Status: permission.TicketActive}}
		}
		if err := store.Put(a); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}

	cfg := goGate.DefaultConfig()
	cfg.RateLimit.Limit = 1 << 30
	cfg.Session.MaxConcurrentSessions = *perAccount
	cfg.Audit.Enabled = false
	cfg.Metrics.EnableLatencyHistograms = true

	b := goGate.New().WithConfig(cfg).WithAccountStore(store)
	if client != nil {
		b.WithRedis(client)
	}
	engine, err := b.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("registering %d sessions...\n", *accountCount**perAccount)
	startSeed := time.Now()
	sids := make([]string, 0, *accountCount**perAccount)
	for i := 0; i < *accountCount; i++ {
		for j := 0; j < *perAccount; j++ {
			s, err := engine.RegisterSession(ctx, "acct-"+strconv.Itoa(i), goGate.SessionMetadata{})
			if err != nil {
				fmt.Fprintf(os.Stderr, "register failed: %v\n", err)
				os.Exit(1)
			}
			sids = append(sids, s.ID)
		}
	}
	fmt.Printf("registered in %s\n", time.Since(startSeed).Round(time.Millisecond))

	clientIDs := make([]string, *clients)
	for i := range clientIDs {
		clientIDs[i] = fmt.Sprintf("10.%d.%d.%d", (i>>16)&0xFF, (i>>8)&0xFF, i&0xFF)
	}

	admitStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand) bool {
		d := engine.Admit(ctx, goGate.AdmissionRequest{ClientID: clientIDs[r.Intn(len(clientIDs))], Method: "GET"})
		return d.Allowed()
	})
	validateStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand) bool {
		_, err := engine.ValidateSession(ctx, sids[r.Intn(len(sids))])
		return err == nil
	})
	authorizeStats := runPhase(*ops, *concurrency, 4271, func(r *rand.Rand) bool {
		_, _, err := engine.AuthorizeSession(ctx, sids[r.Intn(len(sids))])
		return err == nil
	})

	fmt.Println("---- results ----")
	printStats("admit", admitStats)
	printStats("validate", validateStats)
	printStats("authorize", authorizeStats)
	fmt.Printf("active sessions: %d\n", engine.ActiveSessionEstimate())
}

// runPhase spreads ops calls of op over concurrency workers.
func runPhase(ops, concurrency int, seed int64, op func(*rand.Rand) bool) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				ok := op(r)
				d := time.Since(t0)
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
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
	return samples[(len(samples)-1)*p/100]
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
