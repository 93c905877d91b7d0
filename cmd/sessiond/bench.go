package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	mrand "math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/cookie"
	"github.com/MrEthical07/goSession/internal/logging"
	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	sessions    int
	concurrency int
	ops         int
	strict      bool
}

func newBenchCmd() *cobra.Command {
	var opts benchOptions
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure session create and lookup throughput",
		Long: `Seeds sessions in memory jars, then runs a create phase and a lookup phase
with concurrent workers. With --strict the revocation store is used; without
REDIS_ADDR an in-process miniredis is started.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.sessions <= 0 || opts.concurrency <= 0 || opts.ops <= 0 {
				return errors.New("sessions, concurrency, and ops must be > 0")
			}
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Secret == "" {
				cfg.Secret = randomSecret()
			}
			cfg.Metrics.Enabled = true
			cfg.Audit.Enabled = false
			cfg.ValidationMode = "jwt_only"
			if opts.strict {
				cfg.ValidationMode = "strict"
				if cfg.Redis.Addr == "" {
					mr, err := miniredis.Run()
					if err != nil {
						return fmt.Errorf("failed to start miniredis: %w", err)
					}
					defer mr.Close()
					cfg.Redis.Addr = mr.Addr()
					fmt.Fprintf(cmd.OutOrStdout(), "using miniredis at %s\n", mr.Addr())
				}
			}

			engine, cleanup, err := buildEngine(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			defer cleanup()

			return runBench(cmd.Context(), cmd.OutOrStdout(), engine, opts)
		},
	}
	cmd.Flags().IntVar(&opts.sessions, "sessions", 10000, "number of sessions to seed")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 64, "number of concurrent workers")
	cmd.Flags().IntVar(&opts.ops, "ops", 100000, "operations per phase")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "validate against the revocation store")
	return cmd
}

func runBench(ctx context.Context, out io.Writer, engine *goSession.Engine, opts benchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	jars := make([]*cookie.MemoryJar, opts.sessions)
	fmt.Fprintf(out, "seeding %d sessions...\n", opts.sessions)
	startSeed := time.Now()
	for i := range jars {
		jars[i] = cookie.NewMemoryJar()
		if err := engine.CreateSession(ctx, jars[i], fmt.Sprintf("user-%d", i), fmt.Sprintf("user-%d@example.com", i)); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
	}
	fmt.Fprintf(out, "seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	create := runPhase(opts.ops, opts.concurrency, func(_ *mrand.Rand, i int) bool {
		jar := cookie.NewMemoryJar()
		return engine.CreateSession(ctx, jar, fmt.Sprintf("bench-%d", i), "bench@example.com") == nil
	})
	lookup := runPhase(opts.ops, opts.concurrency, func(r *mrand.Rand, _ int) bool {
		return engine.GetSession(ctx, jars[r.Intn(len(jars))]) != nil
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "create", create)
	printStats(out, "lookup", lookup)
	return nil
}

func runPhase(ops, concurrency int, op func(r *mrand.Rand, i int) bool) phaseStats {
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
			r := mrand.New(mrand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				ok := op(r, i)
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
		return phaseStats{total: total, failures: failures}
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

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
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

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
