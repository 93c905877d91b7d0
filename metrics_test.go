package goSession

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/cookie"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricSessionCreated)

	if got := m.Value(MetricSessionCreated); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if len(m.Snapshot().Counters) != 0 {
		t.Fatal("expected empty snapshot when disabled")
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricSessionValidated)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricSessionValidated); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		50 * time.Microsecond,
		250 * time.Microsecond,
		400 * time.Microsecond,
		time.Millisecond,
		3 * time.Millisecond,
		20 * time.Millisecond,
		100 * time.Millisecond,
		time.Second,
	}
	for _, d := range observations {
		m.Observe(MetricValidateLatency, d)
	}
	// Only the validate histogram exists.
	m.Observe(MetricSessionCreated, time.Millisecond)

	buckets := m.Snapshot().Histograms[MetricValidateLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestEngineMetricsTrackOutcomes(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.EnableLatencyHistograms = true
	clock := newTestClock()
	engine := buildTestEngine(t, cfg, clock)
	ctx := context.Background()

	jar := cookie.NewMemoryJar()
	if err := engine.CreateSession(ctx, jar, "user-123", "test@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	engine.GetSession(ctx, jar)
	engine.GetSession(ctx, cookie.NewMemoryJarWith(SessionCookieName, "not.a.valid.jwt"))
	engine.GetSession(ctx, cookie.NewMemoryJar())
	if err := engine.DeleteSession(ctx, jar); err != nil {
		t.Fatalf("delete: %v", err)
	}

	snap := engine.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricSessionCreated:   1,
		MetricSessionValidated: 1,
		MetricSessionInvalid:   1,
		MetricSessionAbsent:    1,
		MetricSessionDeleted:   1,
		MetricSessionExpired:   0,
	}
	for id, v := range want {
		if snap.Counters[id] != v {
			t.Fatalf("metric %d: expected %d, got %d", id, v, snap.Counters[id])
		}
	}

	var total uint64
	for _, v := range snap.Histograms[MetricValidateLatency] {
		total += v
	}
	if total != 3 {
		t.Fatalf("expected 3 latency observations, got %d", total)
	}
}

func TestBuilderMetricsOptions(t *testing.T) {
	engine, err := New().WithConfig(testConfig()).WithMetricsEnabled(false).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()
	if err := engine.CreateSession(context.Background(), cookie.NewMemoryJar(), "user-123", "test@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := len(engine.MetricsSnapshot().Counters); got != 0 {
		t.Fatalf("expected no counters with metrics disabled, got %d", got)
	}

	if _, err := New().WithConfig(testConfig()).WithMetricsEnabled(false).WithLatencyHistograms(true).Build(); err == nil {
		t.Fatal("expected latency histograms without metrics to be rejected")
	}

	engine, err = New().WithConfig(testConfig()).WithLatencyHistograms(true).Build()
	if err != nil {
		t.Fatalf("build with histograms: %v", err)
	}
	defer engine.Close()
	engine.GetSession(context.Background(), cookie.NewMemoryJar())
	var observed uint64
	for _, n := range engine.MetricsSnapshot().Histograms[MetricValidateLatency] {
		observed += n
	}
	if observed != 1 {
		t.Fatalf("expected one latency observation, got %d", observed)
	}
}
