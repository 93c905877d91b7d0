package goSession

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/cookie"
)

func buildAuditTestEngine(t *testing.T, sink AuditSink) *Engine {
	t.Helper()
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64
	cfg.Audit.DropIfFull = false
	engine, err := New().WithConfig(cfg).WithAuditSink(sink).WithClock(newTestClock().Now).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return engine
}

func nextEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()
	select {
	case ev := <-sink.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return AuditEvent{}
	}
}

func TestAuditSessionLifecycleEvents(t *testing.T) {
	sink := NewChannelSink(16)
	engine := buildAuditTestEngine(t, sink)
	defer engine.Close()

	ctx := WithUserAgent(WithClientIP(context.Background(), "203.0.113.7"), "test-agent")
	jar := cookie.NewMemoryJar()

	if err := engine.CreateSession(ctx, jar, "user-123", "test@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	created := nextEvent(t, sink)
	if created.Type != "session_created" || !created.Success || created.UserID != "user-123" {
		t.Fatalf("unexpected created event %+v", created)
	}
	if created.IP != "203.0.113.7" || created.UserAgent != "test-agent" || created.TokenID == "" {
		t.Fatalf("expected request context on event, got %+v", created)
	}

	engine.GetSession(ctx, cookie.NewMemoryJarWith(SessionCookieName, "not.a.valid.jwt"))
	rejected := nextEvent(t, sink)
	if rejected.Type != "session_rejected" || rejected.Success || rejected.Reason != "malformed_token" {
		t.Fatalf("unexpected rejected event %+v", rejected)
	}

	if err := engine.DeleteSession(ctx, jar); err != nil {
		t.Fatalf("delete: %v", err)
	}
	deleted := nextEvent(t, sink)
	if deleted.Type != "session_deleted" || deleted.UserID != "user-123" || deleted.TokenID != created.TokenID {
		t.Fatalf("unexpected deleted event %+v", deleted)
	}

	if err := engine.CreateSession(ctx, jar, "", "test@example.com"); err == nil {
		t.Fatal("expected rejection")
	}
	if ev := nextEvent(t, sink); ev.Type != "session_create_rejected" || ev.Reason != "invalid_identity" {
		t.Fatalf("unexpected create rejected event %+v", ev)
	}
}

func TestAuditNeverCarriesToken(t *testing.T) {
	var buf bytes.Buffer
	engine := buildAuditTestEngine(t, NewJSONWriterSink(&buf))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	jar := cookie.NewHTTPJar(rec, req)
	if err := engine.CreateSession(context.Background(), jar, "user-123", "test@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	token, _ := jar.Get(SessionCookieName)
	engine.Close()

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected one audit line after Close")
	}
	if strings.Contains(line, token) {
		t.Fatal("audit output contains the raw token")
	}
	var ev AuditEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("decode audit line: %v", err)
	}
	if ev.Type != "session_created" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestAuditDisabledByDefault(t *testing.T) {
	sink := NewChannelSink(1)
	engine, err := New().WithConfig(testConfig()).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	if err := engine.CreateSession(context.Background(), cookie.NewMemoryJar(), "user-123", "test@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	select {
	case ev := <-sink.Events():
		t.Fatalf("expected no audit events, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
	if got := engine.AuditDroppedByType(); len(got) != 0 {
		t.Fatalf("expected no drops, got %v", got)
	}
}
