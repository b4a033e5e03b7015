package goTOTP

import (
	"context"
	"testing"
	"time"
)

func waitForEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()

	select {
	case event := <-sink.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event arrived")
		return AuditEvent{}
	}
}

func TestLoginEmitsAuditEvents(t *testing.T) {
	cfg := testConfig()
	cfg.Audit = AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: false}

	sink := NewChannelSink(16)
	st := newStubStore()
	engine, err := New().
		WithConfig(cfg).
		WithUserStore(st).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(engine.Close)
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	ctx := WithClientIP(context.Background(), "203.0.113.9")
	ctx = WithRequestID(ctx, "req-1")

	if _, err := engine.Login(ctx, "alice", "opensesame", ""); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	event := waitForEvent(t, sink)
	if event.EventType != auditEventLoginSuccess {
		t.Errorf("EventType = %q, want %q", event.EventType, auditEventLoginSuccess)
	}
	if !event.Success || event.UserID != "alice" {
		t.Errorf("event = %+v, want success for alice", event)
	}
	if event.IP != "203.0.113.9" || event.RequestID != "req-1" {
		t.Errorf("event context = ip %q, request %q; want carried through", event.IP, event.RequestID)
	}
}

func TestFailedLoginAuditCarriesReason(t *testing.T) {
	cfg := testConfig()
	cfg.Audit = AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: false}

	sink := NewChannelSink(16)
	st := newStubStore()
	engine, err := New().
		WithConfig(cfg).
		WithUserStore(st).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(engine.Close)
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	if _, err := engine.Login(context.Background(), "alice", "wrong", ""); err == nil {
		t.Fatal("Login() with wrong password must fail")
	}

	event := waitForEvent(t, sink)
	if event.EventType != auditEventLoginFailure || event.Success {
		t.Errorf("event = %+v, want login failure", event)
	}
	if event.Metadata["reason"] != "password_mismatch" {
		t.Errorf("reason = %q, want password_mismatch", event.Metadata["reason"])
	}
	if event.Error == "" {
		t.Error("failure event carries no error")
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	engine, st := newTestEngine(t, testConfig())
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	if _, err := engine.Login(context.Background(), "alice", "opensesame", ""); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got := engine.AuditDropped(); got != 0 {
		t.Fatalf("AuditDropped() = %d, want 0", got)
	}
}
