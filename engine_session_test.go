package goTOTP

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSessionTokenPlainMode(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())

	token, err := engine.IssueSessionToken("alice")
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	if token != "alice" {
		t.Fatalf("token = %q, want raw id without a signing key", token)
	}

	id, err := engine.ResolveSessionToken(token)
	if err != nil || id != "alice" {
		t.Fatalf("ResolveSessionToken() = %q, %v; want alice", id, err)
	}
}

func TestSessionTokenSignedMode(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	engine, _ := newTestEngine(t, cfg)

	token, err := engine.IssueSessionToken("alice")
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	if token == "alice" {
		t.Fatal("signed mode must not issue the raw id")
	}

	id, err := engine.ResolveSessionToken(token)
	if err != nil || id != "alice" {
		t.Fatalf("ResolveSessionToken() = %q, %v; want alice", id, err)
	}
}

func TestSessionTokenSignedModeRejectsForgeries(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	engine, _ := newTestEngine(t, cfg)

	token, err := engine.IssueSessionToken("alice")
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	for _, bad := range []string{"alice", tampered, "not.a.jwt"} {
		if _, err := engine.ResolveSessionToken(bad); !errors.Is(err, ErrSessionInvalid) {
			t.Errorf("ResolveSessionToken(%q) error = %v, want ErrSessionInvalid", bad, err)
		}
	}
}

func TestSessionTokenSignedModeKeyMismatch(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	issuer, _ := newTestEngine(t, cfg)

	other := testConfig()
	other.Session.SigningKey = []byte("fedcba9876543210fedcba9876543210")
	resolver, _ := newTestEngine(t, other)

	token, err := issuer.IssueSessionToken("alice")
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	if _, err := resolver.ResolveSessionToken(token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("ResolveSessionToken() error = %v, want ErrSessionInvalid", err)
	}
}

func TestResolveSessionTokenEmpty(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())

	if _, err := engine.ResolveSessionToken(""); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("ResolveSessionToken(\"\") error = %v, want ErrSessionInvalid", err)
	}
}

func TestIssueSessionTokenEmptyID(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())

	if _, err := engine.IssueSessionToken(""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("IssueSessionToken(\"\") error = %v, want ErrTokenInvalid", err)
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())

	engine.Logout(context.Background(), "alice")
	engine.Logout(context.Background(), "")

	if got := engine.MetricsSnapshot().Counters[MetricLogout]; got != 2 {
		t.Fatalf("MetricLogout = %d, want 2", got)
	}
}

func TestSignedTokenHasThreeSegments(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	engine, _ := newTestEngine(t, cfg)

	token, err := engine.IssueSessionToken("alice")
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
}
