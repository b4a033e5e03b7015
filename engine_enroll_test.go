package goTOTP

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestBeginEnrollmentPersistsProvisionalSecret(t *testing.T) {
	engine, st := newTestEngine(t, testConfig())
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	setup, err := engine.BeginEnrollment(context.Background(), "alice")
	if err != nil {
		t.Fatalf("BeginEnrollment() error = %v", err)
	}
	if setup.SecretBase32 == "" {
		t.Fatal("setup carries no secret")
	}
	if !strings.HasPrefix(setup.URI, "otpauth://totp/") {
		t.Errorf("URI = %q, want otpauth://totp/ prefix", setup.URI)
	}
	if !strings.Contains(setup.URI, setup.SecretBase32) {
		t.Error("URI does not embed the secret")
	}
	if !strings.HasPrefix(setup.Image, "data:image/png;base64,") {
		t.Errorf("Image = %.40q..., want PNG data URI", setup.Image)
	}

	u := st.record(t, "alice")
	if u.TwoFactor.Mode != TwoFactorPending {
		t.Errorf("Mode = %v, want TwoFactorPending", u.TwoFactor.Mode)
	}
	if u.TwoFactor.TempSecret != setup.SecretBase32 {
		t.Errorf("TempSecret = %q, want %q", u.TwoFactor.TempSecret, setup.SecretBase32)
	}
}

func TestBeginEnrollmentUnknownUser(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())

	if _, err := engine.BeginEnrollment(context.Background(), "nobody"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("BeginEnrollment() error = %v, want ErrSessionInvalid", err)
	}
}

func TestConfirmEnrollmentActivates(t *testing.T) {
	cfg := testConfig()
	engine, st := newTestEngine(t, cfg)
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	setup, err := engine.BeginEnrollment(context.Background(), "alice")
	if err != nil {
		t.Fatalf("BeginEnrollment() error = %v", err)
	}

	code := codeFor(t, setup.SecretBase32, time.Now(), cfg.TOTP)
	if err := engine.ConfirmEnrollment(context.Background(), "alice", code); err != nil {
		t.Fatalf("ConfirmEnrollment() error = %v", err)
	}

	u := st.record(t, "alice")
	if u.TwoFactor.Mode != TwoFactorEnabled {
		t.Errorf("Mode = %v, want TwoFactorEnabled", u.TwoFactor.Mode)
	}
	if u.TwoFactor.Secret != setup.SecretBase32 {
		t.Errorf("Secret = %q, want promoted provisional secret", u.TwoFactor.Secret)
	}
	if u.TwoFactor.TempSecret != "" {
		t.Errorf("TempSecret = %q, want cleared after confirmation", u.TwoFactor.TempSecret)
	}
}

func TestConfirmEnrollmentBadCodeLeavesStatePending(t *testing.T) {
	cfg := testConfig()
	engine, st := newTestEngine(t, cfg)
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	setup, err := engine.BeginEnrollment(context.Background(), "alice")
	if err != nil {
		t.Fatalf("BeginEnrollment() error = %v", err)
	}

	good := codeFor(t, setup.SecretBase32, time.Now(), cfg.TOTP)
	bad := "000000"
	if bad == good {
		bad = "000001"
	}

	if err := engine.ConfirmEnrollment(context.Background(), "alice", bad); !errors.Is(err, ErrTOTPInvalid) {
		t.Fatalf("ConfirmEnrollment() error = %v, want ErrTOTPInvalid", err)
	}

	u := st.record(t, "alice")
	if u.TwoFactor.Mode != TwoFactorPending || u.TwoFactor.TempSecret != setup.SecretBase32 {
		t.Fatalf("state after bad code = %+v, want untouched pending state", u.TwoFactor)
	}
}

func TestConfirmEnrollmentWithoutPending(t *testing.T) {
	engine, st := newTestEngine(t, testConfig())
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	if err := engine.ConfirmEnrollment(context.Background(), "alice", "123456"); !errors.Is(err, ErrNoEnrollmentPending) {
		t.Fatalf("ConfirmEnrollment() error = %v, want ErrNoEnrollmentPending", err)
	}
}

func TestRestartReplacesProvisionalSecret(t *testing.T) {
	cfg := testConfig()
	engine, st := newTestEngine(t, cfg)
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	first, err := engine.BeginEnrollment(context.Background(), "alice")
	if err != nil {
		t.Fatalf("first BeginEnrollment() error = %v", err)
	}
	second, err := engine.BeginEnrollment(context.Background(), "alice")
	if err != nil {
		t.Fatalf("second BeginEnrollment() error = %v", err)
	}
	if first.SecretBase32 == second.SecretBase32 {
		t.Fatal("restarted enrollment reused the previous secret")
	}

	if got := st.record(t, "alice").TwoFactor.TempSecret; got != second.SecretBase32 {
		t.Fatalf("TempSecret = %q, want the latest secret", got)
	}

	// A code for the superseded secret must no longer confirm.
	staleCode := codeFor(t, first.SecretBase32, time.Now(), cfg.TOTP)
	if staleCode != codeFor(t, second.SecretBase32, time.Now(), cfg.TOTP) {
		if err := engine.ConfirmEnrollment(context.Background(), "alice", staleCode); !errors.Is(err, ErrTOTPInvalid) {
			t.Fatalf("ConfirmEnrollment(stale code) error = %v, want ErrTOTPInvalid", err)
		}
	}
}

func TestReenrollmentKeepsActiveSecretUntilConfirmed(t *testing.T) {
	cfg := testConfig()
	engine, st := newTestEngine(t, cfg)
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	setup, err := engine.BeginEnrollment(context.Background(), "alice")
	if err != nil {
		t.Fatalf("BeginEnrollment() error = %v", err)
	}
	if err := engine.ConfirmEnrollment(context.Background(), "alice", codeFor(t, setup.SecretBase32, time.Now(), cfg.TOTP)); err != nil {
		t.Fatalf("ConfirmEnrollment() error = %v", err)
	}
	active := setup.SecretBase32

	replacement, err := engine.BeginEnrollment(context.Background(), "alice")
	if err != nil {
		t.Fatalf("re-enrollment BeginEnrollment() error = %v", err)
	}

	u := st.record(t, "alice")
	if u.TwoFactor.Mode != TwoFactorEnabled || u.TwoFactor.Secret != active {
		t.Fatalf("state = %+v, want active secret untouched during re-enrollment", u.TwoFactor)
	}
	if u.TwoFactor.TempSecret != replacement.SecretBase32 {
		t.Fatalf("TempSecret = %q, want replacement secret", u.TwoFactor.TempSecret)
	}

	// The old secret still gates login until the replacement is confirmed.
	result, err := engine.Login(context.Background(), "alice", "opensesame", codeFor(t, active, time.Now(), cfg.TOTP))
	if err != nil || !result.Success {
		t.Fatalf("Login(old code) = %+v, %v; want success", result, err)
	}

	if err := engine.ConfirmEnrollment(context.Background(), "alice", codeFor(t, replacement.SecretBase32, time.Now(), cfg.TOTP)); err != nil {
		t.Fatalf("ConfirmEnrollment(replacement) error = %v", err)
	}
	if got := st.record(t, "alice").TwoFactor.Secret; got != replacement.SecretBase32 {
		t.Fatalf("Secret = %q, want replacement promoted", got)
	}
}

func TestConcurrentEnrollmentRestartsSerialize(t *testing.T) {
	cfg := testConfig()
	engine, st := newTestEngine(t, cfg)
	seedUser(t, engine, st, "alice", "opensesame", TwoFactor{Mode: TwoFactorDisabled})

	const workers = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		secrets = make(map[string]bool, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			setup, err := engine.BeginEnrollment(context.Background(), "alice")
			if err != nil {
				t.Errorf("BeginEnrollment() error = %v", err)
				return
			}
			mu.Lock()
			secrets[setup.SecretBase32] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Every restart is a full replacement, so the surviving provisional
	// secret must be exactly one of the handed-out ones, and it must be
	// confirmable.
	winner := st.record(t, "alice").TwoFactor.TempSecret
	if !secrets[winner] {
		t.Fatalf("surviving TempSecret %q was never handed to a caller", winner)
	}
	if err := engine.ConfirmEnrollment(context.Background(), "alice", codeFor(t, winner, time.Now(), cfg.TOTP)); err != nil {
		t.Fatalf("ConfirmEnrollment(winner) error = %v", err)
	}
}
