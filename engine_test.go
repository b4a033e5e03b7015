package goTOTP

import (
	"context"
	"sync"
	"testing"
	"time"
)

// stubStore is a minimal in-memory UserStore for engine tests. The real
// implementations live in the store package, which cannot be imported
// from here.
type stubStore struct {
	mu     sync.Mutex
	users  map[string]UserRecord
	getErr error
}

func newStubStore() *stubStore {
	return &stubStore{users: make(map[string]UserRecord)}
}

func (s *stubStore) Get(_ context.Context, id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return UserRecord{}, s.getErr
	}
	u, ok := s.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

func (s *stubStore) Put(_ context.Context, record UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[record.ID] = record
	return nil
}

func (s *stubStore) UpdateTwoFactor(
	_ context.Context,
	id string,
	fn func(TwoFactor) (TwoFactor, error),
) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	next, err := fn(u.TwoFactor)
	if err != nil {
		return UserRecord{}, err
	}
	u.TwoFactor = next
	s.users[id] = u
	return u, nil
}

func (s *stubStore) record(t *testing.T, id string) UserRecord {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		t.Fatalf("record %q not in store", id)
	}
	return u
}

// testConfig lowers the argon2 parameters to their minimums so hashing
// does not dominate test time.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Password = PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *stubStore) {
	t.Helper()

	st := newStubStore()
	engine, err := New().
		WithConfig(cfg).
		WithUserStore(st).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, st
}

func seedUser(t *testing.T, engine *Engine, st *stubStore, id, pass string, tf TwoFactor) {
	t.Helper()

	hash, err := engine.passwordHash.Hash(pass)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if err := st.Put(context.Background(), UserRecord{
		ID:           id,
		PasswordHash: hash,
		TwoFactor:    tf,
	}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
}

func codeFor(t *testing.T, secret string, at time.Time, cfg TOTPConfig) string {
	t.Helper()

	code, err := GenerateCode(secret, at, cfg)
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}
	return code
}
