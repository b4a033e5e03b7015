package store

import (
	"context"
	"sync"

	goTOTP "github.com/MrEthical07/goTOTP"
)

// Memory is an in-process UserStore backed by a map. It is safe for
// concurrent use and is the store of choice for tests and demos.
type Memory struct {
	mu    sync.RWMutex
	users map[string]goTOTP.UserRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]goTOTP.UserRecord),
	}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Get(_ context.Context, id string) (goTOTP.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return goTOTP.UserRecord{}, goTOTP.ErrUserNotFound
	}
	return u, nil
}

// Put describes the put operation and its observable behavior.
//
// Put may return an error when input validation, dependency calls, or security checks fail.
// Put does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Memory) Put(_ context.Context, record goTOTP.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[record.ID] = record
	return nil
}

// UpdateTwoFactor applies fn to the record's second-factor state while
// holding the store lock, so concurrent updates for the same id are
// serialized. When fn errors the record is left unchanged.
func (m *Memory) UpdateTwoFactor(
	_ context.Context,
	id string,
	fn func(goTOTP.TwoFactor) (goTOTP.TwoFactor, error),
) (goTOTP.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return goTOTP.UserRecord{}, goTOTP.ErrUserNotFound
	}

	next, err := fn(u.TwoFactor)
	if err != nil {
		return goTOTP.UserRecord{}, err
	}

	u.TwoFactor = next
	m.users[id] = u
	return u, nil
}
