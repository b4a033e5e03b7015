package store

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	goTOTP "github.com/MrEthical07/goTOTP"
)

// File is a UserStore persisted as one JSON document keyed by user id.
// Every write rewrites the whole file, which is fine at the record counts
// this store is meant for; larger deployments should use Redis.
type File struct {
	mu    sync.Mutex
	path  string
	users map[string]persistedUser
}

// NewFile opens or creates the store at path.
func NewFile(path string) (*File, error) {
	f := &File{
		path:  path,
		users: make(map[string]persistedUser),
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) load() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	loaded := make(map[string]persistedUser)
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	f.users = loaded
	return nil
}

// saveLocked writes the document to a sibling temp file and renames it
// into place, so an interrupted write can never truncate the store.
func (f *File) saveLocked() error {
	b, err := json.MarshalIndent(f.users, "", "  ")
	if err != nil {
		return err
	}

	// 0600: the file holds credential hashes and TOTP secrets.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) Get(_ context.Context, id string) (goTOTP.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.users[id]
	if !ok {
		return goTOTP.UserRecord{}, goTOTP.ErrUserNotFound
	}
	return decodeUser(id, p), nil
}

// Put describes the put operation and its observable behavior.
//
// Put may return an error when input validation, dependency calls, or security checks fail.
// Put does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f *File) Put(_ context.Context, record goTOTP.UserRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[record.ID] = encodeUser(record)
	return f.saveLocked()
}

// UpdateTwoFactor applies fn under the store lock and persists the result
// before releasing it, so updates for the same id are serialized and
// never lost to interleaved writes.
func (f *File) UpdateTwoFactor(
	_ context.Context,
	id string,
	fn func(goTOTP.TwoFactor) (goTOTP.TwoFactor, error),
) (goTOTP.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.users[id]
	if !ok {
		return goTOTP.UserRecord{}, goTOTP.ErrUserNotFound
	}

	u := decodeUser(id, p)
	next, err := fn(u.TwoFactor)
	if err != nil {
		return goTOTP.UserRecord{}, err
	}

	u.TwoFactor = next
	f.users[id] = encodeUser(u)
	if err := f.saveLocked(); err != nil {
		return goTOTP.UserRecord{}, err
	}
	return u, nil
}
