package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goTOTP "github.com/MrEthical07/goTOTP"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "goTOTP:user:"

// redisTxRetries bounds the optimistic-lock retry loop. Contention on a
// single user record is rare enough that hitting the bound means
// something is wrong with the backend.
const redisTxRetries = 16

// Redis is a UserStore keeping one JSON value per user id. UpdateTwoFactor
// runs as an optimistic WATCH/MULTI transaction, which serializes the
// read-modify-write per key even across processes.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a store on client. An empty prefix selects
// "goTOTP:user:".
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(id string) string {
	return r.prefix + id
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) Get(ctx context.Context, id string) (goTOTP.UserRecord, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return goTOTP.UserRecord{}, goTOTP.ErrUserNotFound
		}
		return goTOTP.UserRecord{}, err
	}

	var p persistedUser
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return goTOTP.UserRecord{}, err
	}
	return decodeUser(id, p), nil
}

// Put describes the put operation and its observable behavior.
//
// Put may return an error when input validation, dependency calls, or security checks fail.
// Put does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) Put(ctx context.Context, record goTOTP.UserRecord) error {
	payload, err := json.Marshal(encodeUser(record))
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(record.ID), payload, 0).Err()
}

// UpdateTwoFactor applies fn inside a WATCH transaction on the user key.
// A concurrent write to the same key aborts the transaction and the whole
// read-modify-write is retried, so fn always sees the latest state and
// its result is never clobbered. fn errors abort without retrying and are
// returned verbatim.
func (r *Redis) UpdateTwoFactor(
	ctx context.Context,
	id string,
	fn func(goTOTP.TwoFactor) (goTOTP.TwoFactor, error),
) (goTOTP.UserRecord, error) {
	key := r.key(id)

	var updated goTOTP.UserRecord
	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return goTOTP.ErrUserNotFound
			}
			return err
		}

		var p persistedUser
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return err
		}

		u := decodeUser(id, p)
		next, err := fn(u.TwoFactor)
		if err != nil {
			return err
		}
		u.TwoFactor = next

		payload, err := json.Marshal(encodeUser(u))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = u
		return nil
	}

	for i := 0; i < redisTxRetries; i++ {
		err := r.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return goTOTP.UserRecord{}, err
	}
	return goTOTP.UserRecord{}, fmt.Errorf("update for %q kept losing transactions after %d attempts", id, redisTxRetries)
}
