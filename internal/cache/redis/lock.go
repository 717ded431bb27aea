package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned by Acquire when another caller already holds the
// named lock.
var ErrLockHeld = errors.New("redis: lock already held")

// unlockLua is a Lua script that deletes a lock key only if its value matches
// the caller's unique token. This prevents one holder from accidentally
// releasing another holder's lock.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// NonceLock serializes concurrent executes against the same account. It
// satisfies actions.NonceLock: an Executor built with actions.WithNonceLock
// holds it across its fetch-nonce-then-broadcast section, keyed by the
// signer's hex identifier.
type NonceLock struct {
	rdb      *redis.Client
	unlockSc *redis.Script
}

// NewNonceLock creates a NonceLock backed by the given Client.
func NewNonceLock(c *Client) *NonceLock {
	return &NonceLock{
		rdb:      c.Underlying(),
		unlockSc: redis.NewScript(unlockLua),
	}
}

func lockKey(account string) string {
	return "nonce-lock:" + account
}

// Acquire attempts to obtain a distributed lock for the given account with
// the specified TTL. On success it returns an unlock function that must be
// called to release the lock. The unlock function is safe to call multiple
// times.
//
// It returns ErrLockHeld if the lock is already held by another party.
func (nl *NonceLock) Acquire(ctx context.Context, account string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	lk := lockKey(account)

	ok, err := nl.rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", account, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	released := false
	unlock := func() {
		if released {
			return
		}
		released = true

		// Use a background context so unlock succeeds even if the caller's
		// context is already cancelled.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = nl.unlockSc.Run(unlockCtx, nl.rdb, []string{lk}, token).Err()
	}

	return unlock, nil
}
