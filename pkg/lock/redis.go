/*
 * Nuts esign
 * Copyright (C) 2020. Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nuts-foundation/nuts-esign/logging"
)

// DefaultLockTTL bounds how long a crashed holder can block a session
const DefaultLockTTL = 30 * time.Second

const retryInterval = 25 * time.Millisecond

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Compiler check
var _ Locker = (*RedisLocker)(nil)

// RedisLocker is a Locker shared by all processes using the same redis database.
// A lock is a key set with NX and a random owner token, it expires after TTL.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisLocker creates a RedisLocker connecting to the given address
func NewRedisLocker(addr, password string, db int, ttl time.Duration) (*RedisLocker, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisLockerWithClient(client, ttl), nil
}

// NewRedisLockerWithClient creates a RedisLocker on an existing client
func NewRedisLockerWithClient(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{client: client, prefix: "esign:lock:", ttl: ttl}
}

// Lock polls until the key can be set or ctx is done
func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	owner, err := randomOwner()
	if err != nil {
		return nil, err
	}
	redisKey := r.prefix + key
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, redisKey, owner, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				if err := releaseScript.Run(context.Background(), r.client, []string{redisKey}, owner).Err(); err != nil {
					logging.Log().WithError(err).Warnf("could not release lock %s", key)
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close closes the underlying client
func (r *RedisLocker) Close() error {
	return r.client.Close()
}

func randomOwner() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
