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
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testMutualExclusion(t *testing.T, locker Locker) {
	t.Helper()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "session")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxSeen) {
				atomic.StoreInt32(&maxSeen, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestMemoryLocker(t *testing.T) {
	t.Run("mutual exclusion", func(t *testing.T) {
		testMutualExclusion(t, NewMemoryLocker())
	})

	t.Run("different keys do not block", func(t *testing.T) {
		l := NewMemoryLocker()
		unlockA, err := l.Lock(context.Background(), "a")
		assert.NoError(t, err)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		unlockB, err := l.Lock(ctx, "b")
		assert.NoError(t, err)
		unlockB()
		unlockA()
	})

	t.Run("context done while waiting", func(t *testing.T) {
		l := NewMemoryLocker()
		unlock, _ := l.Lock(context.Background(), "a")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := l.Lock(ctx, "a")
		assert.Equal(t, context.DeadlineExceeded, err)
		unlock()
	})

	t.Run("entries are cleaned up", func(t *testing.T) {
		l := NewMemoryLocker()
		unlock, _ := l.Lock(context.Background(), "a")
		unlock()
		unlock()
		assert.Empty(t, l.entries)
	})
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("ESIGN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ESIGN_TEST_REDIS_ADDR not set")
	}
	l, err := NewRedisLocker(addr, "", 0, time.Second)
	if !assert.NoError(t, err) {
		return
	}
	defer l.Close()

	t.Run("mutual exclusion", func(t *testing.T) {
		testMutualExclusion(t, l)
	})
}

func TestNewRedisLocker(t *testing.T) {
	_, err := NewRedisLocker("", "", 0, 0)
	assert.Error(t, err)
}
