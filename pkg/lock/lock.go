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
	"sync"
)

// Locker provides mutual exclusion per key. Lock blocks until the lock is held or ctx is done.
// The returned function releases the lock and must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Compiler check
var _ Locker = (*MemoryLocker)(nil)

type entry struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker is an in-process Locker. Entries are removed when nobody holds or waits for them.
type MemoryLocker struct {
	mutex   sync.Mutex
	entries map[string]*entry
}

// NewMemoryLocker creates a MemoryLocker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: map[string]*entry{}}
}

// Lock acquires the lock for key
func (m *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	m.mutex.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mutex.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *MemoryLocker) release(key string, e *entry) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}
