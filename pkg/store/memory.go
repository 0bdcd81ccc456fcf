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

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// Compiler check
var _ Store = (*MemoryStore)(nil)

type record struct {
	mutex   sync.Mutex
	session types.Session
	parties []types.Party
	events  []types.Event
}

// MemoryStore keeps everything in process memory. Updates of one session are serialized.
type MemoryStore struct {
	mutex   sync.RWMutex
	records map[types.SessionID]*record
	seq     int64
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[types.SessionID]*record{}}
}

// CreateSession stores a new session together with its first events
func (m *MemoryStore) CreateSession(_ context.Context, session types.Session, events []types.Event) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.records[session.ID]; ok {
		return ErrExists
	}
	r := &record{session: CloneSession(session)}
	for _, e := range events {
		if e.SessionID != session.ID {
			return fmt.Errorf("event %s belongs to another session", e.ID)
		}
		m.seq++
		e.Seq = m.seq
		r.events = append(r.events, cloneEvent(e))
	}
	m.records[session.ID] = r
	return nil
}

// Update works on a copy of the session record which is committed when fn returns nil
func (m *MemoryStore) Update(ctx context.Context, id types.SessionID, fn func(tx Tx) error) error {
	r, err := m.record(id)
	if err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{
		session: CloneSession(r.session),
		parties: cloneParties(r.parties),
	}
	if err := fn(tx); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, e := range tx.events {
		m.seq++
		e.Seq = m.seq
		r.events = append(r.events, e)
	}
	r.session = tx.session
	r.parties = tx.parties
	return nil
}

// GetSession returns a copy of the session
func (m *MemoryStore) GetSession(_ context.Context, id types.SessionID) (*types.Session, error) {
	r, err := m.record(id)
	if err != nil {
		return nil, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	s := CloneSession(r.session)
	return &s, nil
}

// ListParties returns copies of the parties in stamping order
func (m *MemoryStore) ListParties(_ context.Context, id types.SessionID) ([]types.Party, error) {
	r, err := m.record(id)
	if err != nil {
		return nil, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	parties := cloneParties(r.parties)
	types.SortParties(parties)
	return parties, nil
}

// ListEvents returns copies of the events in append order
func (m *MemoryStore) ListEvents(_ context.Context, id types.SessionID) ([]types.Event, error) {
	r, err := m.record(id)
	if err != nil {
		return nil, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	events := make([]types.Event, len(r.events))
	for i, e := range r.events {
		events[i] = cloneEvent(e)
	}
	return events, nil
}

func (m *MemoryStore) record(id types.SessionID) (*record, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

type memoryTx struct {
	session types.Session
	parties []types.Party
	events  []types.Event
}

func (t *memoryTx) Session() types.Session {
	return CloneSession(t.session)
}

func (t *memoryTx) Parties() []types.Party {
	parties := cloneParties(t.parties)
	types.SortParties(parties)
	return parties
}

func (t *memoryTx) ReplaceParties(parties []types.Party) error {
	seen := map[types.Role]bool{}
	for _, p := range parties {
		if p.SessionID != t.session.ID {
			return fmt.Errorf("party %s belongs to another session", p.ID)
		}
		if seen[p.Role] {
			return fmt.Errorf("duplicate role %s", p.Role)
		}
		seen[p.Role] = true
	}
	t.parties = cloneParties(parties)
	return nil
}

func (t *memoryTx) SaveParty(party types.Party) error {
	for i, p := range t.parties {
		if p.ID == party.ID {
			if p.Role != party.Role {
				return fmt.Errorf("party %s cannot change role", party.ID)
			}
			t.parties[i] = CloneParty(party)
			return nil
		}
	}
	return fmt.Errorf("party %s not found", party.ID)
}

func (t *memoryTx) SaveSession(session types.Session) error {
	if session.ID != t.session.ID {
		return fmt.Errorf("session %s cannot be saved in transaction of %s", session.ID, t.session.ID)
	}
	if session.OriginalDigest != t.session.OriginalDigest {
		return fmt.Errorf("original digest of session %s cannot change", session.ID)
	}
	t.session = CloneSession(session)
	return nil
}

func (t *memoryTx) Append(events ...types.Event) error {
	for _, e := range events {
		if e.SessionID != t.session.ID {
			return fmt.Errorf("event %s belongs to another session", e.ID)
		}
		t.events = append(t.events, cloneEvent(e))
	}
	return nil
}

func cloneParties(parties []types.Party) []types.Party {
	if parties == nil {
		return nil
	}
	result := make([]types.Party, len(parties))
	for i, p := range parties {
		result[i] = CloneParty(p)
	}
	return result
}

func cloneEvent(e types.Event) types.Event {
	if e.Payload != nil {
		payload := make(map[string]interface{}, len(e.Payload))
		for k, v := range e.Payload {
			payload[k] = v
		}
		e.Payload = payload
	}
	return e
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
