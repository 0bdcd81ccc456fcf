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
	"errors"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// ErrNotFound is returned when the session does not exist
var ErrNotFound = errors.New("session not found")

// ErrExists is returned when a session with the same id is created twice
var ErrExists = errors.New("session already exists")

// Store persists sessions, their parties and their evidence events.
// Update runs fn atomically: either all changes made through the Tx are persisted or none.
// Events are append-only, they can never be changed or removed once committed.
type Store interface {
	CreateSession(ctx context.Context, session types.Session, events []types.Event) error
	Update(ctx context.Context, id types.SessionID, fn func(tx Tx) error) error
	GetSession(ctx context.Context, id types.SessionID) (*types.Session, error)
	ListParties(ctx context.Context, id types.SessionID) ([]types.Party, error)
	ListEvents(ctx context.Context, id types.SessionID) ([]types.Event, error)
}

// Tx is the view on one session within an Update
type Tx interface {
	Session() types.Session
	Parties() []types.Party
	// ReplaceParties removes the current roster and stores the given parties
	ReplaceParties(parties []types.Party) error
	SaveParty(party types.Party) error
	SaveSession(session types.Session) error
	Append(events ...types.Event) error
}

// CloneParty returns a copy of the party that shares no pointers with p
func CloneParty(p types.Party) types.Party {
	p.SignedAt = cloneTime(p.SignedAt)
	p.OTPExpiresAt = cloneTime(p.OTPExpiresAt)
	p.LinkExpiresAt = cloneTime(p.LinkExpiresAt)
	return p
}

// CloneSession returns a copy of the session that shares no pointers with s
func CloneSession(s types.Session) types.Session {
	s.CompletedAt = cloneTime(s.CompletedAt)
	if s.ScheduleRef != nil {
		ref := *s.ScheduleRef
		s.ScheduleRef = &ref
	}
	return s
}
