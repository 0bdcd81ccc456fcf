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

package evidence

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// Ledger builds evidence events. It does not persist them: events are appended through the store
// within the same transaction as the effect they record.
type Ledger struct {
	// Location is used for the local timestamp copy
	Location *time.Location
	// NowFunc returns the current time, it can be replaced in tests
	NowFunc func() time.Time
}

// NewLedger creates a Ledger recording local time in the given location
func NewLedger(location *time.Location) *Ledger {
	if location == nil {
		location = time.Local
	}
	return &Ledger{Location: location, NowFunc: time.Now}
}

// Event creates a new event for the session. The party is optional.
func (l *Ledger) Event(sessionID types.SessionID, eventType types.EventType, party *types.Party, meta types.RequestMeta, payload map[string]interface{}) types.Event {
	now := l.NowFunc()
	e := types.Event{
		ID:             uuid.New().String(),
		SessionID:      sessionID,
		Type:           eventType,
		TimestampUTC:   now.UTC(),
		TimestampLocal: now.In(l.Location),
		IP:             meta.IP,
		UserAgent:      meta.UserAgent,
		Payload:        payload,
	}
	if party != nil {
		e.PartyID = party.ID
		e.PartyRole = party.Role
		e.PartyName = party.Name
	}
	return e
}

// Sort orders events by UTC timestamp, events with equal timestamps keep their append order
func Sort(events []types.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].TimestampUTC.Equal(events[j].TimestampUTC) {
			return events[i].Seq < events[j].Seq
		}
		return events[i].TimestampUTC.Before(events[j].TimestampUTC)
	})
}

// Count returns the amount of events of the given type
func Count(events []types.Event, eventType types.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
