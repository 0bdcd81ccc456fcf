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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

func TestLedger_Event(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	l := NewLedger(loc)
	l.NowFunc = func() time.Time { return now }

	t.Run("with party", func(t *testing.T) {
		party := types.Party{ID: "p1", Role: types.RoleIndividual, Name: "Ana"}
		e := l.Event("s1", types.EventSigned, &party, types.RequestMeta{IP: "1.2.3.4", UserAgent: "ua"}, map[string]interface{}{"role": "INDIVIDUAL"})
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, types.SessionID("s1"), e.SessionID)
		assert.Equal(t, "p1", e.PartyID)
		assert.Equal(t, types.RoleIndividual, e.PartyRole)
		assert.Equal(t, "Ana", e.PartyName)
		assert.Equal(t, now, e.TimestampUTC)
		assert.True(t, e.TimestampLocal.Equal(now))
		assert.Equal(t, 12, e.TimestampLocal.Hour())
		assert.Equal(t, "1.2.3.4", e.IP)
	})

	t.Run("without party", func(t *testing.T) {
		e := l.Event("s1", types.EventSessionCreated, nil, types.RequestMeta{}, nil)
		assert.Empty(t, e.PartyID)
		assert.Empty(t, e.IP)
	})

	t.Run("ids are unique", func(t *testing.T) {
		a := l.Event("s1", types.EventOTPSent, nil, types.RequestMeta{}, nil)
		b := l.Event("s1", types.EventOTPSent, nil, types.RequestMeta{}, nil)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestBuildReport(t *testing.T) {
	t0 := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	events := []types.Event{
		{ID: "c", Seq: 3, Type: types.EventFinalized, TimestampUTC: t0.Add(time.Second)},
		{ID: "b", Seq: 2, Type: types.EventDocumentUploaded, TimestampUTC: t0},
		{ID: "a", Seq: 1, Type: types.EventSessionCreated, TimestampUTC: t0},
	}
	session := types.Session{ID: "s1", OriginalDigest: "abc", FinalDigest: "def", Completed: true}

	report := BuildReport(session, events)

	assert.Equal(t, types.SessionID("s1"), report.SessionID)
	assert.Equal(t, "abc", report.OriginalDigest)
	assert.Equal(t, "def", report.FinalDigest)
	assert.True(t, report.Completed)
	if assert.Len(t, report.Events, 3) {
		assert.Equal(t, "a", report.Events[0].ID)
		assert.Equal(t, "b", report.Events[1].ID)
		assert.Equal(t, "c", report.Events[2].ID)
	}
	assert.Equal(t, "c", events[0].ID, "input is not reordered")
	assert.Equal(t, 1, Count(events, types.EventFinalized))
}
