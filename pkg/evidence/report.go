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
	"time"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// Record is the exported form of one event
type Record struct {
	ID             string                 `json:"id"`
	PartyRole      types.Role             `json:"partyRole,omitempty"`
	PartyName      string                 `json:"partyName,omitempty"`
	Type           types.EventType        `json:"type"`
	TimestampUTC   time.Time              `json:"timestampUtc"`
	TimestampLocal time.Time              `json:"timestampLocal"`
	IP             string                 `json:"ip,omitempty"`
	UserAgent      string                 `json:"userAgent,omitempty"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
}

// Report is the evidence export of a session
type Report struct {
	SessionID      types.SessionID `json:"sessionId"`
	OriginalDigest string          `json:"hashOriginal"`
	FinalDigest    string          `json:"hashFinal,omitempty"`
	Completed      bool            `json:"completed"`
	Events         []Record        `json:"events"`
}

// BuildReport exports the session digests and its events ordered by UTC timestamp
func BuildReport(session types.Session, events []types.Event) Report {
	ordered := append([]types.Event(nil), events...)
	Sort(ordered)
	records := make([]Record, 0, len(ordered))
	for _, e := range ordered {
		records = append(records, Record{
			ID:             e.ID,
			PartyRole:      e.PartyRole,
			PartyName:      e.PartyName,
			Type:           e.Type,
			TimestampUTC:   e.TimestampUTC,
			TimestampLocal: e.TimestampLocal,
			IP:             e.IP,
			UserAgent:      e.UserAgent,
			Payload:        e.Payload,
		})
	}
	return Report{
		SessionID:      session.ID,
		OriginalDigest: session.OriginalDigest,
		FinalDigest:    session.FinalDigest,
		Completed:      session.Completed,
		Events:         records,
	}
}
