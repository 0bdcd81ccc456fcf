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

package types

import "time"

// SessionID uniquely identifies a signing session
type SessionID string

// State is the derived lifecycle state of a signing session
type State string

const (
	// StateCreated means the document is uploaded and its digest is known, but no roster exists yet
	StateCreated State = "CREATED"
	// StatePartiesDefined means a roster exists and nobody has signed
	StatePartiesDefined State = "PARTIES_DEFINED"
	// StateAwaitingSignatures means at least one party signed and the session is not completed
	StateAwaitingSignatures State = "AWAITING_SIGNATURES"
	// StateCompleted is terminal: the final document is stamped and sealed
	StateCompleted State = "COMPLETED"
)

// Session holds the persisted facts of a signing session.
// CompletedAt and FinalDocument are set iff Completed is true. OriginalDigest never changes after creation.
type Session struct {
	ID               SessionID
	CreatedBy        string
	OriginalDocument string
	FinalDocument    string
	OriginalDigest   string
	FinalDigest      string
	Seal             string
	Completed        bool
	CreatedAt        time.Time
	CompletedAt      *time.Time
	// ScheduleRef is a weak, informational reference to an external scheduling entity
	ScheduleRef *string
}

// StateOf derives the lifecycle state from the session and its roster
func StateOf(session Session, parties []Party) State {
	if session.Completed {
		return StateCompleted
	}
	if len(parties) == 0 {
		return StateCreated
	}
	for _, p := range parties {
		if p.Signed() {
			return StateAwaitingSignatures
		}
	}
	return StatePartiesDefined
}

// AllSigned returns true when a non-empty roster has a signature for every party
func AllSigned(parties []Party) bool {
	if len(parties) == 0 {
		return false
	}
	for _, p := range parties {
		if !p.Signed() {
			return false
		}
	}
	return true
}

// AnySigned returns true when at least one party of the roster has signed
func AnySigned(parties []Party) bool {
	for _, p := range parties {
		if p.Signed() {
			return true
		}
	}
	return false
}
