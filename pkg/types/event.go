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

// EventType is the closed enumeration of evidence events
type EventType string

const (
	// EventSessionCreated is recorded when a session is created for an uploaded document
	EventSessionCreated EventType = "SESSION_CREATED"
	// EventDocumentUploaded records the digest of the original document
	EventDocumentUploaded EventType = "PDF_UPLOADED"
	// EventPartiesDefined is recorded every time the roster is replaced
	EventPartiesDefined EventType = "PARTIES_DEFINED"
	// EventIndividualLinkGenerated is recorded when a magic link is issued to the individual party
	EventIndividualLinkGenerated EventType = "INDIVIDUAL_LINK_GENERATED"
	// EventOTPSent is recorded when a one-time code is issued to a party
	EventOTPSent EventType = "OTP_SENT"
	// EventOTPVerified is recorded when a party presents a valid one-time code
	EventOTPVerified EventType = "OTP_VERIFIED"
	// EventConsentGiven records the explicit consent of a signing party
	EventConsentGiven EventType = "CONSENT_GIVEN"
	// EventSigned is recorded when a party signs
	EventSigned EventType = "SIGNED"
	// EventFinalSeal records the seal of the final document
	EventFinalSeal EventType = "FINAL_SEAL"
	// EventFinalized is recorded when the session is completed
	EventFinalized EventType = "FINALIZED"
)

// Event is an immutable entry of the evidence ledger of a session.
// Seq is assigned by the store on append and orders events with equal timestamps.
type Event struct {
	ID             string
	Seq            int64
	SessionID      SessionID
	PartyID        string
	PartyRole      Role
	PartyName      string
	Type           EventType
	TimestampUTC   time.Time
	TimestampLocal time.Time
	IP             string
	UserAgent      string
	Payload        map[string]interface{}
}

// RequestMeta carries the request facts captured with an event. Both fields are optional.
type RequestMeta struct {
	IP        string
	UserAgent string
}
