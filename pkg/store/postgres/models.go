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

package postgres

import (
	"encoding/json"
	"time"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// SessionModel is the sessions table
type SessionModel struct {
	ID               string `gorm:"type:varchar(64);primaryKey"`
	CreatedBy        string `gorm:"not null"`
	OriginalDocument string `gorm:"not null"`
	FinalDocument    string
	OriginalDigest   string    `gorm:"type:char(64);not null"`
	FinalDigest      string    `gorm:"type:varchar(64)"`
	Seal             string    `gorm:"type:text"`
	Completed        bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"not null"`
	CompletedAt      *time.Time
	ScheduleRef      *string
}

// TableName overrides the gorm default
func (SessionModel) TableName() string {
	return "esign_sessions"
}

// PartyModel is the parties table, a role occurs once per session
type PartyModel struct {
	ID              string `gorm:"type:varchar(64);primaryKey"`
	SessionID       string `gorm:"type:varchar(64);not null;uniqueIndex:idx_party_session_role"`
	Role            string `gorm:"type:varchar(32);not null;uniqueIndex:idx_party_session_role"`
	Name            string `gorm:"not null"`
	NationalID      string `gorm:"not null"`
	Email           string `gorm:"not null"`
	Phone           string
	SignedAt        *time.Time
	SignedIP        string
	SignedUserAgent string
	OTPHash         string
	OTPExpiresAt    *time.Time
	LinkHash        string
	LinkExpiresAt   *time.Time
}

// TableName overrides the gorm default
func (PartyModel) TableName() string {
	return "esign_parties"
}

// EventModel is the append-only evidence table
type EventModel struct {
	Seq            int64  `gorm:"primaryKey;autoIncrement"`
	ID             string `gorm:"type:varchar(64);uniqueIndex;not null"`
	SessionID      string `gorm:"type:varchar(64);index;not null"`
	PartyID        string `gorm:"type:varchar(64)"`
	PartyRole      string `gorm:"type:varchar(32)"`
	PartyName      string
	Type           string    `gorm:"type:varchar(32);not null"`
	TimestampUTC   time.Time `gorm:"not null"`
	TimestampLocal string    `gorm:"not null"`
	IP             string
	UserAgent      string
	Payload        []byte `gorm:"type:jsonb"`
}

// TableName overrides the gorm default
func (EventModel) TableName() string {
	return "esign_events"
}

func sessionModelFromDomain(s types.Session) SessionModel {
	return SessionModel{
		ID:               string(s.ID),
		CreatedBy:        s.CreatedBy,
		OriginalDocument: s.OriginalDocument,
		FinalDocument:    s.FinalDocument,
		OriginalDigest:   s.OriginalDigest,
		FinalDigest:      s.FinalDigest,
		Seal:             s.Seal,
		Completed:        s.Completed,
		CreatedAt:        s.CreatedAt.UTC(),
		CompletedAt:      s.CompletedAt,
		ScheduleRef:      s.ScheduleRef,
	}
}

func (m SessionModel) toDomain() types.Session {
	return types.Session{
		ID:               types.SessionID(m.ID),
		CreatedBy:        m.CreatedBy,
		OriginalDocument: m.OriginalDocument,
		FinalDocument:    m.FinalDocument,
		OriginalDigest:   m.OriginalDigest,
		FinalDigest:      m.FinalDigest,
		Seal:             m.Seal,
		Completed:        m.Completed,
		CreatedAt:        m.CreatedAt.UTC(),
		CompletedAt:      utc(m.CompletedAt),
		ScheduleRef:      m.ScheduleRef,
	}
}

func partyModelFromDomain(p types.Party) PartyModel {
	return PartyModel{
		ID:              p.ID,
		SessionID:       string(p.SessionID),
		Role:            string(p.Role),
		Name:            p.Name,
		NationalID:      p.NationalID,
		Email:           p.Email,
		Phone:           p.Phone,
		SignedAt:        p.SignedAt,
		SignedIP:        p.SignedIP,
		SignedUserAgent: p.SignedUserAgent,
		OTPHash:         p.OTPHash,
		OTPExpiresAt:    p.OTPExpiresAt,
		LinkHash:        p.LinkHash,
		LinkExpiresAt:   p.LinkExpiresAt,
	}
}

func (m PartyModel) toDomain() types.Party {
	return types.Party{
		ID:              m.ID,
		SessionID:       types.SessionID(m.SessionID),
		Role:            types.Role(m.Role),
		Name:            m.Name,
		NationalID:      m.NationalID,
		Email:           m.Email,
		Phone:           m.Phone,
		SignedAt:        utc(m.SignedAt),
		SignedIP:        m.SignedIP,
		SignedUserAgent: m.SignedUserAgent,
		OTPHash:         m.OTPHash,
		OTPExpiresAt:    utc(m.OTPExpiresAt),
		LinkHash:        m.LinkHash,
		LinkExpiresAt:   utc(m.LinkExpiresAt),
	}
}

func eventModelFromDomain(e types.Event) (EventModel, error) {
	var payload []byte
	if e.Payload != nil {
		var err error
		if payload, err = json.Marshal(e.Payload); err != nil {
			return EventModel{}, err
		}
	}
	return EventModel{
		ID:             e.ID,
		SessionID:      string(e.SessionID),
		PartyID:        e.PartyID,
		PartyRole:      string(e.PartyRole),
		PartyName:      e.PartyName,
		Type:           string(e.Type),
		TimestampUTC:   e.TimestampUTC.UTC(),
		TimestampLocal: e.TimestampLocal.Format(time.RFC3339Nano),
		IP:             e.IP,
		UserAgent:      e.UserAgent,
		Payload:        payload,
	}, nil
}

func (m EventModel) toDomain() (types.Event, error) {
	e := types.Event{
		ID:           m.ID,
		Seq:          m.Seq,
		SessionID:    types.SessionID(m.SessionID),
		PartyID:      m.PartyID,
		PartyRole:    types.Role(m.PartyRole),
		PartyName:    m.PartyName,
		Type:         types.EventType(m.Type),
		TimestampUTC: m.TimestampUTC.UTC(),
		IP:           m.IP,
		UserAgent:    m.UserAgent,
	}
	local, err := time.Parse(time.RFC3339Nano, m.TimestampLocal)
	if err != nil {
		return e, err
	}
	e.TimestampLocal = local
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &e.Payload); err != nil {
			return e, err
		}
	}
	return e, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
