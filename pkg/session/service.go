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

package session

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nuts-foundation/nuts-esign/logging"
	"github.com/nuts-foundation/nuts-esign/pkg/blob"
	"github.com/nuts-foundation/nuts-esign/pkg/evidence"
	"github.com/nuts-foundation/nuts-esign/pkg/lock"
	"github.com/nuts-foundation/nuts-esign/pkg/metrics"
	"github.com/nuts-foundation/nuts-esign/pkg/notify"
	"github.com/nuts-foundation/nuts-esign/pkg/seal"
	"github.com/nuts-foundation/nuts-esign/pkg/stamp"
	"github.com/nuts-foundation/nuts-esign/pkg/store"
	"github.com/nuts-foundation/nuts-esign/pkg/token"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// DefaultMaxDocumentSize limits uploaded documents to 20 MiB
const DefaultMaxDocumentSize = 20 << 20

// Config holds the behaviour settings of the Service
type Config struct {
	// RequiredRoles is the exact role set a roster must have
	RequiredRoles []types.Role
	// StampPage is the zero based page receiving the stamps, stamp.LastPage for the last page
	StampPage       int
	MaxDocumentSize int64
	// PublicURL is the base of magic links
	PublicURL    string
	LinkTemplate string
}

// DefaultConfig requires all roles and stamps the last page
func DefaultConfig() Config {
	return Config{
		RequiredRoles:   types.AllRoles,
		StampPage:       stamp.LastPage,
		MaxDocumentSize: DefaultMaxDocumentSize,
		LinkTemplate:    token.DefaultLinkTemplate,
	}
}

// Service is the signing session state machine. All state changing operations on a session run under the session lock
// and commit their evidence events in the same store transaction as their effect.
type Service struct {
	Store    store.Store
	Blobs    blob.Store
	Locker   lock.Locker
	Tokens   *token.Issuer
	Sealer   *seal.Sealer
	Stamper  stamp.Stamper
	Lines    *stamp.LineRenderer
	Notifier notify.Notifier
	Ledger   *evidence.Ledger
	Metrics  *metrics.Metrics
	Config   Config
	// NowFunc returns the current time, it can be replaced in tests
	NowFunc func() time.Time
}

// CreateRequest holds the input of Create
type CreateRequest struct {
	Document  []byte
	CreatedBy string
	// ScheduleRef optionally refers to an external workflow entity
	ScheduleRef *string
	Meta        types.RequestMeta
}

// Create stores the document and opens a new session for it
func (s *Service) Create(ctx context.Context, request CreateRequest) (*types.Session, error) {
	if err := s.validateDocument(request.Document); err != nil {
		return nil, err
	}
	handle, err := s.Blobs.Put(ctx, request.Document)
	if err != nil {
		logging.Log().WithError(err).Error("could not store document")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	session := types.Session{
		ID:               types.SessionID(uuid.New().String()),
		CreatedBy:        request.CreatedBy,
		OriginalDocument: string(handle),
		OriginalDigest:   seal.DigestBytes(request.Document),
		CreatedAt:        s.now().UTC(),
		ScheduleRef:      request.ScheduleRef,
	}
	createdPayload := map[string]interface{}{"created_by": request.CreatedBy}
	if request.ScheduleRef != nil {
		createdPayload["schedule_ref"] = *request.ScheduleRef
	}
	events := []types.Event{
		s.Ledger.Event(session.ID, types.EventSessionCreated, nil, request.Meta, createdPayload),
		s.Ledger.Event(session.ID, types.EventDocumentUploaded, nil, request.Meta, map[string]interface{}{
			"hash_original": session.OriginalDigest,
			"size":          len(request.Document),
		}),
	}
	if err := s.Store.CreateSession(ctx, session, events); err != nil {
		logging.Log().WithError(err).Error("could not store session")
		return nil, storageError(err)
	}

	s.Metrics.SessionsCreated.Inc()
	s.log(session.ID).Info("session created")
	return &session, nil
}

// DefineParties stores the roster of the session, replacing any previous roster.
// It fails with ErrInvalidRoster once a party signed.
func (s *Service) DefineParties(ctx context.Context, id types.SessionID, roster types.Roster, meta types.RequestMeta) ([]types.Party, error) {
	if err := roster.Validate(s.Config.RequiredRoles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}

	var parties []types.Party
	err := s.update(ctx, id, func(tx store.Tx) error {
		session := tx.Session()
		if session.Completed {
			return ErrSessionCompleted
		}
		if types.AnySigned(tx.Parties()) {
			return fmt.Errorf("%w: parties cannot change after the first signature", ErrInvalidRoster)
		}
		parties = make([]types.Party, 0, len(roster))
		roles := make([]string, 0, len(roster))
		for _, role := range roster.Roles() {
			input := roster[role]
			nationalID, _ := types.NormalizeNationalID(input.NationalID)
			parties = append(parties, types.Party{
				ID:         uuid.New().String(),
				SessionID:  id,
				Role:       role,
				Name:       input.Name,
				NationalID: nationalID,
				Email:      input.Email,
				Phone:      input.Phone,
			})
			roles = append(roles, string(role))
		}
		if err := tx.ReplaceParties(parties); err != nil {
			return err
		}
		return tx.Append(s.Ledger.Event(id, types.EventPartiesDefined, nil, meta, map[string]interface{}{"roles": roles}))
	})
	if err != nil {
		return nil, err
	}
	s.log(id).Info("parties defined")
	return parties, nil
}

func (s *Service) validateDocument(document []byte) error {
	if len(document) == 0 {
		return fmt.Errorf("%w: document is empty", ErrInvalidDocument)
	}
	limit := s.Config.MaxDocumentSize
	if limit <= 0 {
		limit = DefaultMaxDocumentSize
	}
	if int64(len(document)) > limit {
		return fmt.Errorf("%w: document exceeds %d bytes", ErrInvalidDocument, limit)
	}
	if !bytes.HasPrefix(document, []byte("%PDF-")) {
		return fmt.Errorf("%w: document is not a PDF", ErrInvalidDocument)
	}
	return nil
}

// update runs fn under the session lock in one store transaction
func (s *Service) update(ctx context.Context, id types.SessionID, fn func(tx store.Tx) error) error {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	return storageError(s.Store.Update(ctx, id, fn))
}

func (s *Service) lock(ctx context.Context, id types.SessionID) (func(), error) {
	unlock, err := s.Locker.Lock(ctx, "session:"+string(id))
	if err != nil {
		logging.Log().WithError(err).Errorf("could not lock session %s", id)
		return nil, fmt.Errorf("%w: could not lock session: %v", ErrStorage, err)
	}
	return unlock, nil
}

func (s *Service) deliver(ctx context.Context, party types.Party, msg notify.Message) {
	if err := s.Notifier.Deliver(ctx, notify.ContactOf(party), msg); err != nil {
		s.Metrics.NotificationsFailed.Inc()
		s.log(party.SessionID).WithError(err).Warnf("could not deliver %s to %s", msg.Kind, party.Role)
	}
}

func (s *Service) now() time.Time {
	if s.NowFunc == nil {
		return time.Now()
	}
	return s.NowFunc()
}

func (s *Service) log(id types.SessionID) *logrus.Entry {
	return logging.Log().WithField("session", id)
}

func partyByRole(parties []types.Party, role types.Role) (types.Party, bool) {
	for _, p := range parties {
		if p.Role == role {
			return p, true
		}
	}
	return types.Party{}, false
}
