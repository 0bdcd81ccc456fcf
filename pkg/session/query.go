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
	"context"
	"fmt"
	"time"

	"github.com/nuts-foundation/nuts-esign/pkg/blob"
	"github.com/nuts-foundation/nuts-esign/pkg/evidence"
	"github.com/nuts-foundation/nuts-esign/pkg/seal"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// PartyStatus is the public view on one party
type PartyStatus struct {
	Role     types.Role `json:"role"`
	Name     string     `json:"name"`
	Signed   bool       `json:"signed"`
	SignedAt *time.Time `json:"signedAt,omitempty"`
}

// Status is the public view on a session
type Status struct {
	SessionID   types.SessionID `json:"sessionId"`
	State       types.State     `json:"state"`
	Completed   bool            `json:"completed"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Parties     []PartyStatus   `json:"parties"`
}

// Status returns the per-party signing state and the completion of the session
func (s *Service) Status(ctx context.Context, id types.SessionID) (*Status, error) {
	session, err := s.Store.GetSession(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	parties, err := s.Store.ListParties(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	status := &Status{
		SessionID:   session.ID,
		State:       types.StateOf(*session, parties),
		Completed:   session.Completed,
		CreatedAt:   session.CreatedAt,
		CompletedAt: session.CompletedAt,
		Parties:     make([]PartyStatus, 0, len(parties)),
	}
	for _, p := range parties {
		status.Parties = append(status.Parties, PartyStatus{
			Role:     p.Role,
			Name:     p.Name,
			Signed:   p.Signed(),
			SignedAt: p.SignedAt,
		})
	}
	return status, nil
}

// Evidence returns the digests and the ordered event ledger of the session
func (s *Service) Evidence(ctx context.Context, id types.SessionID) (*evidence.Report, error) {
	session, err := s.Store.GetSession(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	events, err := s.Store.ListEvents(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	report := evidence.BuildReport(*session, events)
	return &report, nil
}

// DownloadFinal returns the stamped document, it fails with ErrNotCompleted until the session is completed
func (s *Service) DownloadFinal(ctx context.Context, id types.SessionID) ([]byte, error) {
	session, err := s.Store.GetSession(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if !session.Completed {
		return nil, ErrNotCompleted
	}
	data, err := s.Blobs.Get(ctx, blob.Handle(session.FinalDocument))
	if err != nil {
		s.log(id).WithError(err).Error("could not read final document")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return data, nil
}

// VerifySeal checks a seal issued by this process and returns its payload
func (s *Service) VerifySeal(jws string) (*seal.Payload, error) {
	return s.Sealer.Verify(jws)
}
