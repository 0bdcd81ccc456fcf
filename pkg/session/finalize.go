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

	"github.com/nuts-foundation/nuts-esign/logging"
	"github.com/nuts-foundation/nuts-esign/pkg/blob"
	"github.com/nuts-foundation/nuts-esign/pkg/metrics"
	"github.com/nuts-foundation/nuts-esign/pkg/seal"
	"github.com/nuts-foundation/nuts-esign/pkg/store"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// Finalize produces the final document of a session in which every party signed. It is idempotent: a completed
// session is returned as is. It fails with ErrSignaturesPending while a party has not signed.
func (s *Service) Finalize(ctx context.Context, id types.SessionID) (*types.Session, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.finalize(ctx, id)
}

// finalize must be called with the session lock held
func (s *Service) finalize(ctx context.Context, id types.SessionID) (*types.Session, error) {
	session, err := s.Store.GetSession(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if session.Completed {
		return session, nil
	}
	parties, err := s.Store.ListParties(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if !types.AllSigned(parties) {
		return nil, ErrSignaturesPending
	}

	final, finalDigest, jws, err := s.produce(ctx, *session, parties)
	if err != nil {
		s.Metrics.Finalizations.WithLabelValues(metrics.ResultFailure).Inc()
		s.log(id).WithError(err).Error("could not finalize session")
		return nil, fmt.Errorf("%w: %w", ErrFinalizationFailed, err)
	}

	var completed types.Session
	err = s.Store.Update(ctx, id, func(tx store.Tx) error {
		current := tx.Session()
		if current.Completed {
			completed = current
			return nil
		}
		if !types.AllSigned(tx.Parties()) {
			return ErrSignaturesPending
		}
		completedAt := s.now().UTC()
		current.FinalDocument = final
		current.FinalDigest = finalDigest
		current.Seal = jws
		current.Completed = true
		current.CompletedAt = &completedAt
		if err := tx.SaveSession(current); err != nil {
			return err
		}
		completed = current
		meta := types.RequestMeta{}
		return tx.Append(
			s.Ledger.Event(id, types.EventFinalSeal, nil, meta, map[string]interface{}{"jws": jws}),
			s.Ledger.Event(id, types.EventFinalized, nil, meta, map[string]interface{}{
				"hash_original": current.OriginalDigest,
				"hash_final":    finalDigest,
			}),
		)
	})
	if err != nil {
		s.Metrics.Finalizations.WithLabelValues(metrics.ResultFailure).Inc()
		s.log(id).WithError(err).Error("could not store finalized session")
		return nil, fmt.Errorf("%w: %w", ErrFinalizationFailed, storageError(err))
	}
	s.Metrics.Finalizations.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log(id).Info("session finalized")
	return &completed, nil
}

// produce stamps the original document, stores the result and seals the digests and signer facts
func (s *Service) produce(ctx context.Context, session types.Session, parties []types.Party) (string, string, string, error) {
	original, err := s.Blobs.Get(ctx, blob.Handle(session.OriginalDocument))
	if err != nil {
		return "", "", "", fmt.Errorf("%w: could not read original document: %v", ErrStorage, err)
	}
	if seal.DigestBytes(original) != session.OriginalDigest {
		return "", "", "", fmt.Errorf("%w: original document does not match its digest", ErrStorage)
	}
	blocks, err := s.Lines.Blocks(parties, session.OriginalDigest, s.Config.StampPage)
	if err != nil {
		return "", "", "", err
	}
	stamped, err := s.Stamper.Stamp(ctx, original, blocks)
	if err != nil {
		return "", "", "", err
	}
	digest := seal.DigestBytes(stamped)
	stored, err := s.Blobs.Put(ctx, stamped)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: could not store final document: %v", ErrStorage, err)
	}

	signed := make([]seal.SignedParty, 0, len(parties))
	for _, p := range parties {
		signed = append(signed, seal.SignedParty{Role: string(p.Role), NationalID: p.NationalID, SignedAt: p.SignedAt.UTC().Format(time.RFC3339)})
	}
	jws, err := s.Sealer.Seal(seal.Payload{
		SessionID:      string(session.ID),
		OriginalDigest: session.OriginalDigest,
		FinalDigest:    digest,
		SignedParties:  signed,
	}, s.now())
	if err != nil {
		logging.Log().WithError(err).Error("could not seal session")
		return "", "", "", err
	}
	return string(stored), digest, jws, nil
}
