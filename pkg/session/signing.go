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
	"errors"
	"fmt"
	"time"

	"github.com/nuts-foundation/nuts-esign/pkg/notify"
	"github.com/nuts-foundation/nuts-esign/pkg/store"
	"github.com/nuts-foundation/nuts-esign/pkg/token"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// SignRequest holds the input of VerifyAndSign
type SignRequest struct {
	SessionID types.SessionID
	Role      types.Role
	OTP       string
	Consent   bool
	// LinkToken is required for types.RoleIndividual
	LinkToken string
	Meta      types.RequestMeta
}

// SignResult tells whether the signature was recorded and whether it was the last one
type SignResult struct {
	Signed    bool
	AllSigned bool
	Completed bool
}

// RequestOTP issues a new one-time code to the party with the given role and delivers it.
// Delivery failures are logged, the issued code stays valid.
func (s *Service) RequestOTP(ctx context.Context, id types.SessionID, role types.Role, meta types.RequestMeta) error {
	var party types.Party
	var code string
	err := s.update(ctx, id, func(tx store.Tx) error {
		var err error
		if party, err = s.pendingParty(tx, role); err != nil {
			return err
		}
		if code, err = s.Tokens.IssueOTP(&party); err != nil {
			return err
		}
		if err := tx.SaveParty(party); err != nil {
			return err
		}
		return tx.Append(s.Ledger.Event(id, types.EventOTPSent, &party, meta, map[string]interface{}{
			"role":       string(role),
			"expires_at": party.OTPExpiresAt.Format(time.RFC3339),
		}))
	})
	if err != nil {
		return err
	}
	s.log(id).WithField("role", role).Info("otp issued")

	msg, err := notify.RenderOTP(party, code, s.Tokens.OTPTTL)
	if err != nil {
		s.log(id).WithError(err).Error("could not render otp message")
		return nil
	}
	s.deliver(ctx, party, msg)
	return nil
}

// IssueIndividualLink issues a new magic link to the individual party, delivers it and returns its URL
func (s *Service) IssueIndividualLink(ctx context.Context, id types.SessionID, meta types.RequestMeta) (string, error) {
	var party types.Party
	var url string
	err := s.update(ctx, id, func(tx store.Tx) error {
		var err error
		if party, err = s.pendingParty(tx, types.RoleIndividual); err != nil {
			return err
		}
		plain, err := s.Tokens.IssueMagicLink(&party)
		if err != nil {
			return err
		}
		if url, err = token.ComposeLink(s.Config.LinkTemplate, s.Config.PublicURL, plain, string(id)); err != nil {
			return err
		}
		if err := tx.SaveParty(party); err != nil {
			return err
		}
		return tx.Append(s.Ledger.Event(id, types.EventIndividualLinkGenerated, &party, meta, map[string]interface{}{
			"expires_at": party.LinkExpiresAt.Format(time.RFC3339),
		}))
	})
	if err != nil {
		return "", err
	}
	s.log(id).Info("individual link issued")

	msg, err := notify.RenderIndividualLink(party, url, s.Tokens.LinkTTL)
	if err != nil {
		s.log(id).WithError(err).Error("could not render link message")
		return url, nil
	}
	s.deliver(ctx, party, msg)
	return url, nil
}

// VerifyAndSign authenticates the party and records its signature. When it is the last signature the session is
// finalized while the session lock is still held. A failing finalization keeps the signature and returns
// ErrFinalizationFailed, Finalize can be used to retry.
func (s *Service) VerifyAndSign(ctx context.Context, request SignRequest) (*SignResult, error) {
	if !request.Consent {
		return nil, ErrConsentRequired
	}
	id := request.SessionID
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := &SignResult{}
	var signer types.Party
	err = storageError(s.Store.Update(ctx, id, func(tx store.Tx) error {
		party, ok := partyByRole(tx.Parties(), request.Role)
		if !ok {
			return ErrInvalidOrExpiredOtp
		}
		if request.Role == types.RoleIndividual && !s.Tokens.VerifyMagicLink(party, request.LinkToken) {
			return ErrInvalidOrExpiredLink
		}
		if !s.Tokens.VerifyOTP(party, request.OTP) {
			return ErrInvalidOrExpiredOtp
		}

		signedAt := s.now().UTC()
		party.SignedAt = &signedAt
		party.SignedIP = request.Meta.IP
		party.SignedUserAgent = request.Meta.UserAgent
		token.Clear(&party)
		if err := tx.SaveParty(party); err != nil {
			return err
		}
		err := tx.Append(
			s.Ledger.Event(id, types.EventOTPVerified, &party, request.Meta, nil),
			s.Ledger.Event(id, types.EventConsentGiven, &party, request.Meta, nil),
			s.Ledger.Event(id, types.EventSigned, &party, request.Meta, map[string]interface{}{
				"role":        string(party.Role),
				"national_id": party.NationalID,
			}),
		)
		if err != nil {
			return err
		}
		signer = party
		result.Signed = true
		result.AllSigned = types.AllSigned(tx.Parties())
		return nil
	}))
	if err != nil {
		s.authFailure(id, request.Role, err)
		return nil, err
	}
	s.Metrics.Signatures.WithLabelValues(string(signer.Role)).Inc()
	s.log(id).WithField("role", signer.Role).Info("party signed")

	if !result.AllSigned {
		return result, nil
	}
	if _, err := s.finalize(ctx, id); err != nil {
		return result, err
	}
	result.Completed = true
	return result, nil
}

// pendingParty returns the unsigned party of an open session
func (s *Service) pendingParty(tx store.Tx, role types.Role) (types.Party, error) {
	if tx.Session().Completed {
		return types.Party{}, ErrSessionCompleted
	}
	party, ok := partyByRole(tx.Parties(), role)
	if !ok {
		return types.Party{}, fmt.Errorf("%w: no party with role %s", ErrUnknownParty, role)
	}
	if party.Signed() {
		return types.Party{}, ErrAlreadySigned
	}
	return party, nil
}

func (s *Service) authFailure(id types.SessionID, role types.Role, err error) {
	var reason string
	switch {
	case errors.Is(err, ErrInvalidOrExpiredOtp):
		reason = "otp"
	case errors.Is(err, ErrInvalidOrExpiredLink):
		reason = "link"
	default:
		return
	}
	s.Metrics.AuthFailures.WithLabelValues(reason).Inc()
	s.log(id).WithField("role", role).Warnf("signing attempt rejected: %s", reason)
}
