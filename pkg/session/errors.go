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
	"errors"
	"fmt"

	"github.com/nuts-foundation/nuts-esign/pkg/stamp"
	"github.com/nuts-foundation/nuts-esign/pkg/store"
)

// ErrInvalidRoster is returned when a roster misses a role, carries an unexpected or duplicate role, or has invalid party details.
// It is also returned when the roster is redefined after a signature was recorded.
var ErrInvalidRoster = errors.New("invalid roster")

// ErrUnknownParty is returned when the session has no party for the requested role
var ErrUnknownParty = errors.New("unknown party")

// ErrConsentRequired is returned when signing without consent
var ErrConsentRequired = errors.New("consent is required")

// ErrInvalidOrExpiredOtp is returned for any OTP that does not verify, whatever the reason
var ErrInvalidOrExpiredOtp = errors.New("invalid or expired otp")

// ErrInvalidOrExpiredLink is returned for any link token that does not verify, whatever the reason
var ErrInvalidOrExpiredLink = errors.New("invalid or expired link")

// ErrStamping is returned when the document could not be stamped
var ErrStamping = stamp.ErrStamping

// ErrFinalizationFailed is returned when all parties signed but the final document could not be produced.
// Signatures are kept, finalization can be retried.
var ErrFinalizationFailed = errors.New("finalization failed")

// ErrStorage is returned when the store or blob store fails
var ErrStorage = errors.New("storage error")

// ErrNotCompleted is returned when downloading the final document of a session that is not completed
var ErrNotCompleted = errors.New("session not completed")

// ErrSessionNotFound is returned for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidDocument is returned when the uploaded document is empty, too large or not a PDF
var ErrInvalidDocument = errors.New("invalid document")

// ErrSessionCompleted is returned for changes to a completed session
var ErrSessionCompleted = errors.New("session already completed")

// ErrAlreadySigned is returned when issuing a code or link to a party that already signed
var ErrAlreadySigned = errors.New("party already signed")

// ErrSignaturesPending is returned when finalizing a session with unsigned parties
var ErrSignaturesPending = errors.New("signatures pending")

var kinds = []error{
	ErrInvalidRoster, ErrUnknownParty, ErrConsentRequired, ErrInvalidOrExpiredOtp, ErrInvalidOrExpiredLink,
	ErrStamping, ErrFinalizationFailed, ErrStorage, ErrNotCompleted, ErrSessionNotFound, ErrInvalidDocument,
	ErrSessionCompleted, ErrAlreadySigned, ErrSignaturesPending,
}

// storageError keeps errors of a known kind and maps everything else to ErrStorage
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
