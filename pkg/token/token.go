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

package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/nuts-foundation/nuts-esign/pkg/seal"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// DefaultOTPTTL is the lifetime of a one-time code
const DefaultOTPTTL = 300 * time.Second

// DefaultLinkTTL is the lifetime of a magic link token
const DefaultLinkTTL = 1800 * time.Second

// OTPLength is the amount of decimal digits in a one-time code
const OTPLength = 6

// linkTokenBytes is the amount of random bytes in a magic link token (384 bits)
const linkTokenBytes = 48

// ErrNotIndividual is returned when a magic link is requested for another role than types.RoleIndividual
var ErrNotIndividual = errors.New("magic links can only be issued to the individual party")

// Issuer generates one-time codes and magic link tokens and verifies them against the hashes stored on a Party.
// Only keyed hashes of the plain values are ever written to the Party.
type Issuer struct {
	OTPTTL  time.Duration
	LinkTTL time.Duration
	// NowFunc returns the current time, it can be replaced in tests
	NowFunc func() time.Time
	// CodeFunc generates the plain one-time code, it can be replaced in tests
	CodeFunc func() (string, error)
	key      []byte
}

// NewIssuer creates an Issuer with a hashing key derived from the process secret
func NewIssuer(secret []byte, otpTTL, linkTTL time.Duration) (*Issuer, error) {
	key, err := seal.DeriveKey(secret, "token")
	if err != nil {
		return nil, err
	}
	if otpTTL <= 0 {
		otpTTL = DefaultOTPTTL
	}
	if linkTTL <= 0 {
		linkTTL = DefaultLinkTTL
	}
	return &Issuer{
		OTPTTL:   otpTTL,
		LinkTTL:  linkTTL,
		NowFunc:  time.Now,
		CodeFunc: RandomCode,
		key:      key,
	}, nil
}

// RandomCode returns a cryptographically random code of OTPLength decimal digits
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RandomLinkToken returns a URL-safe token with linkTokenBytes of randomness
func RandomLinkToken() (string, error) {
	buf := make([]byte, linkTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IssueOTP generates a new code for the party, stores its hash and expiry on the party and returns the plain code.
// A previously issued code is replaced.
func (i *Issuer) IssueOTP(party *types.Party) (string, error) {
	code, err := i.CodeFunc()
	if err != nil {
		return "", fmt.Errorf("could not generate code: %w", err)
	}
	expires := i.NowFunc().Add(i.OTPTTL).UTC()
	party.OTPHash = i.hash("otp", code)
	party.OTPExpiresAt = &expires
	return code, nil
}

// IssueMagicLink generates a new link token for the individual party, stores its hash and expiry on the party
// and returns the plain token.
func (i *Issuer) IssueMagicLink(party *types.Party) (string, error) {
	if party.Role != types.RoleIndividual {
		return "", ErrNotIndividual
	}
	plain, err := RandomLinkToken()
	if err != nil {
		return "", fmt.Errorf("could not generate link token: %w", err)
	}
	expires := i.NowFunc().Add(i.LinkTTL).UTC()
	party.LinkHash = i.hash("link", plain)
	party.LinkExpiresAt = &expires
	return plain, nil
}

// VerifyOTP returns true when the candidate matches the stored code hash and the code has not expired.
// It never returns an error: missing, expired and mismatching input all yield false.
func (i *Issuer) VerifyOTP(party types.Party, candidate string) bool {
	return i.verify("otp", party.OTPHash, party.OTPExpiresAt, candidate)
}

// VerifyMagicLink returns true when the candidate matches the stored link hash and the link has not expired.
func (i *Issuer) VerifyMagicLink(party types.Party, candidate string) bool {
	if party.Role != types.RoleIndividual {
		return false
	}
	return i.verify("link", party.LinkHash, party.LinkExpiresAt, candidate)
}

// Clear zeroes all stored code and link hashes of the party so they cannot be replayed
func Clear(party *types.Party) {
	party.OTPHash = ""
	party.OTPExpiresAt = nil
	party.LinkHash = ""
	party.LinkExpiresAt = nil
}

func (i *Issuer) verify(purpose, storedHash string, expiresAt *time.Time, candidate string) bool {
	if storedHash == "" || expiresAt == nil || candidate == "" {
		return false
	}
	stored, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}
	computed, _ := hex.DecodeString(i.hash(purpose, candidate))
	match := hmac.Equal(stored, computed)
	return match && i.NowFunc().Before(*expiresAt)
}

func (i *Issuer) hash(purpose, plain string) string {
	mac := hmac.New(sha256.New, i.key)
	mac.Write([]byte(purpose))
	mac.Write([]byte{0})
	mac.Write([]byte(plain))
	return hex.EncodeToString(mac.Sum(nil))
}
