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

package seal

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/hkdf"
)

// Issuer is the iss claim of every seal
const Issuer = "nuts-esign"

// MinSecretLength is the minimal length of the process wide sealing secret
const MinSecretLength = 32

// ErrInvalidSeal is returned when a seal cannot be parsed or its MAC does not match
var ErrInvalidSeal = errors.New("invalid seal")

// SignedParty is the fact of one party's signature inside a seal
type SignedParty struct {
	Role       string `json:"role"`
	NationalID string `json:"national_id"`
	SignedAt   string `json:"at"`
}

// Payload binds the document digests and the signer facts of a completed session
type Payload struct {
	jwt.StandardClaims
	SessionID      string        `json:"session"`
	OriginalDigest string        `json:"hash_original"`
	FinalDigest    string        `json:"hash_final"`
	SignedParties  []SignedParty `json:"signed_parties"`
}

// Sealer produces compact HS256 seals. The key is read-only after construction and never leaves the Sealer.
type Sealer struct {
	key []byte
}

// NewSealer creates a Sealer with a key derived from the process secret
func NewSealer(secret []byte) (*Sealer, error) {
	key, err := DeriveKey(secret, "seal")
	if err != nil {
		return nil, err
	}
	return &Sealer{key: key}, nil
}

// Seal serializes the payload as JSON, signs it with HMAC-SHA256 and returns header.payload.signature.
// The output is deterministic for a given payload, issuedAt is set by the caller.
func (s *Sealer) Seal(payload Payload, issuedAt time.Time) (string, error) {
	payload.Issuer = Issuer
	payload.Subject = payload.SessionID
	payload.IssuedAt = issuedAt.Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return token.SignedString(s.key)
}

// Verify parses a seal produced by Seal and checks its MAC
func (s *Sealer) Verify(compact string) (*Payload, error) {
	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Name}}
	payload := &Payload{}
	token, err := parser.ParseWithClaims(compact, payload, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeal, err)
	}
	return payload, nil
}

// DeriveKey derives a 256 bit key for the given purpose from the process secret with HKDF-SHA256.
// OTP hashing and sealing each derive their own purpose key.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("secret must be at least %d bytes", MinSecretLength)
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(Issuer+"/"+purpose)), key); err != nil {
		return nil, err
	}
	return key, nil
}
