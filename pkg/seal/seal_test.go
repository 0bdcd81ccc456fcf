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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testPayload() Payload {
	return Payload{
		SessionID:      "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		OriginalDigest: strings.Repeat("a", 64),
		FinalDigest:    strings.Repeat("b", 64),
		SignedParties: []SignedParty{
			{Role: "ORGANIZATION_A", NationalID: "11222333000181", SignedAt: "2020-06-01T10:00:00Z"},
			{Role: "ORGANIZATION_B", NationalID: "11144477735", SignedAt: "2020-06-01T10:05:00Z"},
		},
	}
}

func TestSealer_Seal(t *testing.T) {
	sealer, err := NewSealer(testSecret)
	if !assert.NoError(t, err) {
		return
	}
	issuedAt := time.Now().Truncate(time.Second)

	t.Run("compact three part form", func(t *testing.T) {
		s, err := sealer.Seal(testPayload(), issuedAt)
		assert.NoError(t, err)
		assert.Len(t, strings.Split(s, "."), 3)
	})

	t.Run("deterministic", func(t *testing.T) {
		s1, _ := sealer.Seal(testPayload(), issuedAt)
		s2, _ := sealer.Seal(testPayload(), issuedAt)
		assert.Equal(t, s1, s2)
	})

	t.Run("verify round trip", func(t *testing.T) {
		s, _ := sealer.Seal(testPayload(), issuedAt)
		p, err := sealer.Verify(s)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, testPayload().SessionID, p.SessionID)
		assert.Equal(t, testPayload().SignedParties, p.SignedParties)
		assert.Equal(t, issuedAt.Unix(), p.IssuedAt)
		assert.Equal(t, Issuer, p.Issuer)
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		s, _ := sealer.Seal(testPayload(), issuedAt)
		other := testPayload()
		other.FinalDigest = strings.Repeat("c", 64)
		forged, _ := sealer.Seal(other, issuedAt)

		parts := strings.Split(s, ".")
		forgedParts := strings.Split(forged, ".")
		_, err := sealer.Verify(parts[0] + "." + forgedParts[1] + "." + parts[2])
		assert.True(t, errors.Is(err, ErrInvalidSeal))
	})

	t.Run("other secret fails", func(t *testing.T) {
		s, _ := sealer.Seal(testPayload(), issuedAt)
		other, _ := NewSealer([]byte("ffffffffffffffffffffffffffffffff"))
		_, err := other.Verify(s)
		assert.True(t, errors.Is(err, ErrInvalidSeal))
	})
}

func TestDeriveKey(t *testing.T) {
	t.Run("short secret", func(t *testing.T) {
		_, err := DeriveKey([]byte("short"), "seal")
		assert.Error(t, err)
	})

	t.Run("purposes differ", func(t *testing.T) {
		k1, _ := DeriveKey(testSecret, "seal")
		k2, _ := DeriveKey(testSecret, "otp")
		assert.Len(t, k1, 32)
		assert.NotEqual(t, k1, k2)
	})
}
