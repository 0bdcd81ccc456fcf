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
	"encoding/base64"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testIssuer(t *testing.T, now *time.Time) *Issuer {
	t.Helper()
	i, err := NewIssuer(testSecret, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	i.NowFunc = func() time.Time { return *now }
	return i
}

func TestRandomCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for n := 0; n < 50; n++ {
		code, err := RandomCode()
		assert.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestRandomLinkToken(t *testing.T) {
	tok, err := RandomLinkToken()
	assert.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	assert.NoError(t, err)
	assert.True(t, len(raw)*8 >= 256)
}

func TestIssuer_OTP(t *testing.T) {
	now := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("issue stores only the hash", func(t *testing.T) {
		i := testIssuer(t, &now)
		p := types.Party{Role: types.RoleOrganizationA}
		code, err := i.IssueOTP(&p)
		assert.NoError(t, err)
		assert.NotEmpty(t, p.OTPHash)
		assert.Len(t, p.OTPHash, 64)
		assert.Len(t, code, OTPLength)
		assert.Equal(t, now.Add(DefaultOTPTTL), *p.OTPExpiresAt)
	})

	t.Run("verify ok", func(t *testing.T) {
		i := testIssuer(t, &now)
		p := types.Party{Role: types.RoleOrganizationA}
		code, _ := i.IssueOTP(&p)
		assert.True(t, i.VerifyOTP(p, code))
	})

	t.Run("wrong code", func(t *testing.T) {
		i := testIssuer(t, &now)
		i.CodeFunc = func() (string, error) { return "123456", nil }
		p := types.Party{Role: types.RoleOrganizationA}
		_, _ = i.IssueOTP(&p)
		assert.False(t, i.VerifyOTP(p, "654321"))
		assert.False(t, i.VerifyOTP(p, ""))
	})

	t.Run("correct but expired code", func(t *testing.T) {
		clock := now
		i := testIssuer(t, &clock)
		p := types.Party{Role: types.RoleOrganizationA}
		code, _ := i.IssueOTP(&p)
		clock = now.Add(DefaultOTPTTL)
		assert.False(t, i.VerifyOTP(p, code))
	})

	t.Run("no code issued", func(t *testing.T) {
		i := testIssuer(t, &now)
		assert.False(t, i.VerifyOTP(types.Party{}, "123456"))
	})

	t.Run("cleared code cannot be replayed", func(t *testing.T) {
		i := testIssuer(t, &now)
		p := types.Party{Role: types.RoleOrganizationA}
		code, _ := i.IssueOTP(&p)
		Clear(&p)
		assert.False(t, i.VerifyOTP(p, code))
		assert.Nil(t, p.OTPExpiresAt)
	})

	t.Run("other issuer secret does not verify", func(t *testing.T) {
		i := testIssuer(t, &now)
		p := types.Party{Role: types.RoleOrganizationA}
		code, _ := i.IssueOTP(&p)
		other, _ := NewIssuer([]byte("ffffffffffffffffffffffffffffffff"), 0, 0)
		other.NowFunc = func() time.Time { return now }
		assert.False(t, other.VerifyOTP(p, code))
	})
}

func TestIssuer_MagicLink(t *testing.T) {
	now := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("only for the individual", func(t *testing.T) {
		i := testIssuer(t, &now)
		p := types.Party{Role: types.RoleOrganizationB}
		_, err := i.IssueMagicLink(&p)
		assert.Equal(t, ErrNotIndividual, err)
		assert.Empty(t, p.LinkHash)
	})

	t.Run("verify ok", func(t *testing.T) {
		i := testIssuer(t, &now)
		p := types.Party{Role: types.RoleIndividual}
		tok, err := i.IssueMagicLink(&p)
		assert.NoError(t, err)
		assert.Equal(t, now.Add(DefaultLinkTTL), *p.LinkExpiresAt)
		assert.True(t, i.VerifyMagicLink(p, tok))
	})

	t.Run("tampered token", func(t *testing.T) {
		i := testIssuer(t, &now)
		p := types.Party{Role: types.RoleIndividual}
		tok, _ := i.IssueMagicLink(&p)
		assert.False(t, i.VerifyMagicLink(p, tok+"x"))
	})

	t.Run("expired", func(t *testing.T) {
		clock := now
		i := testIssuer(t, &clock)
		p := types.Party{Role: types.RoleIndividual}
		tok, _ := i.IssueMagicLink(&p)
		clock = now.Add(DefaultLinkTTL + time.Second)
		assert.False(t, i.VerifyMagicLink(p, tok))
	})

	t.Run("code hash is not a link hash", func(t *testing.T) {
		i := testIssuer(t, &now)
		i.CodeFunc = func() (string, error) { return "123456", nil }
		p := types.Party{Role: types.RoleIndividual}
		_, _ = i.IssueOTP(&p)
		p.LinkHash = p.OTPHash
		p.LinkExpiresAt = p.OTPExpiresAt
		assert.False(t, i.VerifyMagicLink(p, "123456"))
	})
}

func TestComposeLink(t *testing.T) {
	t.Run("default template", func(t *testing.T) {
		u, err := ComposeLink("", "https://sign.example/", "abc_-DEF", "7c9e6679-7425-40de-944b-e07fc1f90ae7")
		assert.NoError(t, err)
		assert.Equal(t, "https://sign.example/signing/invite/abc_-DEF?sid=7c9e6679-7425-40de-944b-e07fc1f90ae7", u)
	})

	t.Run("custom template", func(t *testing.T) {
		u, err := ComposeLink("{{{base_url}}}/assinaturas/convite/{{{token}}}?sid={{{session_id}}}", "http://localhost:3001", "tok", "sid")
		assert.NoError(t, err)
		assert.Equal(t, "http://localhost:3001/assinaturas/convite/tok?sid=sid", u)
	})
}
