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

package engine

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuts-foundation/nuts-esign/configuration"
	"github.com/nuts-foundation/nuts-esign/pkg"
	"github.com/nuts-foundation/nuts-esign/pkg/seal"
	"github.com/nuts-foundation/nuts-esign/pkg/session"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
	"github.com/nuts-foundation/nuts-esign/test"
	"github.com/nuts-foundation/nuts-esign/testdata"
)

func testInstance(t *testing.T) *pkg.Sign {
	t.Helper()
	c := configuration.DefaultConfiguration()
	c.SealSecret = test.SealSecret
	sign := &pkg.Sign{Config: c}
	require.NoError(t, sign.Configure())
	t.Cleanup(func() { sign.Shutdown() })
	return sign
}

func execute(t *testing.T, sign *pkg.Sign, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	command := cmd(sign)
	command.SetOut(out)
	command.SetErr(out)
	command.SetArgs(args)
	err := command.Execute()
	return out.String(), err
}

func TestNewSignEngine(t *testing.T) {
	e := NewSignEngine()

	assert.Equal(t, "Esign", e.Name)
	assert.Same(t, pkg.SignInstance(), e.Sign)
	assert.Same(t, &pkg.SignInstance().Config, e.Config)
	assert.NotNil(t, e.FlagSet.Lookup(configuration.ConfSealSecret))
	assert.NotNil(t, e.FlagSet.Lookup(configuration.ConfStampPage))
}

func TestNewServer(t *testing.T) {
	t.Run("serves the api and metrics", func(t *testing.T) {
		server, err := NewServer(testInstance(t))
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "esign_sessions_created_total")

		rec = httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/esign/v1/sessions/unknown/status", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		server, err := NewServer(testInstance(t))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/internal/esign/v1/sessions/unknown/status", nil)
		req.Header.Set("X-Actor-Id", "admin")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unconfigured engine", func(t *testing.T) {
		_, err := NewServer(&pkg.Sign{})
		assert.Error(t, err)
	})
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, "21504K", bodyLimit(20<<20))
}

func TestCmd_Digest(t *testing.T) {
	document := testdata.PDF(1)
	path := test.WriteFile(t, "document.pdf", document)

	out, err := execute(t, &pkg.Sign{}, "digest", path)

	require.NoError(t, err)
	assert.Equal(t, seal.DigestBytes(document), strings.TrimSpace(out))
}

func TestCmd_IndividualLink(t *testing.T) {
	sign := testInstance(t)
	ctx := context.Background()
	created, err := sign.Create(ctx, session.CreateRequest{Document: testdata.PDF(1), CreatedBy: "admin"})
	require.NoError(t, err)
	_, err = sign.DefineParties(ctx, created.ID, test.Roster(), types.RequestMeta{})
	require.NoError(t, err)

	out, err := execute(t, sign, "individual-link", string(created.ID))

	require.NoError(t, err)
	assert.Contains(t, out, "http://localhost:1323/signing/invite/")
	assert.Contains(t, out, "sid="+string(created.ID))
}

func TestCmd_VerifySeal(t *testing.T) {
	sign := testInstance(t)
	sealer, err := seal.NewSealer([]byte(test.SealSecret))
	require.NoError(t, err)
	jws, err := sealer.Seal(seal.Payload{SessionID: "s-1", OriginalDigest: "abc", FinalDigest: "def"}, time.Now())
	require.NoError(t, err)

	t.Run("valid seal", func(t *testing.T) {
		out, err := execute(t, sign, "verify-seal", jws)

		require.NoError(t, err)
		assert.Contains(t, out, `"hash_final": "def"`)
	})

	t.Run("tampered seal", func(t *testing.T) {
		_, err := execute(t, sign, "verify-seal", jws+"x")

		assert.True(t, errors.Is(err, seal.ErrInvalidSeal))
	})
}
