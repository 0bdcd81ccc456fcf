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

package pkg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuts-foundation/nuts-esign/configuration"
	"github.com/nuts-foundation/nuts-esign/pkg/blob"
	"github.com/nuts-foundation/nuts-esign/pkg/notify"
	"github.com/nuts-foundation/nuts-esign/pkg/session"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
	"github.com/nuts-foundation/nuts-esign/testdata"
)

func testConfig() configuration.EsignConfiguration {
	c := configuration.DefaultConfiguration()
	c.SealSecret = "0123456789abcdef0123456789abcdef"
	return c
}

func TestSignInstance(t *testing.T) {
	t.Run("returns the same instance", func(t *testing.T) {
		assert.Same(t, SignInstance(), SignInstance())
	})

	t.Run("instance carries defaults", func(t *testing.T) {
		assert.Equal(t, configuration.BackendMemory, SignInstance().Config.Store)
	})
}

func TestSign_Configure(t *testing.T) {
	t.Run("in-memory backends", func(t *testing.T) {
		s := &Sign{Config: testConfig()}
		require.NoError(t, s.Configure())
		defer s.Shutdown()

		assert.True(t, s.configDone)
		assert.NotNil(t, s.Service)
		assert.IsType(t, notify.LogNotifier{}, s.Notifier)
		assert.IsType(t, &blob.MemoryStore{}, s.Blobs)
		assert.Equal(t, types.AllRoles, s.Service.Config.RequiredRoles)
	})

	t.Run("blob directory selects the file system", func(t *testing.T) {
		c := testConfig()
		c.BlobDir = t.TempDir()
		s := &Sign{Config: c}
		require.NoError(t, s.Configure())

		assert.IsType(t, &blob.FileSystemStore{}, s.Blobs)
	})

	t.Run("subset of roles", func(t *testing.T) {
		c := testConfig()
		c.RequiredRoles = []string{"organization_a", "individual"}
		s := &Sign{Config: c}
		require.NoError(t, s.Configure())

		assert.Equal(t, []types.Role{types.RoleOrganizationA, types.RoleIndividual}, s.Service.Config.RequiredRoles)
	})

	t.Run("unknown role", func(t *testing.T) {
		c := testConfig()
		c.RequiredRoles = []string{"WITNESS"}
		s := &Sign{Config: c}
		assert.Error(t, s.Configure())
	})

	t.Run("invalid configuration", func(t *testing.T) {
		s := &Sign{Config: configuration.DefaultConfiguration()}
		assert.Error(t, s.Configure())
		assert.False(t, s.configDone)
	})

	t.Run("unknown timezone", func(t *testing.T) {
		c := testConfig()
		c.Stamp.Timezone = "Mars/Olympus_Mons"
		s := &Sign{Config: c}
		assert.Error(t, s.Configure())
	})

	t.Run("configures only once", func(t *testing.T) {
		s := &Sign{Config: testConfig()}
		require.NoError(t, s.Configure())
		service := s.Service

		require.NoError(t, s.Configure())
		assert.Same(t, service, s.Service)
	})
}

func TestSign_SigningClient(t *testing.T) {
	s := &Sign{Config: testConfig()}
	require.NoError(t, s.Configure())
	var client SigningClient = s

	created, err := client.Create(context.Background(), session.CreateRequest{Document: testdata.PDF(1), CreatedBy: "admin"})
	require.NoError(t, err)

	status, err := client.Status(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateCreated, status.State)
}
