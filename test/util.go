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

package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// SealSecret is a valid process secret for tests
const SealSecret = "0123456789abcdef0123456789abcdef"

// Roster returns a valid roster for all roles
func Roster() types.Roster {
	return types.Roster{
		types.RoleOrganizationA: {Name: "Org A", NationalID: "11.222.333/0001-81", Email: "a@example.com"},
		types.RoleOrganizationB: {Name: "Org B", NationalID: "11222333000181", Email: "b@example.com"},
		types.RoleIndividual:    {Name: "Ana Souza", NationalID: "529.982.247-25", Email: "ana@example.com"},
	}
}

// WriteFile writes data to a new file in a temporary directory and returns its path
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}
