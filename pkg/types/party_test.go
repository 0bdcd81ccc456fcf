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

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validRoster() Roster {
	return Roster{
		RoleOrganizationA: {Name: "Acme Ltda", NationalID: "11.222.333/0001-81", Email: "legal@acme.example"},
		RoleOrganizationB: {Name: "Union", NationalID: "111.444.777-35", Email: "office@union.example"},
		RoleIndividual:    {Name: "Maria", NationalID: "529.982.247-25", Email: "maria@example.com", Phone: "+5511999999999"},
	}
}

func TestRoster_Validate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, validRoster().Validate(AllRoles))
	})

	t.Run("missing role", func(t *testing.T) {
		r := validRoster()
		delete(r, RoleIndividual)
		err := r.Validate(AllRoles)
		assert.EqualError(t, err, "role INDIVIDUAL is missing")
	})

	t.Run("unexpected role", func(t *testing.T) {
		err := validRoster().Validate([]Role{RoleOrganizationA, RoleOrganizationB})
		assert.EqualError(t, err, "role INDIVIDUAL is not expected")
	})

	t.Run("duplicated required role", func(t *testing.T) {
		err := validRoster().Validate([]Role{RoleOrganizationA, RoleOrganizationA, RoleOrganizationB, RoleIndividual})
		assert.Error(t, err)
	})

	t.Run("malformed national id", func(t *testing.T) {
		r := validRoster()
		r[RoleOrganizationB] = PartyInput{Name: "Union", NationalID: "123", Email: "office@union.example"}
		err := r.Validate(AllRoles)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ORGANIZATION_B")
	})

	t.Run("malformed email", func(t *testing.T) {
		r := validRoster()
		r[RoleIndividual] = PartyInput{Name: "Maria", NationalID: "529.982.247-25", Email: "not-an-email"}
		assert.Error(t, r.Validate(AllRoles))
	})
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("individual")
	assert.NoError(t, err)
	assert.Equal(t, RoleIndividual, r)

	_, err = ParseRole("EMPLOYER")
	assert.Error(t, err)
}

func TestStateOf(t *testing.T) {
	now := time.Now()
	s := Session{}
	assert.Equal(t, StateCreated, StateOf(s, nil))

	parties := []Party{{Role: RoleOrganizationA}, {Role: RoleOrganizationB}}
	assert.Equal(t, StatePartiesDefined, StateOf(s, parties))
	assert.False(t, AllSigned(parties))

	parties[0].SignedAt = &now
	assert.Equal(t, StateAwaitingSignatures, StateOf(s, parties))
	assert.True(t, AnySigned(parties))

	parties[1].SignedAt = &now
	assert.True(t, AllSigned(parties))

	s.Completed = true
	assert.Equal(t, StateCompleted, StateOf(s, parties))
}

func TestSortParties(t *testing.T) {
	parties := []Party{{Role: RoleIndividual}, {Role: RoleOrganizationA}, {Role: RoleOrganizationB}}
	SortParties(parties)
	assert.Equal(t, RoleOrganizationA, parties[0].Role)
	assert.Equal(t, RoleOrganizationB, parties[1].Role)
	assert.Equal(t, RoleIndividual, parties[2].Role)
}
