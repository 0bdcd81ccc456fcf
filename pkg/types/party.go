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
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// Role identifies a signing party within a session. The set of roles is closed.
type Role string

const (
	// RoleOrganizationA is the first signing organization
	RoleOrganizationA Role = "ORGANIZATION_A"
	// RoleOrganizationB is the second signing organization
	RoleOrganizationB Role = "ORGANIZATION_B"
	// RoleIndividual is the natural person signing, the only role that authenticates with a magic link
	RoleIndividual Role = "INDIVIDUAL"
)

// AllRoles lists the closed role set in stamping order
var AllRoles = []Role{RoleOrganizationA, RoleOrganizationB, RoleIndividual}

// ParseRole converts a string to a Role, it accepts any letter case
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %s", s)
	}
	return r, nil
}

// Valid returns true if the role is part of the closed role set
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Order returns the position of the role in AllRoles
func (r Role) Order() int {
	for i, known := range AllRoles {
		if r == known {
			return i
		}
	}
	return len(AllRoles)
}

// Party is a signer within a session, unique per (session, role)
type Party struct {
	ID              string
	SessionID       SessionID
	Role            Role
	Name            string
	NationalID      string
	Email           string
	Phone           string
	SignedAt        *time.Time
	SignedIP        string
	SignedUserAgent string
	OTPHash         string
	OTPExpiresAt    *time.Time
	// LinkHash and LinkExpiresAt are only used for RoleIndividual
	LinkHash      string
	LinkExpiresAt *time.Time
}

// Signed returns true once the party gave its signature
func (p Party) Signed() bool {
	return p.SignedAt != nil
}

// PartyInput holds the caller supplied details of one roster entry
type PartyInput struct {
	Name       string `json:"name"`
	NationalID string `json:"nationalId"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
}

// Roster maps every role to the details of the party taking it
type Roster map[Role]PartyInput

// Validate checks the roster against the required role set. Every required role must be present exactly once,
// no other role may be present and every entry must carry a name, a valid national identifier and a valid email.
func (r Roster) Validate(required []Role) error {
	want := make(map[Role]bool, len(required))
	for _, role := range required {
		if want[role] {
			return fmt.Errorf("role %s is required twice", role)
		}
		want[role] = true
	}
	for role := range r {
		if !want[role] {
			return fmt.Errorf("role %s is not expected", role)
		}
	}
	for _, role := range required {
		input, ok := r[role]
		if !ok {
			return fmt.Errorf("role %s is missing", role)
		}
		if strings.TrimSpace(input.Name) == "" {
			return fmt.Errorf("role %s: name is required", role)
		}
		if _, err := NormalizeNationalID(input.NationalID); err != nil {
			return fmt.Errorf("role %s: %w", role, err)
		}
		if _, err := mail.ParseAddress(input.Email); err != nil {
			return fmt.Errorf("role %s: invalid email: %v", role, err)
		}
	}
	return nil
}

// Roles returns the roles of the roster in stamping order
func (r Roster) Roles() []Role {
	roles := make([]Role, 0, len(r))
	for role := range r {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].Order() < roles[j].Order()
	})
	return roles
}

// SortParties orders parties by role in stamping order
func SortParties(parties []Party) {
	sort.SliceStable(parties, func(i, j int) bool {
		return parties[i].Role.Order() < parties[j].Role.Order()
	})
}
