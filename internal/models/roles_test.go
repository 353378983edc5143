// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeRoles(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		role     Role
		want     string
	}{
		{"empty existing", "", "X", "X"},
		{"already present", "X;Y", "Y", "X;Y"},
		{"appended", "X", "Y", "X;Y"},
		{"blank role", "X", " ", "X"},
		{"whitespace and empties dropped", " X ;; Y ;", "Z", "X;Y;Z"},
		{"duplicate tokens collapsed", "X;X;Y", "X", "X;Y"},
		{"unknown remote role kept", "Partner;Nominator", RoleVoter, "Partner;Nominator;Voter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeRoles(tt.existing, tt.role))
		})
	}
}

func TestMergeRoles_OrderedUnionAcrossCalls(t *testing.T) {
	sequences := [][]Role{
		{RoleNominator, RoleVoter},
		{RoleVoter, RoleNominator, RoleVoter},
		{RoleNomineePerson, RoleNominator, RoleNomineePerson, RoleVoter, RoleNominator},
		{RoleNomineeCompany},
	}
	for _, seq := range sequences {
		current := ""
		var applied []Role
		for _, r := range seq {
			current = MergeRoles(current, r)
			if !containsRole(applied, r) {
				applied = append(applied, r)
			}

			// Idempotent: applying the same role again changes nothing.
			assert.Equal(t, current, MergeRoles(current, r))
			// Never removes: every role applied so far is still there, in order.
			assert.Equal(t, NewRoleSet(applied...).String(), current)
		}
	}

	current := MergeRoles("", RoleNominator)
	current = MergeRoles(current, RoleVoter)
	assert.Equal(t, "Nominator;Voter", current)
	assert.Equal(t, "Nominator;Voter", MergeRoles(current, RoleVoter))
}

func containsRole(roles []Role, r Role) bool {
	for _, existing := range roles {
		if existing == r {
			return true
		}
	}
	return false
}

func TestRoleSet(t *testing.T) {
	var zero RoleSet
	assert.Equal(t, 0, zero.Len())
	assert.Equal(t, "", zero.String())

	s := ParseRoleSet("Nominator;Voter")
	assert.True(t, s.Has(RoleNominator))
	assert.False(t, s.Has(RoleNomineePerson))
	assert.Equal(t, []Role{RoleNominator, RoleVoter}, s.Roles())

	added := s.Add(RoleNomineePerson)
	assert.Equal(t, 2, s.Len(), "Add must not mutate the receiver")
	assert.Equal(t, 3, added.Len())

	roles := added.Roles()
	roles[0] = "Changed"
	assert.Equal(t, RoleNominator, added.Roles()[0], "Roles must return a copy")

	u := ParseRoleSet("Voter;Partner").Union(ParseRoleSet("Nominator;Voter"))
	assert.Equal(t, "Voter;Partner;Nominator", u.String())
	assert.Equal(t, u.String(), ParseRoleSet(u.String()).String(), "wire format round-trips")
}

func TestRoleKnown(t *testing.T) {
	for _, r := range []Role{RoleNominator, RoleNomineePerson, RoleNomineeCompany, RoleVoter} {
		assert.True(t, r.Known(), r)
	}
	assert.False(t, Role("Partner").Known())
	assert.False(t, Role("").Known())
}
