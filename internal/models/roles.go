// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package models

import "strings"

// Role tags a remote contact or company with how it takes part in the program.
type Role string

const (
	RoleNominator      Role = "Nominator"
	RoleNomineePerson  Role = "Nominee_Person"
	RoleNomineeCompany Role = "Nominee_Company"
	RoleVoter          Role = "Voter"
)

// roleSeparator is the wire delimiter used by both remote platforms.
const roleSeparator = ";"

// Known reports whether r is one of the roles this program assigns.
// Unknown roles found on remote records are preserved, never dropped.
func (r Role) Known() bool {
	switch r {
	case RoleNominator, RoleNomineePerson, RoleNomineeCompany, RoleVoter:
		return true
	}
	return false
}

// RoleSet is an insertion-ordered set of roles. The zero value is empty and
// ready to use. Methods return a new set; a RoleSet is never mutated in place.
type RoleSet struct {
	roles []Role
}

// NewRoleSet builds a set from roles in order, skipping duplicates and blanks.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

// ParseRoleSet parses the remote wire format ("Nominator;Voter").
func ParseRoleSet(raw string) RoleSet {
	var s RoleSet
	for _, part := range strings.Split(raw, roleSeparator) {
		s = s.Add(Role(part))
	}
	return s
}

// Add returns the set with r appended unless already present.
func (s RoleSet) Add(r Role) RoleSet {
	r = Role(strings.TrimSpace(string(r)))
	if r == "" || s.Has(r) {
		return s
	}
	roles := make([]Role, len(s.roles), len(s.roles)+1)
	copy(roles, s.roles)
	return RoleSet{roles: append(roles, r)}
}

// Union returns s followed by the members of other not already in s.
func (s RoleSet) Union(other RoleSet) RoleSet {
	for _, r := range other.roles {
		s = s.Add(r)
	}
	return s
}

// Has reports membership.
func (s RoleSet) Has(r Role) bool {
	for _, existing := range s.roles {
		if existing == r {
			return true
		}
	}
	return false
}

// Len returns the number of roles.
func (s RoleSet) Len() int { return len(s.roles) }

// Roles returns a copy of the members in insertion order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// String renders the wire format.
func (s RoleSet) String() string {
	parts := make([]string, len(s.roles))
	for i, r := range s.roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, roleSeparator)
}

// MergeRoles adds role to the semicolon-delimited existing value. It is
// idempotent and never removes a role already present.
//
//	MergeRoles("", "X")    == "X"
//	MergeRoles("X;Y", "Y") == "X;Y"
//	MergeRoles("X", "Y")   == "X;Y"
func MergeRoles(existing string, role Role) string {
	return ParseRoleSet(existing).Add(role).String()
}
