// Copyright (c) 2026 WealthWave. All rights reserved.

package sec

import "strings"

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Manages a household: can invite/remove family members and see
	// family-scoped budgets
	RoleFamilyAdmin UserRole = "family_admin"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// # Role Matching

// Matches reports whether the role equals the target, ignoring case.
// Role claims arrive from decoded tokens and historical records with
// inconsistent casing, so "ADMIN" and "admin" must compare equal.
func (r UserRole) Matches(target UserRole) bool {
	return strings.EqualFold(string(r), string(target))
}

// MatchesAny reports whether the role case-insensitively matches any entry
// in the allow-list.
func (r UserRole) MatchesAny(allowed ...UserRole) bool {
	for _, target := range allowed {
		if r.Matches(target) {
			return true
		}
	}
	return false
}

// IsValid reports whether the value is one of the closed set of roles.
func (r UserRole) IsValid() bool {
	return r.MatchesAny(RoleAdmin, RoleFamilyAdmin, RoleUser)
}
