// Copyright (c) 2026 WealthWave. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wealthwave/api/internal/platform/sec"
)

/*
TestUserRole_Matches verifies case-insensitive role comparison.
*/
func TestUserRole_Matches(t *testing.T) {
	assert.True(t, sec.RoleAdmin.Matches("ADMIN"))
	assert.True(t, sec.UserRole("Family_Admin").Matches(sec.RoleFamilyAdmin))
	assert.False(t, sec.RoleUser.Matches(sec.RoleAdmin))
}

/*
TestUserRole_MatchesAny verifies allow-list membership checks.
*/
func TestUserRole_MatchesAny(t *testing.T) {
	assert.True(t, sec.UserRole("ADMIN").MatchesAny(sec.RoleFamilyAdmin, sec.RoleAdmin))
	assert.True(t, sec.RoleFamilyAdmin.MatchesAny(sec.RoleFamilyAdmin, sec.RoleAdmin))
	assert.False(t, sec.RoleUser.MatchesAny(sec.RoleFamilyAdmin, sec.RoleAdmin))
	assert.False(t, sec.RoleUser.MatchesAny())
}

/*
TestUserRole_IsValid verifies the closed role set.
*/
func TestUserRole_IsValid(t *testing.T) {
	assert.True(t, sec.RoleAdmin.IsValid())
	assert.True(t, sec.RoleFamilyAdmin.IsValid())
	assert.True(t, sec.RoleUser.IsValid())
	assert.True(t, sec.UserRole("USER").IsValid())
	assert.False(t, sec.UserRole("superuser").IsValid())
	assert.False(t, sec.UserRole("").IsValid())
}
