// Copyright (c) 2026 WealthWave. All rights reserved.

/*
Package family implements household grouping for shared finances.

A family is a named group with exactly one owning admin. Members join by
invitation only: the admin mails an invite link bound to a specific email
address, and accepting it consumes every outstanding invite for that
address.

# Architecture

  - Service: Membership rules (creation, invitation, acceptance, removal).
  - FamilyRepository / MemberStore: PostgreSQL contracts for the group row
    and the membership columns on user accounts.
  - Invite tokens ride the shared users.token table under FAMILY_INVITE.
*/
package family

import (
	"time"

	"github.com/wealthwave/api/internal/platform/sec"
)

// # Domain Entities

// Family represents a household group sharing budgets.
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   string    `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is a family-scoped projection of a user account.
type Member struct {
	ID    string       `json:"id"`
	Email string       `json:"email"`
	Name  string       `json:"name"`
	Role  sec.UserRole `json:"role"`
}

// Profile is the membership view of one account, used for rule checks.
type Profile struct {
	ID       string
	Email    string
	Name     string
	Role     sec.UserRole
	FamilyID *string
}

// # Field Identifiers

const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldNonce   = "nonce"
	FieldID      = "id"
	FieldMessage = "message"
)
