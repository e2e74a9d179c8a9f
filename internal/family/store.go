// Copyright (c) 2026 WealthWave. All rights reserved.

package family

import (
	"context"

	"github.com/wealthwave/api/internal/platform/sec"
)

// # Family Data Access

// FamilyRepository defines the data access contract for family groups.
type FamilyRepository interface {

	/*
		Create persists a new family group.

		Parameters:
		  - context: context.Context
		  - family: *Family

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, family *Family) error

	/*
		FindByID returns the family with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Family: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Family, error)
}

// # Membership Data Access

// MemberStore defines the contract for membership columns on user accounts.
type MemberStore interface {

	/*
		Profile returns the membership view of one account.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Profile: ID, email, role, and current family (if any)
		  - error: NotFound or database retrieval failures
	*/
	Profile(context context.Context, userID string) (*Profile, error)

	/*
		Assign places a user into a family with the given role.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - familyID: string
		  - role: sec.UserRole

		Returns:
		  - error: Persistence failures
	*/
	Assign(context context.Context, userID, familyID string, role sec.UserRole) error

	/*
		Remove detaches a user from their family. A family_admin is demoted
		back to user on the way out; platform admins keep their role.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	Remove(context context.Context, userID string) error

	/*
		ListByFamily returns every member of a family.

		Parameters:
		  - context: context.Context
		  - familyID: string

		Returns:
		  - []Member: Family-scoped account projections
		  - error: Database retrieval failures
	*/
	ListByFamily(context context.Context, familyID string) ([]Member, error)
}
