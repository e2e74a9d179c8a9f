// Copyright (c) 2026 WealthWave. All rights reserved.

package family

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/sec"
)

// # Family Repository

// PostgresFamilyRepository implements [FamilyRepository] using pgx.
type PostgresFamilyRepository struct {
	pool *pgxpool.Pool
}

// NewFamilyRepository creates a new PostgreSQL implementation of [FamilyRepository].
func NewFamilyRepository(pool *pgxpool.Pool) *PostgresFamilyRepository {
	return &PostgresFamilyRepository{pool: pool}
}

/*
Create persists a new family group into the core.family table.

Parameters:
  - context: context.Context
  - family: *Family

Returns:
  - error: Persistence failures
*/
func (repository *PostgresFamilyRepository) Create(context context.Context, family *Family) error {
	const query = `INSERT INTO core.family (id, name, adminid, createdat) VALUES ($1, $2, $3, $4)`

	if family.CreatedAt.IsZero() {
		family.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query, family.ID, family.Name, family.AdminID, family.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres_family_repo_create_failed: %w", err)
	}
	return nil
}

/*
FindByID retrieves a family group by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Family: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresFamilyRepository) FindByID(context context.Context, id string) (*Family, error) {
	const query = `SELECT id, name, adminid, createdat FROM core.family WHERE id = $1`

	family := &Family{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&family.ID,
		&family.Name,
		&family.AdminID,
		&family.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Family")
		}
		return nil, fmt.Errorf("postgres_family_repo_find_failed: %w", err)
	}

	return family, nil
}

// # Member Store

// PostgresMemberStore implements [MemberStore] against the membership
// columns of users.account.
type PostgresMemberStore struct {
	pool *pgxpool.Pool
}

// NewMemberStore creates a new PostgreSQL implementation of [MemberStore].
func NewMemberStore(pool *pgxpool.Pool) *PostgresMemberStore {
	return &PostgresMemberStore{pool: pool}
}

/*
Profile returns the membership view of one account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: Membership projection
  - error: apperr.NotFound or execution errors
*/
func (store *PostgresMemberStore) Profile(context context.Context, userID string) (*Profile, error) {
	const query = `SELECT id, email, name, role, familyid FROM users.account WHERE id = $1`

	profile := &Profile{}
	err := store.pool.QueryRow(context, query, userID).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Name,
		&profile.Role,
		&profile.FamilyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_member_store_profile_failed: %w", err)
	}

	return profile, nil
}

/*
Assign places a user into a family with the given role.

Parameters:
  - context: context.Context
  - userID: string
  - familyID: string
  - role: sec.UserRole

Returns:
  - error: Execution errors
*/
func (store *PostgresMemberStore) Assign(context context.Context, userID, familyID string, role sec.UserRole) error {
	const query = `UPDATE users.account SET familyid = $2, role = $3, updatedat = $4 WHERE id = $1`

	_, err := store.pool.Exec(context, query, userID, familyID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_member_store_assign_failed: %w", err)
	}
	return nil
}

/*
Remove detaches a user from their family.

Description: family_admin is demoted back to user on the way out; platform
admins keep their role.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (store *PostgresMemberStore) Remove(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET familyid = NULL,
		    role = CASE WHEN role = $2 THEN $3 ELSE role END,
		    updatedat = $4
		WHERE id = $1`

	_, err := store.pool.Exec(context, query, userID, sec.RoleFamilyAdmin, sec.RoleUser, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_member_store_remove_failed: %w", err)
	}
	return nil
}

/*
ListByFamily returns every member of a family, oldest account first.

Parameters:
  - context: context.Context
  - familyID: string

Returns:
  - []Member: Family-scoped projections
  - error: Execution errors
*/
func (store *PostgresMemberStore) ListByFamily(context context.Context, familyID string) ([]Member, error) {
	const query = `
		SELECT id, email, name, role
		FROM users.account
		WHERE familyid = $1
		ORDER BY createdat ASC`

	rows, err := store.pool.Query(context, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("postgres_member_store_list_failed: %w", err)
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		var member Member
		if err := rows.Scan(&member.ID, &member.Email, &member.Name, &member.Role); err != nil {
			return nil, fmt.Errorf("postgres_member_store_scan_failed: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_member_store_rows_failed: %w", err)
	}

	return members, nil
}
