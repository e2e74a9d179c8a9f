// Copyright (c) 2026 WealthWave. All rights reserved.

// PostgreSQL implementations of the auth storage contracts.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement the domain-defined interfaces ([UserRepository], [TokenRepository])
// using the [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] types via the dberr bridge to avoid
// leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `
	id, email, name, passwordhash, role, status,
	twofactorenabled, COALESCE(twofactorsecret, ''), familyid, createdat, updatedat`

// scanUser hydrates a User from a row using the userColumns ordering.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.TwoFactorEnabled,
		&user.TwoFactorSecret,
		&user.FamilyID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are
initialized if not provided. The table's unique email constraint backstops
the service-level duplicate check against concurrent registrations.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, name, passwordhash, role, status,
			twofactorenabled, twofactorsecret, familyid, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.TwoFactorEnabled,
		user.TwoFactorSecret,
		user.FamilyID,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users.account WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users.account WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
MarkActive transitions a PENDING account to ACTIVE after email confirmation.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresUserRepository) MarkActive(context context.Context, userID string) error {
	const query = `UPDATE users.account SET status = $2, updatedat = $3 WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, StatusActive, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_mark_active_failed: %w", err)
	}
	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `UPDATE users.account SET passwordhash = $2, updatedat = $3 WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	return nil
}

/*
EnableTwoFactor stores the shared TOTP secret and enables the flag atomically.

Parameters:
  - context: context.Context
  - userID: string
  - secret: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) EnableTwoFactor(context context.Context, userID, secret string) error {
	const query = `
		UPDATE users.account
		SET twofactorenabled = TRUE, twofactorsecret = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, secret, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_enable_2fa_failed: %w", err)
	}
	return nil
}

/*
IsActive reports whether the account exists and holds ACTIVE status.

Description: Hot-path existence probe for the Access Guard. SELECT 1 with a
status filter so the row payload never crosses the wire.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - bool: true only for an existing ACTIVE account
  - error: Execution errors (a missing row is NOT an error)
*/
func (repository *PostgresUserRepository) IsActive(context context.Context, userID string) (bool, error) {
	const query = `SELECT 1 FROM users.account WHERE id = $1 AND status = $2`

	var one int
	err := repository.pool.QueryRow(context, query, userID, StatusActive).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("postgres_user_repo_is_active_failed: %w", err)
	}

	return true, nil
}

// # Token Repository

// PostgresTokenRepository implements the TokenRepository interface using pgx.
type PostgresTokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new PostgreSQL implementation of TokenRepository.
func NewTokenRepository(pool *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool}
}

const tokenColumns = `id, value, purpose, userid, familyid, memberemail, expiresat, createdat`

// scanToken hydrates a Token from a row using the tokenColumns ordering.
func scanToken(row pgx.Row) (*Token, error) {
	token := &Token{}
	err := row.Scan(
		&token.ID,
		&token.Value,
		&token.Purpose,
		&token.UserID,
		&token.FamilyID,
		&token.MemberEmail,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return token, nil
}

/*
Create persists a new token record into the users.token table.

Parameters:
  - context: context.Context
  - token: *Token

Returns:
  - error: Persistence failures
*/
func (repository *PostgresTokenRepository) Create(context context.Context, token *Token) error {
	const query = `
		INSERT INTO users.token (
			id, value, purpose, userid, familyid, memberemail, expiresat, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		token.ID,
		token.Value,
		token.Purpose,
		token.UserID,
		token.FamilyID,
		token.MemberEmail,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_token_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByValue retrieves a token by its opaque value, scoped to a purpose.

Description: A value presented against the wrong purpose never matches,
even when the nonce itself exists in the table.

Parameters:
  - context: context.Context
  - value: string
  - purpose: TokenPurpose

Returns:
  - *Token: Hydrated token record
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresTokenRepository) FindByValue(context context.Context, value string, purpose TokenPurpose) (*Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM users.token WHERE value = $1 AND purpose = $2`

	token, err := scanToken(repository.pool.QueryRow(context, query, value, purpose))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		return nil, fmt.Errorf("postgres_token_repo_find_by_value_failed: %w", err)
	}

	return token, nil
}

/*
FindByUserAndPurpose retrieves the newest token a user holds for a purpose.

Parameters:
  - context: context.Context
  - userID: string
  - purpose: TokenPurpose

Returns:
  - *Token: Hydrated token record
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresTokenRepository) FindByUserAndPurpose(context context.Context, userID string, purpose TokenPurpose) (*Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM users.token
		WHERE userid = $1 AND purpose = $2
		ORDER BY createdat DESC
		LIMIT 1`

	token, err := scanToken(repository.pool.QueryRow(context, query, userID, purpose))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		return nil, fmt.Errorf("postgres_token_repo_find_by_user_failed: %w", err)
	}

	return token, nil
}

/*
UpsertRefresh atomically creates-or-rotates the user's single refresh token.

Description: Relies on the partial unique index over (userid, purpose) WHERE
purpose = 'SESSION_REFRESH'. A single INSERT ... ON CONFLICT statement
replaces the value and expiry in place, so concurrent rotations cannot race
a separate find-then-write sequence into duplicate rows.

Parameters:
  - context: context.Context
  - token: *Token (Purpose must be SESSION_REFRESH)

Returns:
  - error: Persistence failures
*/
func (repository *PostgresTokenRepository) UpsertRefresh(context context.Context, token *Token) error {
	const query = `
		INSERT INTO users.token (id, value, purpose, userid, familyid, memberemail, expiresat, createdat)
		VALUES ($1, $2, $3, $4, NULL, NULL, $5, $6)
		ON CONFLICT (userid, purpose) WHERE purpose = 'SESSION_REFRESH'
		DO UPDATE SET value = EXCLUDED.value, expiresat = EXCLUDED.expiresat, createdat = EXCLUDED.createdat`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		token.ID,
		token.Value,
		token.Purpose,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_token_repo_upsert_refresh_failed: %w", err)
	}

	return nil
}

/*
Delete removes a single token by ID.

Parameters:
  - context: context.Context
  - tokenID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresTokenRepository) Delete(context context.Context, tokenID string) error {
	const query = `DELETE FROM users.token WHERE id = $1`

	_, err := repository.pool.Exec(context, query, tokenID)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_delete_failed: %w", err)
	}
	return nil
}

/*
DeleteByUserAndPurpose removes every token a user holds for a purpose.

Parameters:
  - context: context.Context
  - userID: string
  - purpose: TokenPurpose

Returns:
  - error: Execution errors
*/
func (repository *PostgresTokenRepository) DeleteByUserAndPurpose(context context.Context, userID string, purpose TokenPurpose) error {
	const query = `DELETE FROM users.token WHERE userid = $1 AND purpose = $2`

	_, err := repository.pool.Exec(context, query, userID, purpose)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_delete_by_user_failed: %w", err)
	}
	return nil
}

/*
DeleteByMemberAndPurpose removes every token addressed to a member email.

Parameters:
  - context: context.Context
  - memberEmail: string
  - purpose: TokenPurpose

Returns:
  - error: Execution errors
*/
func (repository *PostgresTokenRepository) DeleteByMemberAndPurpose(context context.Context, memberEmail string, purpose TokenPurpose) error {
	const query = `DELETE FROM users.token WHERE memberemail = $1 AND purpose = $2`

	_, err := repository.pool.Exec(context, query, memberEmail, purpose)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_delete_by_member_failed: %w", err)
	}
	return nil
}
