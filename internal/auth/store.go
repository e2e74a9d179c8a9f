// Copyright (c) 2026 WealthWave. All rights reserved.

package auth

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures (Conflict on duplicate email)
	*/
	Create(context context.Context, user *User) error

	/*
		MarkActive transitions a PENDING account to ACTIVE.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkActive(context context.Context, userID string) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		EnableTwoFactor stores the shared TOTP secret and flips the flag on.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - secret: string (base32-encoded shared secret)

		Returns:
		  - error: Persistence failures
	*/
	EnableTwoFactor(context context.Context, userID, secret string) error

	/*
		IsActive reports whether the account exists and is in ACTIVE status.
		Used by the Access Guard on every authenticated request.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - bool: true only for an existing ACTIVE account
		  - error: Database retrieval failures
	*/
	IsActive(context context.Context, userID string) (bool, error)
}

// # Token Data Access

// TokenRepository defines the data access contract for stored opaque tokens.
//
// One table backs all four purposes. Refresh tokens additionally rely on a
// partial unique index over (userid, purpose) so that [UpsertRefresh] can
// rotate atomically.
type TokenRepository interface {

	/*
		Create persists a new token record.

		Parameters:
		  - context: context.Context
		  - token: *Token

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, token *Token) error

	/*
		FindByValue returns the token matching the given opaque value and purpose.

		Parameters:
		  - context: context.Context
		  - value: string (hex nonce)
		  - purpose: TokenPurpose

		Returns:
		  - *Token: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByValue(context context.Context, value string, purpose TokenPurpose) (*Token, error)

	/*
		FindByUserAndPurpose returns the newest token a user holds for a purpose.
		Backs the resend-original-confirmation behavior on pending logins.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - purpose: TokenPurpose

		Returns:
		  - *Token: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByUserAndPurpose(context context.Context, userID string, purpose TokenPurpose) (*Token, error)

	/*
		UpsertRefresh atomically creates-or-replaces the single SESSION_REFRESH
		token a user may hold. Rotation is a single statement; two concurrent
		refreshes can never leave two live rows behind.

		Parameters:
		  - context: context.Context
		  - token: *Token (Purpose must be SESSION_REFRESH)

		Returns:
		  - error: Persistence failures
	*/
	UpsertRefresh(context context.Context, token *Token) error

	/*
		Delete removes a single token by ID.

		Parameters:
		  - context: context.Context
		  - tokenID: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, tokenID string) error

	/*
		DeleteByUserAndPurpose removes every token a user holds for a purpose.
		Consuming one reset link purges all outstanding reset links this way.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - purpose: TokenPurpose

		Returns:
		  - error: Persistence failures
	*/
	DeleteByUserAndPurpose(context context.Context, userID string, purpose TokenPurpose) error

	/*
		DeleteByMemberAndPurpose removes every token addressed to an invited
		member email for a purpose. Accepting one family invite consumes all
		invites issued to that address.

		Parameters:
		  - context: context.Context
		  - memberEmail: string
		  - purpose: TokenPurpose

		Returns:
		  - error: Persistence failures
	*/
	DeleteByMemberAndPurpose(context context.Context, memberEmail string, purpose TokenPurpose) error
}
