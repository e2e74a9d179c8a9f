// Copyright (c) 2026 WealthWave. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a signed access assertion remains valid.
	// One hour balances session comfort against leaked-token exposure; the
	// access cookie max-age is pinned to exactly this value.
	AccessTokenTTL = 1 * time.Hour

	// RefreshTokenTTL is the duration a refresh nonce remains valid.
	// 48 hours: the session silently renews for two days of activity, then
	// requires a fresh login.
	RefreshTokenTTL = 48 * time.Hour

	// ConfirmationTokenTTL is the validity window of an email confirmation
	// link. Long (24 hours) as users might not check email immediately.
	ConfirmationTokenTTL = 24 * time.Hour

	// ResetTokenTTL is the validity window of a password reset link.
	ResetTokenTTL = 24 * time.Hour

	// InviteTokenTTL is the validity window of a family invitation link.
	InviteTokenTTL = 7 * 24 * time.Hour

	// NonceLength is the byte length of every random token value.
	// 32 bytes encode to 64 hex characters on the wire.
	NonceLength = 32
)
