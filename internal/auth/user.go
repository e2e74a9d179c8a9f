// Copyright (c) 2026 WealthWave. All rights reserved.

/*
Package auth implements the user identity and session lifecycle layer.

It defines the core domain entities (User, Token) and the logic for
registration, credential and federated login, two-factor verification,
email confirmation, password recovery, and refresh-token rotation.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
external dependencies and encapsulate all business rules related to user
identity.
*/
package auth

import (
	"time"

	"github.com/wealthwave/api/internal/platform/sec"
)

// # Domain Entities

// AccountStatus is the lifecycle state of a user account.
type AccountStatus string

const (
	// StatusPending marks a password account that has not confirmed its email.
	// Pending accounts cannot log in; a login attempt re-sends the original
	// confirmation link instead.
	StatusPending AccountStatus = "PENDING"

	// StatusActive marks a fully usable account. OAuth accounts are created
	// directly in this state because the provider already verified the email.
	StatusActive AccountStatus = "ACTIVE"
)

// User represents a registered member of the WealthWave platform.
type User struct {
	ID               string        `json:"id"`
	Email            string        `json:"email"`
	Name             string        `json:"name"`
	PasswordHash     string        `json:"-"` // Explicitly omitted from JSON for security.
	Role             sec.UserRole  `json:"role"`
	Status           AccountStatus `json:"status"`
	TwoFactorEnabled bool          `json:"two_factor_enabled"`
	TwoFactorSecret  string        `json:"-"` // Shared TOTP secret. Omitted for security.
	FamilyID         *string       `json:"family_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// IsOAuthOnly reports whether the account was created through federation and
// therefore has no usable password.
func (u *User) IsOAuthOnly() bool {
	return u.PasswordHash == sec.OAuthPasswordSentinel
}

// TokenPurpose tags a stored token with the single flow it serves. A token
// presented to the wrong flow never matches, even if the value is correct.
type TokenPurpose string

const (
	PurposeEmailConfirmation TokenPurpose = "EMAIL_CONFIRMATION"
	PurposePasswordReset     TokenPurpose = "PASSWORD_RESET"
	PurposeSessionRefresh    TokenPurpose = "SESSION_REFRESH"
	PurposeFamilyInvite      TokenPurpose = "FAMILY_INVITE"
)

// Token is a stored opaque token record. The same table backs every
// token-driven flow; Purpose discriminates them.
type Token struct {
	ID      string       `json:"id"`
	Value   string       `json:"-"` // Opaque hex nonce. Never serialized.
	Purpose TokenPurpose `json:"purpose"`

	// UserID is set for confirmation, reset, and refresh tokens.
	UserID *string `json:"user_id,omitempty"`

	// FamilyID and MemberEmail cross-reference family invitations, where the
	// invited member may not have an account yet.
	FamilyID    *string `json:"family_id,omitempty"`
	MemberEmail *string `json:"member_email,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the token has passed its expiry instant.
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// # Field Identifiers

// Global field names for validation and identity mapping in the
// authentication domain.
const (
	FieldEmail             = "email"
	FieldPassword          = "password"
	FieldName              = "name"
	FieldCode              = "code"
	FieldNonce             = "nonce"
	FieldUser              = "user"
	FieldMessage           = "message"
	FieldTwoFactorRequired = "two_factor_required"
	FieldSecret            = "secret"
	FieldOTPAuthURI        = "otpauth_uri"
	FieldQRCode            = "qr_code"
)
