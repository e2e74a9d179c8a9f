// Copyright (c) 2026 WealthWave. All rights reserved.

/*
Authentication service: orchestrates every identity lifecycle flow.

Architecture:

  - Service: Orchestrates business logic (Register, Login, 2FA, Federation).
  - Repository: Abstracted interfaces for PostgreSQL (users, tokens).
  - SessionManager: Single funnel for minting the access/refresh pair.
  - Side channels: Mail, in-app notifications, and audit events behind
    narrow interfaces; notification and audit writes are fire-and-forget.

The service decides the outcome of every flow; HTTP handlers only translate
transport concerns (cookies, status codes, JSON).
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/sec"
	"github.com/wealthwave/api/pkg/uuidv7"
)

// # Contracts & Types

// TokenDecoder extracts claims from an access assertion without verifying
// it. Logout uses this to locate cleanup work even for expired assertions.
type TokenDecoder interface {
	DecodeUnverified(tokenString string) (*sec.AccessClaims, error)
}

// Mailer defines the outbound mail operations the auth flows depend on.
type Mailer interface {
	// SendVerification emails the account confirmation link.
	SendVerification(context context.Context, recipient, name, nonce string) error

	// SendPasswordReset emails the password recovery link.
	SendPasswordReset(context context.Context, recipient, name, nonce string) error
}

// Notifier writes in-app notifications. Implementations must be safe to
// call on a best-effort basis; the service ignores returned errors.
type Notifier interface {
	CreateForUser(context context.Context, userID, kind, message string) error
}

// Auditor records security-relevant events. Implementations log their own
// failures; the service never lets an audit problem affect the flow outcome.
type Auditor interface {
	Record(context context.Context, action, actorID, detail string) error
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance, or login logic must be reviewed by the security team.
type Service struct {
	users    UserRepository
	tokens   TokenRepository
	sessions *SessionManager
	totp     *TOTPEngine
	google   IdentityProvider
	decoder  TokenDecoder
	mailer   Mailer
	notifier Notifier
	auditor  Auditor
}

// ServiceDeps bundles the collaborators required by [NewService].
type ServiceDeps struct {
	Users    UserRepository
	Tokens   TokenRepository
	Sessions *SessionManager
	TOTP     *TOTPEngine
	Google   IdentityProvider
	Decoder  TokenDecoder
	Mailer   Mailer
	Notifier Notifier
	Auditor  Auditor
}

// NewService constructs a new auth [Service] with its dependencies.
func NewService(deps ServiceDeps) *Service {
	return &Service{
		users:    deps.Users,
		tokens:   deps.Tokens,
		sessions: deps.Sessions,
		totp:     deps.TOTP,
		google:   deps.Google,
		decoder:  deps.Decoder,
		mailer:   deps.Mailer,
		notifier: deps.Notifier,
		auditor:  deps.Auditor,
	}
}

// LoginResult is the outcome of any flow that may end in a live session.
//
// When TwoFactorRequired is true, Session is nil: the caller holds a valid
// first factor but must complete verification before any cookie is set.
type LoginResult struct {
	TwoFactorRequired bool
	User              *User
	Session           *SessionTokens
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Creates the account in PENDING status and dispatches the
confirmation email BEFORE persisting the confirmation token. If mail
delivery fails, no token exists, so the account can only be activated
through a later login-triggered resend.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity (PENDING)
  - error: Conflict (if email exists), mail dispatch, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict error.
	// The table's unique constraint backstops the race between this check
	// and the insert below.
	_, err := service.users.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		Status:       StatusPending,
	}

	// Persist the user to the database
	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	// Dispatch the confirmation email, then persist the token. Ordering
	// matters: a token the user never received is unreachable garbage, so
	// the store write only happens after the mail transport accepted it.
	if err := service.issueConfirmation(context, user); err != nil {
		return nil, err
	}

	service.audit(context, "auth.register", user.ID, user.Email)

	return user, nil
}

// issueConfirmation generates a fresh confirmation nonce, mails it, and
// persists the EMAIL_CONFIRMATION token. Mail-first ordering.
func (service *Service) issueConfirmation(context context.Context, user *User) error {
	nonce, err := sec.GenerateNonce(NonceLength)
	if err != nil {
		return fmt.Errorf("auth_service_confirmation_nonce_failed: %w", err)
	}

	if err := service.mailer.SendVerification(context, user.Email, user.Name, nonce); err != nil {
		return apperr.External("Failed to send verification email", err)
	}

	userID := user.ID
	token := &Token{
		ID:        uuidv7.New(),
		Value:     nonce,
		Purpose:   PurposeEmailConfirmation,
		UserID:    &userID,
		ExpiresAt: time.Now().Add(ConfirmationTokenTTL),
	}
	if err := service.tokens.Create(context, token); err != nil {
		return fmt.Errorf("auth_service_confirmation_store_failed: %w", err)
	}

	return nil
}

// # Authentication Flow

/*
Login validates credentials and either issues a session or reports the next
required step.

Description: Performs constant-time password comparison, intercepts
unconfirmed accounts by re-sending their ORIGINAL confirmation link (no
rotation), and defers cookie issuance when two-factor is enabled.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *LoginResult: Session tokens, or a two-factor marker with no tokens
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*LoginResult, error) {
	user, err := service.users.FindByEmail(context, email)

	// Account existence is intentionally disclosed on this endpoint: the
	// product treats "no such user" and "wrong password" as distinct UX.
	if err != nil {
		return nil, apperr.Unauthorized("User does not exist")
	}

	// Constant-time bcrypt comparison. The OAuth sentinel can never match,
	// so federated accounts are rejected here without a special case.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		service.audit(context, "auth.login.failed", user.ID, "invalid credentials")
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// Unconfirmed accounts cannot log in. Re-send the original link so a
	// user who lost the email is not stuck.
	if user.Status == StatusPending {
		if err := service.resendConfirmation(context, user); err != nil {
			return nil, err
		}
		return nil, apperr.Unauthorized("Email not confirmed. A new confirmation link has been sent.")
	}

	// Two-factor accounts stop here: correct password alone mints nothing.
	if user.TwoFactorEnabled {
		service.audit(context, "auth.login.2fa_challenge", user.ID, "")
		return &LoginResult{TwoFactorRequired: true, User: user}, nil
	}

	session, err := service.sessions.Issue(context, user)
	if err != nil {
		return nil, err
	}

	service.audit(context, "auth.login.success", user.ID, "")

	return &LoginResult{User: user, Session: session}, nil
}

// resendConfirmation re-sends a pending user's existing confirmation link.
// Only an expired (or missing) token is replaced; an outstanding valid
// token is re-sent verbatim so earlier emails stay usable.
func (service *Service) resendConfirmation(context context.Context, user *User) error {
	token, err := service.tokens.FindByUserAndPurpose(context, user.ID, PurposeEmailConfirmation)

	if err == nil && !token.IsExpired() {
		if mailErr := service.mailer.SendVerification(context, user.Email, user.Name, token.Value); mailErr != nil {
			return apperr.External("Failed to send verification email", mailErr)
		}
		return nil
	}

	// Opportunistic cleanup of the stale record before minting a new one.
	if err == nil {
		_ = service.tokens.Delete(context, token.ID)
	}

	return service.issueConfirmation(context, user)
}

/*
VerifyTwoFactor completes the second step of a two-factor login.

Description: The challenge is keyed by email only. To avoid turning this
endpoint into an account-existence oracle, a missing user, disabled
two-factor, and missing secret all collapse into one indistinguishable
error. Brute-force pressure on the 6-digit space is bounded by the global
per-IP rate limiter.

Parameters:
  - context: context.Context
  - email: string
  - code: string (6-digit TOTP)

Returns:
  - *LoginResult: Session tokens on success
  - error: Unauthorized on any verification failure
*/
func (service *Service) VerifyTwoFactor(context context.Context, email, code string) (*LoginResult, error) {
	user, err := service.users.FindByEmail(context, email)
	if err != nil || !user.TwoFactorEnabled || user.TwoFactorSecret == "" {
		return nil, apperr.Unauthorized("Two-factor authentication is not enabled for this account")
	}

	if !service.totp.VerifyCode(user.TwoFactorSecret, code) {
		service.audit(context, "auth.2fa.failed", user.ID, "")
		return nil, apperr.Unauthorized("Invalid two-factor code")
	}

	session, err := service.sessions.Issue(context, user)
	if err != nil {
		return nil, err
	}

	service.audit(context, "auth.2fa.success", user.ID, "")

	return &LoginResult{User: user, Session: session}, nil
}

/*
GoogleLogin authenticates or enrolls a user through Google federation.

Description: Exchanges the authorization code with the provider, verifies
the identity assertion is usable, and finds-or-creates the local account.
Federated accounts are created ACTIVE (the provider already verified the
mailbox) with the password sentinel. Two-factor still applies: federation
replaces the first factor only.

Parameters:
  - context: context.Context
  - code: string (OAuth authorization code)

Returns:
  - *LoginResult: Session tokens, or a two-factor marker
  - error: External (provider down), Unauthorized (unusable assertion)
*/
func (service *Service) GoogleLogin(context context.Context, code string) (*LoginResult, error) {
	assertion, err := service.google.Exchange(context, code)
	if err != nil {
		return nil, apperr.External("Failed to authenticate with Google", err)
	}

	if !assertion.IsUsable() {
		return nil, apperr.Unauthorized("Google account could not be verified")
	}

	user, err := service.users.FindByEmail(context, assertion.Email)
	if err != nil {
		// First federated login: enroll a new ACTIVE account.
		user = &User{
			ID:           uuidv7.New(),
			Email:        assertion.Email,
			Name:         assertion.Name,
			PasswordHash: sec.OAuthPasswordSentinel,
			Role:         sec.RoleUser,
			Status:       StatusActive,
		}
		if err := service.users.Create(context, user); err != nil {
			return nil, err
		}
		service.audit(context, "auth.register.google", user.ID, user.Email)
	}

	if user.TwoFactorEnabled {
		service.audit(context, "auth.login.2fa_challenge", user.ID, "google")
		return &LoginResult{TwoFactorRequired: true, User: user}, nil
	}

	session, err := service.sessions.Issue(context, user)
	if err != nil {
		return nil, err
	}

	service.audit(context, "auth.login.google", user.ID, "")

	return &LoginResult{User: user, Session: session}, nil
}

// # Email Confirmation

/*
VerifyEmail activates an account from a confirmation link.

Description: Single use — the token is deleted on success. Expired tokens
are deleted opportunistically at lookup and reported identically to
unknown ones.

Parameters:
  - context: context.Context
  - nonce: string

Returns:
  - error: ValidationError on any unusable link
*/
func (service *Service) VerifyEmail(context context.Context, nonce string) error {
	invalidLink := apperr.ValidationError("Invalid or expired confirmation link")

	token, err := service.tokens.FindByValue(context, nonce, PurposeEmailConfirmation)
	if err != nil || token.UserID == nil {
		return invalidLink
	}

	if token.IsExpired() {
		_ = service.tokens.Delete(context, token.ID)
		return invalidLink
	}

	if err := service.users.MarkActive(context, *token.UserID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Consume the link so a replay fails.
	_ = service.tokens.Delete(context, token.ID)

	service.notify(context, *token.UserID, "account", "Your email address has been confirmed. Welcome to WealthWave!")
	service.audit(context, "auth.email_verified", *token.UserID, "")

	return nil
}

// # Session Management

/*
Refresh rotates an existing session from its refresh nonce.

Description: Looks up the SESSION_REFRESH record, rejects expired or
orphaned ones (with opportunistic deletion), and mints a fresh pair via
the Session Manager — which atomically replaces the stored nonce, so the
presented value is single-use.

Parameters:
  - context: context.Context
  - nonce: string (from the refresh_token cookie)

Returns:
  - *LoginResult: Rotated session tokens
  - error: Unauthorized on any unusable nonce
*/
func (service *Service) Refresh(context context.Context, nonce string) (*LoginResult, error) {
	invalidToken := apperr.Unauthorized("Invalid or expired refresh token")

	token, err := service.tokens.FindByValue(context, nonce, PurposeSessionRefresh)
	if err != nil || token.UserID == nil {
		return nil, invalidToken
	}

	if token.IsExpired() {
		_ = service.tokens.Delete(context, token.ID)
		return nil, invalidToken
	}

	user, err := service.users.FindByID(context, *token.UserID)
	if err != nil {
		return nil, invalidToken
	}

	session, err := service.sessions.Issue(context, user)
	if err != nil {
		return nil, err
	}

	service.audit(context, "auth.refresh", user.ID, "")

	return &LoginResult{User: user, Session: session}, nil
}

/*
Logout tears down the caller's session.

Description: Never fails. The access assertion is decoded WITHOUT
verification — an expired assertion still names whose refresh record to
delete. Undecodable or absent assertions simply skip the store cleanup;
the handler clears cookies regardless.

Parameters:
  - context: context.Context
  - accessToken: string (raw cookie value, possibly empty)

Returns:
  - error: Always nil
*/
func (service *Service) Logout(context context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}

	claims, err := service.decoder.DecodeUnverified(accessToken)
	if err != nil || claims.UserID == "" {
		return nil
	}

	_ = service.tokens.DeleteByUserAndPurpose(context, claims.UserID, PurposeSessionRefresh)
	service.audit(context, "auth.logout", claims.UserID, "")

	return nil
}

// # Password Recovery

/*
RequestReset initiates the forgot-password flow.

Description: Discloses account existence (product decision — the reset
form tells the user to check their spelling). Mail-first ordering: the
PASSWORD_RESET token is only persisted after the transport accepted the
message. Outstanding reset links are NOT invalidated; each request adds
another valid link until one is consumed.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: NotFound, mail dispatch, or storage failures
*/
func (service *Service) RequestReset(context context.Context, email string) error {
	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		return apperr.NotFound("User")
	}

	nonce, err := sec.GenerateNonce(NonceLength)
	if err != nil {
		return fmt.Errorf("auth_service_reset_nonce_failed: %w", err)
	}

	if err := service.mailer.SendPasswordReset(context, user.Email, user.Name, nonce); err != nil {
		return apperr.External("Failed to send password reset email", err)
	}

	userID := user.ID
	token := &Token{
		ID:        uuidv7.New(),
		Value:     nonce,
		Purpose:   PurposePasswordReset,
		UserID:    &userID,
		ExpiresAt: time.Now().Add(ResetTokenTTL),
	}
	if err := service.tokens.Create(context, token); err != nil {
		return fmt.Errorf("auth_service_reset_store_failed: %w", err)
	}

	service.audit(context, "auth.reset_requested", user.ID, "")

	return nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the reset link, stores the new password as a bcrypt
hash (identical treatment to registration), and purges EVERY outstanding
reset token for the user — consuming one link kills all of them.

Parameters:
  - context: context.Context
  - nonce: string
  - newPassword: string

Returns:
  - error: ValidationError on an unusable link, or update failures
*/
func (service *Service) ResetPassword(context context.Context, nonce, newPassword string) error {
	invalidLink := apperr.ValidationError("Invalid or expired reset link")

	token, err := service.tokens.FindByValue(context, nonce, PurposePasswordReset)
	if err != nil || token.UserID == nil {
		return invalidLink
	}

	if token.IsExpired() {
		_ = service.tokens.Delete(context, token.ID)
		return invalidLink
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, *token.UserID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	// Consuming one link invalidates every outstanding reset link.
	_ = service.tokens.DeleteByUserAndPurpose(context, *token.UserID, PurposePasswordReset)

	service.notify(context, *token.UserID, "security", "Your password was changed. If this wasn't you, contact support immediately.")
	service.audit(context, "auth.password_reset", *token.UserID, "")

	return nil
}

// # Two-Factor Enrollment

/*
EnableTwoFactor provisions TOTP for the authenticated user.

Description: Generates a fresh shared secret, persists it with the enabled
flag, and returns the provisioning bundle (secret, otpauth URI, QR data
URI). Re-enrollment replaces any previous secret.

Parameters:
  - context: context.Context
  - userID: string (from the verified access assertion)

Returns:
  - *TOTPEnrollment: Provisioning bundle for the authenticator app
  - error: Lookup, generation, or persistence failures
*/
func (service *Service) EnableTwoFactor(context context.Context, userID string) (*TOTPEnrollment, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	enrollment, err := service.totp.GenerateSecret(user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_2fa_enroll_failed: %w", err)
	}

	if err := service.users.EnableTwoFactor(context, user.ID, enrollment.Secret); err != nil {
		return nil, fmt.Errorf("auth_service_2fa_persist_failed: %w", err)
	}

	service.notify(context, user.ID, "security", "Two-factor authentication has been enabled on your account.")
	service.audit(context, "auth.2fa.enabled", user.ID, "")

	return enrollment, nil
}

// # Side Channels

// notify writes an in-app notification, swallowing failures. The side
// channel must never decide the outcome of an auth flow.
func (service *Service) notify(context context.Context, userID, kind, message string) {
	if service.notifier == nil {
		return
	}
	_ = service.notifier.CreateForUser(context, userID, kind, message)
}

// audit records a security event, swallowing failures.
func (service *Service) audit(context context.Context, action, actorID, detail string) {
	if service.auditor == nil {
		return
	}
	_ = service.auditor.Record(context, action, actorID, detail)
}
