// Copyright (c) 2026 WealthWave. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wealthwave/api/internal/platform/constants"
	"github.com/wealthwave/api/internal/platform/sec"
	"github.com/wealthwave/api/pkg/uuidv7"
)

// # Session Manager

// TokenProvider defines the contract for generating signed access assertions.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The email of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the assertion expires.
	//
	// # Returns
	//   - A signed JWT string, or an error if signing fails.
	GenerateAccessToken(userID, email string, role sec.UserRole, timeToLive time.Duration) (string, error)
}

// SessionTokens is the transport-ready pair produced by a successful
// authentication: a signed access assertion and an opaque refresh nonce.
type SessionTokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// SessionManager mints the access/refresh pair and translates it into
// HTTP cookies. Every flow that ends in a live session (password login,
// 2FA verification, federated login, refresh) funnels through [Issue], so
// the pair is produced identically everywhere.
type SessionManager struct {
	tokens     TokenRepository
	provider   TokenProvider
	production bool
}

// NewSessionManager constructs a [SessionManager].
//
// The production flag gates the Secure attribute on cookies: local
// development over plain HTTP would otherwise never see them echoed back.
func NewSessionManager(tokens TokenRepository, provider TokenProvider, production bool) *SessionManager {
	return &SessionManager{
		tokens:     tokens,
		provider:   provider,
		production: production,
	}
}

/*
Issue mints a fresh session for an authenticated user.

Description: Generates a new 32-byte refresh nonce, atomically rotates the
user's single SESSION_REFRESH record (48h expiry), and signs a 1h access
assertion. Issuing always rotates; two logins from different devices share
one refresh record by design, and the later login wins.

Parameters:
  - context: context.Context
  - user: *User (must be ACTIVE and fully authenticated)

Returns:
  - *SessionTokens: Access assertion + refresh nonce with their expiries
  - error: Nonce generation, persistence, or signing failures
*/
func (manager *SessionManager) Issue(context context.Context, user *User) (*SessionTokens, error) {
	nonce, err := sec.GenerateNonce(NonceLength)
	if err != nil {
		return nil, fmt.Errorf("session_nonce_failed: %w", err)
	}

	now := time.Now()
	refreshExpiry := now.Add(RefreshTokenTTL)

	// Rotate the persistent refresh record in a single atomic statement.
	userID := user.ID
	record := &Token{
		ID:        uuidv7.New(),
		Value:     nonce,
		Purpose:   PurposeSessionRefresh,
		UserID:    &userID,
		ExpiresAt: refreshExpiry,
		CreatedAt: now,
	}
	if err := manager.tokens.UpsertRefresh(context, record); err != nil {
		return nil, fmt.Errorf("session_refresh_upsert_failed: %w", err)
	}

	accessToken, err := manager.provider.GenerateAccessToken(user.ID, user.Email, user.Role, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("session_access_sign_failed: %w", err)
	}

	return &SessionTokens{
		AccessToken:      accessToken,
		RefreshToken:     nonce,
		AccessExpiresAt:  now.Add(AccessTokenTTL),
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

/*
CookiePair translates a token pair into its two HTTP-only cookies.

Description: Both cookies are HttpOnly + SameSite=Strict; Secure in
production. Each cookie's MaxAge equals its token's remaining lifetime —
a cookie never outlives the credential it carries.

Parameters:
  - tokens: *SessionTokens

Returns:
  - []*http.Cookie: access_token and refresh_token cookies, in that order
*/
func (manager *SessionManager) CookiePair(tokens *SessionTokens) []*http.Cookie {
	return []*http.Cookie{
		manager.buildCookie(constants.AccessTokenCookieName, tokens.AccessToken, int(AccessTokenTTL.Seconds())),
		manager.buildCookie(constants.RefreshTokenCookieName, tokens.RefreshToken, int(RefreshTokenTTL.Seconds())),
	}
}

/*
ClearedCookiePair returns expired versions of both auth cookies.

Description: Used by logout to instruct the browser to discard the session
unconditionally, even when the server-side record was already gone.

Returns:
  - []*http.Cookie: both cookies with MaxAge=-1
*/
func (manager *SessionManager) ClearedCookiePair() []*http.Cookie {
	return []*http.Cookie{
		manager.buildCookie(constants.AccessTokenCookieName, "", -1),
		manager.buildCookie(constants.RefreshTokenCookieName, "", -1),
	}
}

// buildCookie applies the shared cookie policy to a name/value pair.
func (manager *SessionManager) buildCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.CookiePath,
		MaxAge:   maxAge,
		Secure:   manager.production,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// SetCookies writes every cookie in the slice onto the response.
func SetCookies(writer http.ResponseWriter, cookies []*http.Cookie) {
	for _, cookie := range cookies {
		http.SetCookie(writer, cookie)
	}
}
