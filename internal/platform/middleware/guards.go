// Copyright (c) 2026 WealthWave. All rights reserved.

// Per-request security gates for the WealthWave API.
//
// # Architecture
//
// Two independent guards protect every non-public route:
//
//   - [RequireSession] (Access Guard): proves the caller holds a valid signed
//     access assertion AND still refers to an active account.
//   - [RequireRoles] (Role Guard): proves the asserted role is in the
//     operation's declared allow-list.
//
// The Role Guard assumes the Access Guard already ran; it never re-checks
// account existence or status. Both are needed: a valid token for a
// deactivated user must fail at the first gate, a valid token with an
// insufficient role at the second.
package middleware

import (
	stdctx "context"
	"net/http"

	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/constants"
	"github.com/wealthwave/api/internal/platform/ctxutil"
	"github.com/wealthwave/api/internal/platform/respond"
	"github.com/wealthwave/api/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access assertions.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the guards from the sec package's
// concrete [sec.TokenService], allowing mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AccessClaims, error)
}

// AccountChecker reports whether the referenced account currently exists and
// is in ACTIVE status.
//
// The Access Guard pays a store round trip on every request for this check:
// a token stays cryptographically valid until expiry, but deactivating or
// deleting the account must take effect immediately.
type AccountChecker interface {
	IsActive(ctx stdctx.Context, userID string) (bool, error)
}

// RequireSession is the Access Guard.
//
// # Flow
//  1. Extract the access assertion from the HTTP-only cookie; absent → 401.
//  2. Verify signature and expiry via [TokenVerifier]; invalid → 401.
//  3. Re-check the referenced user's current status; missing/inactive → 401.
//  4. Inject [*sec.AccessClaims] into the request context for downstream use.
func RequireSession(verifier TokenVerifier, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Cookie Extraction ──────────────────────────────────────────
			cookie, err := request.Cookie(constants.AccessTokenCookieName)
			if err != nil || cookie.Value == "" {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Assertion Verification ─────────────────────────────────────
			claims, err := verifier.VerifyToken(cookie.Value)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 3. Liveness Check ─────────────────────────────────────────────
			active, err := accounts.IsActive(request.Context(), claims.UserID)
			if err != nil || !active {
				respond.Error(writer, request, apperr.Unauthorized("Account is not active"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireRoles is the Role Guard.
//
// # Usage
//
// Must be registered AFTER [RequireSession]. The role claim is compared
// case-insensitively against the declared allow-list; any mismatch — or a
// missing claim set — rejects the request.
func RequireRoles(allowed ...sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !claims.Role.MatchesAny(allowed...) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser retrieves the [*sec.AccessClaims] from the [stdctx.Context].
//
// # Returns
//   - A pointer to [*sec.AccessClaims] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx stdctx.Context) *sec.AccessClaims {
	return ctxutil.GetAuthUser(ctx)
}
