// Copyright (c) 2026 WealthWave. All rights reserved.

/*
HTTP delivery layer for the authentication lifecycle.

# Architecture

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: RESTful JSON interface using the WealthWave envelope.
  - Security: Sets and clears the HTTP-only cookie pair; never exposes
    tokens in response bodies.
  - Verification: Enforces strict input validation before reaching [Service].

This layer is strictly responsible for transport concerns (status codes,
cookies, JSON).
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/constants"
	requestutil "github.com/wealthwave/api/internal/platform/request"
	"github.com/wealthwave/api/internal/platform/respond"
	"github.com/wealthwave/api/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService  *Service
	sessions     *SessionManager
	sessionGuard func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler].
//
// sessionGuard is the Access Guard middleware protecting the enrollment
// endpoint; it is injected so this package stays decoupled from guard wiring.
func NewHandler(service *Service, sessions *SessionManager, sessionGuard func(http.Handler) http.Handler) *Handler {
	return &Handler{
		authService:  service,
		sessions:     sessions,
		sessionGuard: sessionGuard,
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register       : Creates a new PENDING account.
//   - POST /login          : First factor; may defer to 2FA.
//   - POST /google         : Federated login via authorization code.
//   - POST /verify_2fa     : Second factor; mints the session.
//   - GET  /verify_email   : Consumes a confirmation link.
//   - GET  /refresh        : Rotates the session from the refresh cookie.
//   - GET  /logout         : Tears down the session, always succeeds.
//   - POST /request_reset  : Emails a password recovery link.
//   - POST /reset_password : Consumes a recovery link.
//   - POST /2fa/enable     : (guarded) Provisions TOTP enrollment.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/google", handler.google)
	router.Post("/verify_2fa", handler.verifyTwoFactor)
	router.Get("/verify_email", handler.verifyEmail)
	router.Get("/refresh", handler.refresh)
	router.Get("/logout", handler.logout)
	router.Post("/request_reset", handler.requestReset)
	router.Post("/reset_password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.sessionGuard)
		r.Post("/2fa/enable", handler.enableTwoFactor)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Code string `json:"code"`
}

type verifyTwoFactorRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Nonce    string `json:"nonce"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, persists a
PENDING profile, and dispatches the confirmation email.

Request:
  - Body: registerRequest (Email, Password, Name)

Response:
  - 201: User: Created user profile (PENDING)
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already exists
  - 502: ExternalService: Confirmation email could not be sent
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login performs first-factor authentication.

POST /api/v1/auth/login

Description: Verifies credentials. On success both auth cookies are set.
When the account has two-factor enabled, NO cookies are set and the body
carries the two_factor_required marker instead.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session established (cookies) or two-factor marker
  - 401: ErrUnauthorized: Unknown user, bad password, or unconfirmed email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondWithSession(writer, result)
}

/*
Google performs federated authentication with an OAuth authorization code.

POST /api/v1/auth/google

Request:
  - Body: googleLoginRequest (Code)

Response:
  - 200: Session established (cookies) or two-factor marker
  - 401: ErrUnauthorized: Assertion could not be verified
  - 502: ExternalService: Provider unreachable
*/
func (handler *Handler) google(writer http.ResponseWriter, request *http.Request) {
	var input googleLoginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Code == "" {
		respond.Error(writer, request, validate.RequiredError(FieldCode, "is required"))
		return
	}

	result, err := handler.authService.GoogleLogin(request.Context(), input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondWithSession(writer, result)
}

/*
VerifyTwoFactor completes a two-factor login challenge.

POST /api/v1/auth/verify_2fa

Description: Keyed by email and the current authenticator code. Success
mints the session and sets both cookies.

Request:
  - Body: verifyTwoFactorRequest (Email, Code)

Response:
  - 200: Session established (cookies)
  - 401: ErrUnauthorized: 2FA not enabled or invalid code
*/
func (handler *Handler) verifyTwoFactor(writer http.ResponseWriter, request *http.Request) {
	var input verifyTwoFactorRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldCode, input.Code).
		MinLen(FieldCode, input.Code, 6).
		MaxLen(FieldCode, input.Code, 6)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.VerifyTwoFactor(request.Context(), input.Email, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondWithSession(writer, result)
}

/*
VerifyEmail consumes a confirmation link.

GET /api/v1/auth/verify_email?nonce=...

Response:
  - 200: Success message
  - 400: ErrValidation: Invalid or expired link
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	nonce := request.URL.Query().Get(FieldNonce)

	validator := &validate.Validator{}
	validator.Required(FieldNonce, nonce).Nonce(FieldNonce, nonce)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), nonce); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Email confirmed successfully",
	})
}

/*
Refresh rotates the session from the refresh cookie.

GET /api/v1/auth/refresh

Response:
  - 200: Fresh cookie pair set
  - 401: ErrUnauthorized: Missing, invalid, or expired refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	nonce := requestutil.Cookie(request, constants.RefreshTokenCookieName)
	if nonce == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	result, err := handler.authService.Refresh(request.Context(), nonce)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondWithSession(writer, result)
}

/*
Logout tears down the session.

GET /api/v1/auth/logout

Description: Always succeeds. Both cookies are cleared regardless of
whether a server-side record existed.

Response:
  - 200: Success message
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	accessToken := requestutil.Cookie(request, constants.AccessTokenCookieName)
	_ = handler.authService.Logout(request.Context(), accessToken)

	SetCookies(writer, handler.sessions.ClearedCookiePair())

	respond.OK(writer, map[string]string{
		FieldMessage: "Logged out successfully",
	})
}

/*
RequestReset initiates password recovery.

POST /api/v1/auth/request_reset

Request:
  - Body: requestResetRequest (Email)

Response:
  - 200: Success message
  - 404: ErrNotFound: No account with this email
  - 502: ExternalService: Reset email could not be sent
*/
func (handler *Handler) requestReset(writer http.ResponseWriter, request *http.Request) {
	var input requestResetRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "A password reset link has been sent to your email",
	})
}

/*
ResetPassword completes password recovery.

POST /api/v1/auth/reset_password

Request:
  - Body: resetPasswordRequest (Nonce, Password)

Response:
  - 200: Success message
  - 400: ErrValidation: Invalid link or weak password
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldNonce, input.Nonce).
		Nonce(FieldNonce, input.Nonce).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Nonce, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

/*
EnableTwoFactor provisions TOTP for the authenticated caller.

POST /api/v1/auth/2fa/enable

Response:
  - 200: TOTPEnrollment: secret, otpauth URI, and QR data URI
  - 401: ErrUnauthorized: Missing or invalid session
*/
func (handler *Handler) enableTwoFactor(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	enrollment, err := handler.authService.EnableTwoFactor(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, enrollment)
}

// respondWithSession writes the uniform outcome of a login-shaped flow:
// either the two-factor marker (no cookies) or the cookie pair plus the
// user profile.
func (handler *Handler) respondWithSession(writer http.ResponseWriter, result *LoginResult) {
	if result.TwoFactorRequired {
		respond.OK(writer, map[string]any{
			FieldTwoFactorRequired: true,
		})
		return
	}

	SetCookies(writer, handler.sessions.CookiePair(result.Session))

	respond.OK(writer, map[string]any{
		FieldUser: result.User,
	})
}
