// Copyright (c) 2026 WealthWave. All rights reserved.

package auth_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthwave/api/internal/auth"
	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/sec"
)

// # In-Memory Fakes

// memoryUsers implements auth.UserRepository backed by a map.
type memoryUsers struct {
	byID map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[string]*auth.User)}
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := m.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range m.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return apperr.Conflict("Email is already registered")
		}
	}
	copied := *user
	m.byID[user.ID] = &copied
	return nil
}

func (m *memoryUsers) MarkActive(_ context.Context, userID string) error {
	user, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Status = auth.StatusActive
	return nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (m *memoryUsers) EnableTwoFactor(_ context.Context, userID, secret string) error {
	user, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.TwoFactorEnabled = true
	user.TwoFactorSecret = secret
	return nil
}

func (m *memoryUsers) IsActive(_ context.Context, userID string) (bool, error) {
	user, ok := m.byID[userID]
	return ok && user.Status == auth.StatusActive, nil
}

// memoryTokens implements auth.TokenRepository backed by a map.
type memoryTokens struct {
	byID map[string]*auth.Token
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{byID: make(map[string]*auth.Token)}
}

func (m *memoryTokens) Create(_ context.Context, token *auth.Token) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	copied := *token
	m.byID[token.ID] = &copied
	return nil
}

func (m *memoryTokens) FindByValue(_ context.Context, value string, purpose auth.TokenPurpose) (*auth.Token, error) {
	for _, token := range m.byID {
		if token.Value == value && token.Purpose == purpose {
			copied := *token
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Token")
}

func (m *memoryTokens) FindByUserAndPurpose(_ context.Context, userID string, purpose auth.TokenPurpose) (*auth.Token, error) {
	matches := make([]*auth.Token, 0)
	for _, token := range m.byID {
		if token.UserID != nil && *token.UserID == userID && token.Purpose == purpose {
			matches = append(matches, token)
		}
	}
	if len(matches) == 0 {
		return nil, apperr.NotFound("Token")
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	copied := *matches[0]
	return &copied, nil
}

func (m *memoryTokens) UpsertRefresh(_ context.Context, token *auth.Token) error {
	for id, existing := range m.byID {
		if existing.Purpose == auth.PurposeSessionRefresh &&
			existing.UserID != nil && token.UserID != nil && *existing.UserID == *token.UserID {
			delete(m.byID, id)
		}
	}
	copied := *token
	m.byID[token.ID] = &copied
	return nil
}

func (m *memoryTokens) Delete(_ context.Context, tokenID string) error {
	delete(m.byID, tokenID)
	return nil
}

func (m *memoryTokens) DeleteByUserAndPurpose(_ context.Context, userID string, purpose auth.TokenPurpose) error {
	for id, token := range m.byID {
		if token.UserID != nil && *token.UserID == userID && token.Purpose == purpose {
			delete(m.byID, id)
		}
	}
	return nil
}

func (m *memoryTokens) DeleteByMemberAndPurpose(_ context.Context, memberEmail string, purpose auth.TokenPurpose) error {
	for id, token := range m.byID {
		if token.MemberEmail != nil && *token.MemberEmail == memberEmail && token.Purpose == purpose {
			delete(m.byID, id)
		}
	}
	return nil
}

// countByPurpose is a test helper inspecting fake storage.
func (m *memoryTokens) countByPurpose(purpose auth.TokenPurpose) int {
	count := 0
	for _, token := range m.byID {
		if token.Purpose == purpose {
			count++
		}
	}
	return count
}

// sentMail records one outbound message dispatched by the fake mailer.
type sentMail struct {
	kind      string
	recipient string
	nonce     string
}

// fakeMailer implements auth.Mailer, recording messages and optionally
// failing the next dispatch.
type fakeMailer struct {
	sent     []sentMail
	failNext bool
}

func (f *fakeMailer) send(kind, recipient, nonce string) error {
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("smtp unreachable")
	}
	f.sent = append(f.sent, sentMail{kind: kind, recipient: recipient, nonce: nonce})
	return nil
}

func (f *fakeMailer) SendVerification(_ context.Context, recipient, _, nonce string) error {
	return f.send("verification", recipient, nonce)
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, recipient, _, nonce string) error {
	return f.send("reset", recipient, nonce)
}

func (f *fakeMailer) lastNonce() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].nonce
}

// fakeIdentityProvider implements auth.IdentityProvider with a canned result.
type fakeIdentityProvider struct {
	assertion *auth.IdentityAssertion
	err       error
}

func (f *fakeIdentityProvider) Exchange(_ context.Context, _ string) (*auth.IdentityAssertion, error) {
	return f.assertion, f.err
}

// # Fixture

type fixture struct {
	users    *memoryUsers
	tokens   *memoryTokens
	mailer   *fakeMailer
	provider *fakeIdentityProvider
	sessions *auth.SessionManager
	service  *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	jwtService, err := sec.NewTokenService("service-test-secret", "wealthwave.app")
	require.NoError(t, err)

	users := newMemoryUsers()
	tokens := newMemoryTokens()
	mailer := &fakeMailer{}
	provider := &fakeIdentityProvider{}
	sessions := auth.NewSessionManager(tokens, jwtService, false)

	service := auth.NewService(auth.ServiceDeps{
		Users:    users,
		Tokens:   tokens,
		Sessions: sessions,
		TOTP:     auth.NewTOTPEngine("WealthWave"),
		Google:   provider,
		Decoder:  jwtService,
		Mailer:   mailer,
	})

	return &fixture{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		provider: provider,
		sessions: sessions,
		service:  service,
	}
}

// register is a helper enrolling a user through the real flow.
func (f *fixture) register(t *testing.T, email, password string) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     "Test User",
	})
	require.NoError(t, err)
	return user
}

// activate flips a registered user to ACTIVE via the confirmation link that
// was just mailed.
func (f *fixture) activate(t *testing.T, user *auth.User) {
	t.Helper()
	require.NoError(t, f.service.VerifyEmail(context.Background(), f.mailer.lastNonce()))
	stored := f.users.byID[user.ID]
	require.Equal(t, auth.StatusActive, stored.Status)
}

// # Registration

func TestRegister_CreatesPendingAccount(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, "ada@wealthwave.app", "pass1234")

	assert.Equal(t, auth.StatusPending, user.Status)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.NotEqual(t, "pass1234", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("pass1234", user.PasswordHash))

	// One confirmation email went out carrying the stored nonce.
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "verification", f.mailer.sent[0].kind)

	token, err := f.tokens.FindByValue(context.Background(), f.mailer.lastNonce(), auth.PurposeEmailConfirmation)
	require.NoError(t, err)
	assert.Equal(t, user.ID, *token.UserID)
	assert.False(t, token.IsExpired())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@wealthwave.app", "pass1234")

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Email:    "ada@wealthwave.app",
		Password: "other-pass",
		Name:     "Imposter",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

func TestRegister_MailFailureAbortsTokenPersistence(t *testing.T) {
	f := newFixture(t)
	f.mailer.failNext = true

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Email:    "ada@wealthwave.app",
		Password: "pass1234",
		Name:     "Ada",
	})

	require.Error(t, err)
	// Mail-first ordering: no confirmation token may exist for a mail that
	// never reached the transport.
	assert.Equal(t, 0, f.tokens.countByPurpose(auth.PurposeEmailConfirmation))
}

// # Login

func TestLogin_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), "ghost@wealthwave.app", "whatever")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
	assert.Equal(t, "User does not exist", ae.Message)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	_, err := f.service.Login(context.Background(), "ada@wealthwave.app", "wrong")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Invalid credentials", ae.Message)
}

func TestLogin_PendingResendsOriginalLink(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@wealthwave.app", "pass1234")
	originalNonce := f.mailer.lastNonce()

	_, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Email not confirmed. A new confirmation link has been sent.", ae.Message)

	// The outstanding valid link is re-sent verbatim: no rotation, and the
	// table still holds exactly one confirmation token.
	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, originalNonce, f.mailer.lastNonce())
	assert.Equal(t, 1, f.tokens.countByPurpose(auth.PurposeEmailConfirmation))
}

func TestLogin_PendingRotatesExpiredLink(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@wealthwave.app", "pass1234")
	originalNonce := f.mailer.lastNonce()

	// Force the stored confirmation token past its expiry.
	for _, token := range f.tokens.byID {
		if token.Purpose == auth.PurposeEmailConfirmation {
			token.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}

	_, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.Error(t, err)

	// A fresh link replaced the expired one.
	assert.NotEqual(t, originalNonce, f.mailer.lastNonce())
	assert.Equal(t, 1, f.tokens.countByPurpose(auth.PurposeEmailConfirmation))

	// The old link is dead, the new one works.
	assert.Error(t, f.service.VerifyEmail(context.Background(), originalNonce))
	assert.NoError(t, f.service.VerifyEmail(context.Background(), f.mailer.lastNonce()))
}

func TestLogin_ActiveIssuesSession(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	result, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.NoError(t, err)

	assert.False(t, result.TwoFactorRequired)
	require.NotNil(t, result.Session)
	assert.NotEmpty(t, result.Session.AccessToken)
	assert.Len(t, result.Session.RefreshToken, 64)

	// Exactly one refresh record, matching the issued nonce.
	assert.Equal(t, 1, f.tokens.countByPurpose(auth.PurposeSessionRefresh))
	_, err = f.tokens.FindByValue(context.Background(), result.Session.RefreshToken, auth.PurposeSessionRefresh)
	assert.NoError(t, err)
}

func TestLogin_SecondLoginRotatesRefreshRecord(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	first, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.NoError(t, err)
	second, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.NoError(t, err)

	// One live refresh record per user: the later login wins.
	assert.Equal(t, 1, f.tokens.countByPurpose(auth.PurposeSessionRefresh))
	_, err = f.tokens.FindByValue(context.Background(), first.Session.RefreshToken, auth.PurposeSessionRefresh)
	assert.Error(t, err)
	_, err = f.tokens.FindByValue(context.Background(), second.Session.RefreshToken, auth.PurposeSessionRefresh)
	assert.NoError(t, err)
}

// # Two-Factor

func TestLogin_TwoFactorDefersSession(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	_, err := f.service.EnableTwoFactor(context.Background(), user.ID)
	require.NoError(t, err)

	result, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.NoError(t, err)

	assert.True(t, result.TwoFactorRequired)
	assert.Nil(t, result.Session)
	// The correct password alone mints nothing.
	assert.Equal(t, 0, f.tokens.countByPurpose(auth.PurposeSessionRefresh))
}

func TestVerifyTwoFactor_UniformNotEnabledError(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	// A missing account and an account without 2FA produce the exact same
	// error, so the endpoint cannot be used as an existence oracle.
	_, errMissing := f.service.VerifyTwoFactor(context.Background(), "ghost@wealthwave.app", "123456")
	_, errDisabled := f.service.VerifyTwoFactor(context.Background(), "ada@wealthwave.app", "123456")

	require.Error(t, errMissing)
	require.Error(t, errDisabled)
	assert.Equal(t, errMissing.Error(), errDisabled.Error())
}

func TestVerifyTwoFactor_Flow(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	enrollment, err := f.service.EnableTwoFactor(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	assert.Contains(t, enrollment.OTPAuthURI, "otpauth://")
	assert.Contains(t, enrollment.QRCode, "data:image/png;base64,")

	// Wrong code is rejected.
	_, err = f.service.VerifyTwoFactor(context.Background(), "ada@wealthwave.app", "000000")
	require.Error(t, err)
	assert.Equal(t, "Invalid two-factor code", apperr.As(err).Message)

	// A code computed from the shared secret mints the session.
	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)

	result, err := f.service.VerifyTwoFactor(context.Background(), "ada@wealthwave.app", code)
	require.NoError(t, err)
	assert.False(t, result.TwoFactorRequired)
	require.NotNil(t, result.Session)
}

func TestVerifyTwoFactor_CodeNotConsumed(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	enrollment, err := f.service.EnableTwoFactor(context.Background(), user.ID)
	require.NoError(t, err)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)

	// Codes are not tracked after acceptance: the same code verifies again
	// within its validity window.
	_, err = f.service.VerifyTwoFactor(context.Background(), "ada@wealthwave.app", code)
	require.NoError(t, err)
	_, err = f.service.VerifyTwoFactor(context.Background(), "ada@wealthwave.app", code)
	assert.NoError(t, err)
}

// # Google Federation

func TestGoogleLogin_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.err = fmt.Errorf("provider down")

	_, err := f.service.GoogleLogin(context.Background(), "auth-code")

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "EXTERNAL_SERVICE", ae.Code)
}

func TestGoogleLogin_UnusableAssertion(t *testing.T) {
	f := newFixture(t)
	f.provider.assertion = &auth.IdentityAssertion{
		Subject:       "google-sub",
		Email:         "ada@wealthwave.app",
		EmailVerified: false,
	}

	_, err := f.service.GoogleLogin(context.Background(), "auth-code")

	require.Error(t, err)
	assert.Equal(t, "Google account could not be verified", apperr.As(err).Message)
}

func TestGoogleLogin_EnrollsActiveAccount(t *testing.T) {
	f := newFixture(t)
	f.provider.assertion = &auth.IdentityAssertion{
		Subject:       "google-sub",
		Email:         "ada@wealthwave.app",
		Name:          "Ada",
		EmailVerified: true,
	}

	result, err := f.service.GoogleLogin(context.Background(), "auth-code")
	require.NoError(t, err)
	require.NotNil(t, result.Session)

	stored, err := f.users.FindByEmail(context.Background(), "ada@wealthwave.app")
	require.NoError(t, err)
	assert.Equal(t, auth.StatusActive, stored.Status)
	assert.True(t, stored.IsOAuthOnly())

	// The sentinel never matches a password login.
	_, err = f.service.Login(context.Background(), "ada@wealthwave.app", "oauth")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperr.As(err).Message)
}

func TestGoogleLogin_TwoFactorStillApplies(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)
	_, err := f.service.EnableTwoFactor(context.Background(), user.ID)
	require.NoError(t, err)

	f.provider.assertion = &auth.IdentityAssertion{
		Subject:       "google-sub",
		Email:         "ada@wealthwave.app",
		Name:          "Ada",
		EmailVerified: true,
	}

	result, err := f.service.GoogleLogin(context.Background(), "auth-code")
	require.NoError(t, err)

	// Federation only replaces the first factor.
	assert.True(t, result.TwoFactorRequired)
	assert.Nil(t, result.Session)
}

// # Email Confirmation

func TestVerifyEmail_SingleUse(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	nonce := f.mailer.lastNonce()

	require.NoError(t, f.service.VerifyEmail(context.Background(), nonce))
	assert.Equal(t, auth.StatusActive, f.users.byID[user.ID].Status)

	// Replay fails: the link was consumed.
	err := f.service.VerifyEmail(context.Background(), nonce)
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired confirmation link", apperr.As(err).Message)
}

func TestVerifyEmail_ExpiredLinkDeleted(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@wealthwave.app", "pass1234")
	nonce := f.mailer.lastNonce()

	for _, token := range f.tokens.byID {
		token.ExpiresAt = time.Now().Add(-time.Minute)
	}

	err := f.service.VerifyEmail(context.Background(), nonce)
	require.Error(t, err)

	// Opportunistic cleanup removed the stale record.
	assert.Equal(t, 0, f.tokens.countByPurpose(auth.PurposeEmailConfirmation))
}

func TestVerifyEmail_UnknownNonce(t *testing.T) {
	f := newFixture(t)

	err := f.service.VerifyEmail(context.Background(), "deadbeef")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

// # Refresh & Logout

func TestRefresh_RotatesNonce(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	login, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.NoError(t, err)

	refreshed, err := f.service.Refresh(context.Background(), login.Session.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, refreshed.Session)
	assert.NotEqual(t, login.Session.RefreshToken, refreshed.Session.RefreshToken)

	// The presented nonce was single-use; replaying it fails.
	_, err = f.service.Refresh(context.Background(), login.Session.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired refresh token", apperr.As(err).Message)

	// The rotated nonce works.
	_, err = f.service.Refresh(context.Background(), refreshed.Session.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_ExpiredRecord(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	login, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.NoError(t, err)

	for _, token := range f.tokens.byID {
		if token.Purpose == auth.PurposeSessionRefresh {
			token.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}

	_, err = f.service.Refresh(context.Background(), login.Session.RefreshToken)
	require.Error(t, err)

	// Expired record deleted at lookup.
	assert.Equal(t, 0, f.tokens.countByPurpose(auth.PurposeSessionRefresh))
}

func TestRefresh_UnknownNonce(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Refresh(context.Background(), "no-such-nonce")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.service.Logout(context.Background(), ""))
	assert.NoError(t, f.service.Logout(context.Background(), "not-a-jwt"))
}

func TestLogout_DeletesRefreshRecord(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	login, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.NoError(t, err)
	require.Equal(t, 1, f.tokens.countByPurpose(auth.PurposeSessionRefresh))

	require.NoError(t, f.service.Logout(context.Background(), login.Session.AccessToken))
	assert.Equal(t, 0, f.tokens.countByPurpose(auth.PurposeSessionRefresh))

	// The old refresh nonce is dead after logout.
	_, err = f.service.Refresh(context.Background(), login.Session.RefreshToken)
	assert.Error(t, err)
}

// # Password Recovery

func TestRequestReset_UnknownUser(t *testing.T) {
	f := newFixture(t)

	err := f.service.RequestReset(context.Background(), "ghost@wealthwave.app")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestRequestReset_MailFailureAbortsTokenPersistence(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)
	f.mailer.failNext = true

	err := f.service.RequestReset(context.Background(), "ada@wealthwave.app")
	require.Error(t, err)
	assert.Equal(t, 0, f.tokens.countByPurpose(auth.PurposePasswordReset))
}

func TestResetPassword_ConsumesAllOutstandingLinks(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	// Two requests: both links stay valid until one is consumed.
	require.NoError(t, f.service.RequestReset(context.Background(), "ada@wealthwave.app"))
	firstNonce := f.mailer.lastNonce()
	require.NoError(t, f.service.RequestReset(context.Background(), "ada@wealthwave.app"))
	secondNonce := f.mailer.lastNonce()
	require.NotEqual(t, firstNonce, secondNonce)
	require.Equal(t, 2, f.tokens.countByPurpose(auth.PurposePasswordReset))

	require.NoError(t, f.service.ResetPassword(context.Background(), firstNonce, "new-pass-99"))

	// The new password is live, the old one dead.
	stored := f.users.byID[user.ID]
	assert.True(t, sec.CheckPasswordHash("new-pass-99", stored.PasswordHash))
	assert.False(t, sec.CheckPasswordHash("pass1234", stored.PasswordHash))

	// Consuming one link purged every outstanding reset token.
	assert.Equal(t, 0, f.tokens.countByPurpose(auth.PurposePasswordReset))
	err := f.service.ResetPassword(context.Background(), secondNonce, "another-pass")
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired reset link", apperr.As(err).Message)
}

func TestResetPassword_ExpiredLink(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada@wealthwave.app", "pass1234")
	f.activate(t, user)

	require.NoError(t, f.service.RequestReset(context.Background(), "ada@wealthwave.app"))
	nonce := f.mailer.lastNonce()

	for _, token := range f.tokens.byID {
		if token.Purpose == auth.PurposePasswordReset {
			token.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}

	err := f.service.ResetPassword(context.Background(), nonce, "new-pass")
	require.Error(t, err)
	assert.Equal(t, 0, f.tokens.countByPurpose(auth.PurposePasswordReset))
}

// # End-to-End Scenario

func TestScenario_RegisterVerifyLogin(t *testing.T) {
	f := newFixture(t)

	// Register: PENDING, cannot log in yet.
	f.register(t, "ada@wealthwave.app", "pass1234")
	_, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.Error(t, err)

	// Confirm via the re-sent link, then log in.
	require.NoError(t, f.service.VerifyEmail(context.Background(), f.mailer.lastNonce()))

	result, err := f.service.Login(context.Background(), "ada@wealthwave.app", "pass1234")
	require.NoError(t, err)
	require.NotNil(t, result.Session)
}
