// Copyright (c) 2026 WealthWave. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthwave/api/internal/platform/sec"
)

const testSecret = "unit-test-signing-secret"

func newService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, "wealthwave.app")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_EmptySecret verifies construction fails closed without a
signing secret.
*/
func TestTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "wealthwave.app")
	assert.Error(t, err)
}

/*
TestTokenService_RoundTrip signs an assertion and verifies every claim
survives the trip.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newService(t)

	signed, err := service.GenerateAccessToken("user-1", "ada@wealthwave.app", sec.RoleUser, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := service.VerifyToken(signed)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@wealthwave.app", claims.Email)
	assert.Equal(t, sec.RoleUser, claims.Role)
	assert.Equal(t, "wealthwave.app", claims.Issuer)
	assert.Equal(t, "user-1", claims.Subject)
}

/*
TestTokenService_WrongSecret verifies a token signed elsewhere is rejected.
*/
func TestTokenService_WrongSecret(t *testing.T) {
	other, err := sec.NewTokenService("a-different-secret", "wealthwave.app")
	require.NoError(t, err)

	signed, err := other.GenerateAccessToken("user-1", "ada@wealthwave.app", sec.RoleUser, time.Hour)
	require.NoError(t, err)

	service := newService(t)
	_, err = service.VerifyToken(signed)
	assert.Error(t, err)
}

/*
TestTokenService_Tampered flips a payload byte and expects rejection.
*/
func TestTokenService_Tampered(t *testing.T) {
	service := newService(t)

	signed, err := service.GenerateAccessToken("user-1", "ada@wealthwave.app", sec.RoleUser, time.Hour)
	require.NoError(t, err)

	tampered := []byte(signed)
	middle := len(tampered) / 2
	if tampered[middle] == 'a' {
		tampered[middle] = 'b'
	} else {
		tampered[middle] = 'a'
	}

	_, err = service.VerifyToken(string(tampered))
	assert.Error(t, err)
}

/*
TestTokenService_Expired verifies assertions past their TTL are rejected.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newService(t)

	signed, err := service.GenerateAccessToken("user-1", "ada@wealthwave.app", sec.RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(signed)
	assert.Error(t, err)
}

/*
TestTokenService_IncompleteClaims verifies that strict decoding rejects
assertions missing required custom claims.
*/
func TestTokenService_IncompleteClaims(t *testing.T) {
	service := newService(t)

	tests := []struct {
		name   string
		userID string
		email  string
		role   sec.UserRole
	}{
		{"missing_user_id", "", "ada@wealthwave.app", sec.RoleUser},
		{"missing_email", "user-1", "", sec.RoleUser},
		{"invalid_role", "user-1", "ada@wealthwave.app", "superuser"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := service.GenerateAccessToken(tt.userID, tt.email, tt.role, time.Hour)
			require.NoError(t, err)

			_, err = service.VerifyToken(signed)
			assert.Error(t, err)
		})
	}
}

/*
TestTokenService_DecodeUnverified verifies expired assertions still yield
their claims without verification — the logout cleanup path.
*/
func TestTokenService_DecodeUnverified(t *testing.T) {
	service := newService(t)

	signed, err := service.GenerateAccessToken("user-1", "ada@wealthwave.app", sec.RoleUser, -time.Minute)
	require.NoError(t, err)

	// Strict verification refuses the expired assertion...
	_, err = service.VerifyToken(signed)
	require.Error(t, err)

	// ...but the unverified decode still names the user.
	claims, err := service.DecodeUnverified(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	// Garbage input is still an error.
	_, err = service.DecodeUnverified("not-a-jwt")
	assert.Error(t, err)
}
