// Copyright (c) 2026 WealthWave. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthwave/api/internal/platform/sec"
)

/*
TestHashPassword verifies the hash round-trip and rejection of wrong inputs.
*/
func TestHashPassword(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}

/*
TestOAuthSentinel_NeverMatches verifies the federation sentinel can never
satisfy a password comparison — it is not a bcrypt hash at all.
*/
func TestOAuthSentinel_NeverMatches(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("oauth", sec.OAuthPasswordSentinel))
	assert.False(t, sec.CheckPasswordHash("", sec.OAuthPasswordSentinel))
	assert.False(t, sec.CheckPasswordHash("any password", sec.OAuthPasswordSentinel))
}

/*
TestGenerateNonce verifies length, hex alphabet, and uniqueness.
*/
func TestGenerateNonce(t *testing.T) {
	first, err := sec.GenerateNonce(32)
	require.NoError(t, err)
	assert.Len(t, first, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", first)

	second, err := sec.GenerateNonce(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
