// Copyright (c) 2026 WealthWave. All rights reserved.

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// OAuthPasswordSentinel is stored in place of a password hash for accounts
// created through OAuth federation. It can never match a bcrypt comparison,
// so federated accounts cannot be logged into with a password.
const OAuthPasswordSentinel = "oauth"

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
// bcrypt performs the comparison in constant time.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// GenerateNonce returns a cryptographically random hex string of the given
// byte length. A 32-byte nonce yields 64 hex characters.
func GenerateNonce(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}
