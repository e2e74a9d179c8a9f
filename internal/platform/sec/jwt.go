// Copyright (c) 2026 WealthWave. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [TokenProvider] interface defined by consumers.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims represents the payload embedded inside a signed access assertion.
//
// # Why custom claims?
//
// By embedding the UserID, Email, and Role directly inside the JWT, guards can
// reconstruct the caller's identity without re-reading profile columns. The
// Access Guard still performs a status lookup on every request so that
// deactivating an account takes effect before the assertion expires.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string   `json:"uid"`
	Email  string   `json:"eml"`
	Role   UserRole `json:"rol"`
}

// TokenService signs and verifies access assertions using HS256 with a
// server-side secret.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService.
//
// An empty secret is a configuration defect: every signed-token operation
// must fail closed, so construction is refused outright.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret must not be empty")
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// GenerateAccessToken creates a new signed access assertion for a user.
func (service *TokenService) GenerateAccessToken(userID, email string, role UserRole, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of an access assertion.
//
// Decoding is strict: an assertion missing any required custom claim is
// rejected rather than optimistically accepted with zero values.
func (service *TokenService) VerifyToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	if claims.UserID == "" || claims.Email == "" || !claims.Role.IsValid() {
		return nil, fmt.Errorf("sec: token claims incomplete")
	}

	return claims, nil
}

// DecodeUnverified extracts claims WITHOUT checking the signature or expiry.
//
// # Safety
//
// Only for flows where the claims merely hint at cleanup work and grant no
// authority — logout uses it to find whose refresh record to delete even
// when the access assertion has already expired. Never authenticate with it.
func (service *TokenService) DecodeUnverified(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("sec: undecodable token: %w", err)
	}
	return claims, nil
}
