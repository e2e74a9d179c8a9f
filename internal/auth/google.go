// Copyright (c) 2026 WealthWave. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// # Google Federation

// googleUserInfoURL is the OpenID Connect userinfo endpoint.
const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// IdentityAssertion is the provider-verified identity extracted from a
// successful OAuth exchange.
type IdentityAssertion struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
}

// IsUsable reports whether the assertion identifies a concrete, verified
// mailbox. Federated accounts are looked up by email, so an unverified or
// empty email must never mint a session.
func (assertion *IdentityAssertion) IsUsable() bool {
	return assertion.Subject != "" && assertion.Email != "" && assertion.EmailVerified
}

// IdentityProvider defines the contract for exchanging an authorization code
// for a verified identity. Abstracted so service tests can substitute a fake
// provider without network access.
type IdentityProvider interface {
	Exchange(context context.Context, code string) (*IdentityAssertion, error)
}

// GoogleVerifier implements [IdentityProvider] against Google's OAuth 2.0
// endpoints.
type GoogleVerifier struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleVerifier constructs a verifier from the configured client
// credentials.
func NewGoogleVerifier(clientID, clientSecret, redirectURL string) *GoogleVerifier {
	return &GoogleVerifier{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

/*
Exchange swaps an authorization code for a verified identity assertion.

Description: Two upstream round trips — the code/token exchange, then the
userinfo fetch with the obtained access token. Any failure on either trip
surfaces as an error; claim-level problems (missing subject, unverified
email) are left to the caller via [IdentityAssertion.IsUsable].

Parameters:
  - context: context.Context
  - code: string (authorization code from the OAuth redirect)

Returns:
  - *IdentityAssertion: Provider-verified identity claims
  - error: Provider communication or decode failures
*/
func (verifier *GoogleVerifier) Exchange(context context.Context, code string) (*IdentityAssertion, error) {
	token, err := verifier.config.Exchange(context, code)
	if err != nil {
		return nil, fmt.Errorf("google_exchange_failed: %w", err)
	}

	// Fetch the userinfo document with the provider-issued access token.
	client := verifier.config.Client(context, token)
	response, err := client.Get(verifier.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google_userinfo_request_failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google_userinfo_status_%d", response.StatusCode)
	}

	assertion := &IdentityAssertion{}
	if err := json.NewDecoder(response.Body).Decode(assertion); err != nil {
		return nil, fmt.Errorf("google_userinfo_decode_failed: %w", err)
	}

	return assertion, nil
}
