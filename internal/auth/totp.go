// Copyright (c) 2026 WealthWave. All rights reserved.

package auth

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// # Two-Factor (TOTP) Engine

// qrImageSize is the pixel edge length of the provisioning QR code.
const qrImageSize = 200

// TOTPEnrollment carries everything a client needs to provision an
// authenticator app: the raw secret for manual entry, the otpauth:// URI,
// and a scannable QR code as a PNG data URI.
type TOTPEnrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURI string `json:"otpauth_uri"`
	QRCode     string `json:"qr_code"`
}

// TOTPEngine generates and verifies time-based one-time passwords.
//
// # Parameters
//
// Standard RFC 6238 profile: 30-second step, 6 digits, SHA-1. These are the
// defaults every mainstream authenticator app expects; deviating breaks
// enrollment silently.
type TOTPEngine struct {
	issuer string
}

// NewTOTPEngine constructs a TOTP engine stamping the given issuer into
// provisioning URIs.
func NewTOTPEngine(issuer string) *TOTPEngine {
	return &TOTPEngine{issuer: issuer}
}

/*
GenerateSecret creates a fresh shared secret for an account.

Description: Produces the secret, the otpauth:// provisioning URI, and a
QR code rendered server-side so the frontend can display it without a QR
library of its own.

Parameters:
  - account: string (the user's email, shown inside the authenticator app)

Returns:
  - *TOTPEnrollment: Secret + URI + QR data URI
  - error: Generation or image encoding failures
*/
func (engine *TOTPEngine) GenerateSecret(account string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      engine.issuer,
		AccountName: account,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("totp_generate_failed: %w", err)
	}

	// Render the provisioning QR into a base64 PNG data URI.
	qrImage, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("totp_qr_image_failed: %w", err)
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, qrImage); err != nil {
		return nil, fmt.Errorf("totp_qr_encode_failed: %w", err)
	}

	return &TOTPEnrollment{
		Secret:     key.Secret(),
		OTPAuthURI: key.URL(),
		QRCode:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(buffer.Bytes()),
	}, nil
}

/*
VerifyCode checks a submitted code against the stored shared secret.

Description: Standard single-step validation with the library's default
clock skew tolerance. Codes are NOT tracked after acceptance, so the same
code verifies repeatedly within its window.

Parameters:
  - secret: string (base32 shared secret)
  - code: string (6-digit code from the authenticator app)

Returns:
  - bool: true when the code matches the current window
*/
func (engine *TOTPEngine) VerifyCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
