// Copyright (c) 2026 WealthWave. All rights reserved.

/*
Package mail provides the outbound email transport for WealthWave.

It sends the transactional messages the identity flows depend on: account
confirmation links, password reset links, and family invitations.

# Architecture

  - Sender: The narrow interface domain services consume.
  - SMTPSender: The production implementation over wneessen/go-mail.
  - Links: Built from the configured frontend origin; the backend never
    renders pages, it only mails deep links into the client app.
*/
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// # Contracts

// Sender defines the transactional messages the platform can dispatch.
type Sender interface {
	// SendVerification emails the account confirmation link.
	SendVerification(context context.Context, recipient, name, nonce string) error

	// SendPasswordReset emails the password recovery link.
	SendPasswordReset(context context.Context, recipient, name, nonce string) error

	// SendFamilyInvite emails a family invitation link.
	SendFamilyInvite(context context.Context, recipient, familyName, nonce string) error
}

// # SMTP Implementation

// SMTPConfig holds the transport settings for [NewSMTPSender].
type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	ClientBaseURL string
}

// SMTPSender implements [Sender] over an authenticated SMTP connection.
type SMTPSender struct {
	client        *gomail.Client
	from          string
	clientBaseURL string
}

// NewSMTPSender constructs the production mail transport.
//
// TLS is opportunistic: STARTTLS when the server offers it, which covers
// both production relays and local development catchers like Mailpit.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("mail: failed to create SMTP client: %w", err)
	}

	return &SMTPSender{
		client:        client,
		from:          cfg.From,
		clientBaseURL: cfg.ClientBaseURL,
	}, nil
}

/*
SendVerification emails the account confirmation link.

Parameters:
  - context: context.Context
  - recipient: string (destination mailbox)
  - name: string (display name used in the greeting)
  - nonce: string (opaque confirmation token)

Returns:
  - error: Transport or dial failures
*/
func (sender *SMTPSender) SendVerification(context context.Context, recipient, name, nonce string) error {
	link := fmt.Sprintf("%s/verify-email?nonce=%s", sender.clientBaseURL, nonce)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Welcome to WealthWave! Please confirm your email address by clicking the link below:</p>
<p><a href="%s">Confirm my email</a></p>
<p>This link expires in 24 hours. If you did not create an account, you can ignore this message.</p>`,
		name, link,
	)

	return sender.send(context, recipient, "Confirm your WealthWave account", body)
}

/*
SendPasswordReset emails the password recovery link.

Parameters:
  - context: context.Context
  - recipient: string
  - name: string
  - nonce: string (opaque reset token)

Returns:
  - error: Transport or dial failures
*/
func (sender *SMTPSender) SendPasswordReset(context context.Context, recipient, name, nonce string) error {
	link := fmt.Sprintf("%s/reset-password?nonce=%s", sender.clientBaseURL, nonce)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We received a request to reset your WealthWave password. Click the link below to choose a new one:</p>
<p><a href="%s">Reset my password</a></p>
<p>This link expires in 24 hours. If you did not request a reset, you can ignore this message.</p>`,
		name, link,
	)

	return sender.send(context, recipient, "Reset your WealthWave password", body)
}

/*
SendFamilyInvite emails a family invitation link.

Parameters:
  - context: context.Context
  - recipient: string (invited member's mailbox)
  - familyName: string
  - nonce: string (opaque invite token)

Returns:
  - error: Transport or dial failures
*/
func (sender *SMTPSender) SendFamilyInvite(context context.Context, recipient, familyName, nonce string) error {
	link := fmt.Sprintf("%s/family/accept?nonce=%s", sender.clientBaseURL, nonce)
	body := fmt.Sprintf(
		`<p>Hello,</p>
<p>You have been invited to join the <strong>%s</strong> family on WealthWave.</p>
<p><a href="%s">Accept the invitation</a></p>
<p>This invitation expires in 7 days.</p>`,
		familyName, link,
	)

	return sender.send(context, recipient, "You've been invited to a WealthWave family", body)
}

// send builds and dispatches a single HTML message.
func (sender *SMTPSender) send(context context.Context, recipient, subject, htmlBody string) error {
	message := gomail.NewMsg()

	if err := message.From(sender.from); err != nil {
		return fmt.Errorf("mail: invalid sender address: %w", err)
	}
	if err := message.To(recipient); err != nil {
		return fmt.Errorf("mail: invalid recipient address: %w", err)
	}

	message.Subject(subject)
	message.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := sender.client.DialAndSendWithContext(context, message); err != nil {
		return fmt.Errorf("mail: dispatch failed: %w", err)
	}

	return nil
}
