// Copyright (c) 2026 WealthWave. All rights reserved.

package family

import (
	"context"
	"fmt"
	"time"

	"github.com/wealthwave/api/internal/auth"
	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/sec"
	"github.com/wealthwave/api/pkg/uuidv7"
)

// # Contracts & Types

// InviteMailer sends family invitation emails.
type InviteMailer interface {
	SendFamilyInvite(context context.Context, recipient, familyName, nonce string) error
}

// Notifier writes best-effort in-app notifications.
type Notifier interface {
	CreateForUser(context context.Context, userID, kind, message string) error
}

// Service implements the family membership use cases.
type Service struct {
	families FamilyRepository
	members  MemberStore
	tokens   auth.TokenRepository
	mailer   InviteMailer
	notifier Notifier
}

// NewService constructs a new family [Service].
func NewService(families FamilyRepository, members MemberStore, tokens auth.TokenRepository, mailer InviteMailer, notifier Notifier) *Service {
	return &Service{
		families: families,
		members:  members,
		tokens:   tokens,
		mailer:   mailer,
		notifier: notifier,
	}
}

// # Family Lifecycle

/*
Create establishes a new family with the caller as its admin.

Description: The creator is assigned into the new group and promoted to
family_admin (platform admins keep their role).

Parameters:
  - context: context.Context
  - actorID: string (authenticated caller)
  - name: string

Returns:
  - *Family: Created group
  - error: Conflict when the caller already belongs to a family
*/
func (service *Service) Create(context context.Context, actorID, name string) (*Family, error) {
	profile, err := service.members.Profile(context, actorID)
	if err != nil {
		return nil, err
	}

	if profile.FamilyID != nil {
		return nil, apperr.Conflict("You already belong to a family")
	}

	family := &Family{
		ID:      uuidv7.New(),
		Name:    name,
		AdminID: actorID,
	}
	if err := service.families.Create(context, family); err != nil {
		return nil, err
	}

	role := sec.RoleFamilyAdmin
	if profile.Role.Matches(sec.RoleAdmin) {
		role = sec.RoleAdmin
	}
	if err := service.members.Assign(context, actorID, family.ID, role); err != nil {
		return nil, fmt.Errorf("family_service_assign_admin_failed: %w", err)
	}

	return family, nil
}

/*
Invite mails a join link to a prospective member.

Description: Mail-first ordering, same as the auth flows — the
FAMILY_INVITE token only exists once the transport accepted the message.
The token is bound to the invited email; a different account cannot
consume it.

Parameters:
  - context: context.Context
  - actorID: string (must belong to a family)
  - memberEmail: string

Returns:
  - error: Validation, mail dispatch, or storage failures
*/
func (service *Service) Invite(context context.Context, actorID, memberEmail string) error {
	profile, err := service.members.Profile(context, actorID)
	if err != nil {
		return err
	}

	if profile.FamilyID == nil {
		return apperr.ValidationError("You do not belong to a family")
	}

	family, err := service.families.FindByID(context, *profile.FamilyID)
	if err != nil {
		return err
	}

	nonce, err := sec.GenerateNonce(auth.NonceLength)
	if err != nil {
		return fmt.Errorf("family_service_invite_nonce_failed: %w", err)
	}

	if err := service.mailer.SendFamilyInvite(context, memberEmail, family.Name, nonce); err != nil {
		return apperr.External("Failed to send invitation email", err)
	}

	familyID := family.ID
	email := memberEmail
	token := &auth.Token{
		ID:          uuidv7.New(),
		Value:       nonce,
		Purpose:     auth.PurposeFamilyInvite,
		FamilyID:    &familyID,
		MemberEmail: &email,
		ExpiresAt:   time.Now().Add(auth.InviteTokenTTL),
	}
	if err := service.tokens.Create(context, token); err != nil {
		return fmt.Errorf("family_service_invite_store_failed: %w", err)
	}

	return nil
}

/*
Accept consumes an invitation link and joins the caller to the family.

Description: The invite must name the caller's own email. Acceptance
consumes EVERY outstanding invite addressed to that email, mirroring how
password reset consumes all reset links.

Parameters:
  - context: context.Context
  - actorID: string
  - nonce: string

Returns:
  - error: Validation, Forbidden (email mismatch), or Conflict failures
*/
func (service *Service) Accept(context context.Context, actorID, nonce string) error {
	invalidInvite := apperr.ValidationError("Invalid or expired invitation")

	profile, err := service.members.Profile(context, actorID)
	if err != nil {
		return err
	}

	if profile.FamilyID != nil {
		return apperr.Conflict("You already belong to a family")
	}

	token, err := service.tokens.FindByValue(context, nonce, auth.PurposeFamilyInvite)
	if err != nil || token.FamilyID == nil || token.MemberEmail == nil {
		return invalidInvite
	}

	if token.IsExpired() {
		_ = service.tokens.Delete(context, token.ID)
		return invalidInvite
	}

	if *token.MemberEmail != profile.Email {
		return apperr.Forbidden("This invitation was issued to a different email address")
	}

	if err := service.members.Assign(context, actorID, *token.FamilyID, profile.Role); err != nil {
		return fmt.Errorf("family_service_accept_assign_failed: %w", err)
	}

	// Joining consumes every invite addressed to this mailbox.
	_ = service.tokens.DeleteByMemberAndPurpose(context, profile.Email, auth.PurposeFamilyInvite)

	service.notify(context, actorID, "family", "You have joined a family on WealthWave.")

	return nil
}

/*
Leave detaches the caller from their family.

Description: The owning admin cannot leave — the group would be orphaned.

Parameters:
  - context: context.Context
  - actorID: string

Returns:
  - error: Validation or Forbidden failures
*/
func (service *Service) Leave(context context.Context, actorID string) error {
	profile, err := service.members.Profile(context, actorID)
	if err != nil {
		return err
	}

	if profile.FamilyID == nil {
		return apperr.ValidationError("You do not belong to a family")
	}

	family, err := service.families.FindByID(context, *profile.FamilyID)
	if err != nil {
		return err
	}

	if family.AdminID == actorID {
		return apperr.Forbidden("The family admin cannot leave the family")
	}

	if err := service.members.Remove(context, actorID); err != nil {
		return fmt.Errorf("family_service_leave_failed: %w", err)
	}

	return nil
}

/*
RemoveMember evicts a member from the actor's family.

Parameters:
  - context: context.Context
  - actorID: string (must share the member's family)
  - memberID: string

Returns:
  - error: Validation or Forbidden failures
*/
func (service *Service) RemoveMember(context context.Context, actorID, memberID string) error {
	actor, err := service.members.Profile(context, actorID)
	if err != nil {
		return err
	}
	if actor.FamilyID == nil {
		return apperr.ValidationError("You do not belong to a family")
	}

	member, err := service.members.Profile(context, memberID)
	if err != nil {
		return err
	}
	if member.FamilyID == nil || *member.FamilyID != *actor.FamilyID {
		return apperr.NotFound("Family member")
	}

	family, err := service.families.FindByID(context, *actor.FamilyID)
	if err != nil {
		return err
	}
	if family.AdminID == memberID {
		return apperr.Forbidden("The family admin cannot be removed")
	}

	if err := service.members.Remove(context, memberID); err != nil {
		return fmt.Errorf("family_service_remove_member_failed: %w", err)
	}

	service.notify(context, memberID, "family", "You have been removed from your family on WealthWave.")

	return nil
}

/*
Members lists the caller's family members.

Parameters:
  - context: context.Context
  - actorID: string

Returns:
  - []Member: All members, oldest account first
  - error: Validation or retrieval failures
*/
func (service *Service) Members(context context.Context, actorID string) ([]Member, error) {
	profile, err := service.members.Profile(context, actorID)
	if err != nil {
		return nil, err
	}

	if profile.FamilyID == nil {
		return nil, apperr.ValidationError("You do not belong to a family")
	}

	return service.members.ListByFamily(context, *profile.FamilyID)
}

// notify writes an in-app notification, swallowing failures.
func (service *Service) notify(context context.Context, userID, kind, message string) {
	if service.notifier == nil {
		return
	}
	_ = service.notifier.CreateForUser(context, userID, kind, message)
}
