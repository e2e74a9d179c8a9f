// Copyright (c) 2026 WealthWave. All rights reserved.

package family_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthwave/api/internal/auth"
	"github.com/wealthwave/api/internal/family"
	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/sec"
	"github.com/wealthwave/api/pkg/uuidv7"
)

// # In-Memory Fakes

type memoryFamilies struct {
	byID map[string]*family.Family
}

func newMemoryFamilies() *memoryFamilies {
	return &memoryFamilies{byID: make(map[string]*family.Family)}
}

func (m *memoryFamilies) Create(_ context.Context, f *family.Family) error {
	copied := *f
	m.byID[f.ID] = &copied
	return nil
}

func (m *memoryFamilies) FindByID(_ context.Context, id string) (*family.Family, error) {
	if f, ok := m.byID[id]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, apperr.NotFound("Family")
}

type memoryMembers struct {
	byID map[string]*family.Profile
}

func newMemoryMembers() *memoryMembers {
	return &memoryMembers{byID: make(map[string]*family.Profile)}
}

func (m *memoryMembers) add(email string, role sec.UserRole) string {
	id := uuidv7.New()
	m.byID[id] = &family.Profile{ID: id, Email: email, Name: email, Role: role}
	return id
}

func (m *memoryMembers) Profile(_ context.Context, userID string) (*family.Profile, error) {
	if profile, ok := m.byID[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryMembers) Assign(_ context.Context, userID, familyID string, role sec.UserRole) error {
	profile, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	id := familyID
	profile.FamilyID = &id
	profile.Role = role
	return nil
}

func (m *memoryMembers) Remove(_ context.Context, userID string) error {
	profile, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	profile.FamilyID = nil
	if profile.Role.Matches(sec.RoleFamilyAdmin) {
		profile.Role = sec.RoleUser
	}
	return nil
}

func (m *memoryMembers) ListByFamily(_ context.Context, familyID string) ([]family.Member, error) {
	members := make([]family.Member, 0)
	for _, profile := range m.byID {
		if profile.FamilyID != nil && *profile.FamilyID == familyID {
			members = append(members, family.Member{
				ID:    profile.ID,
				Email: profile.Email,
				Name:  profile.Name,
				Role:  profile.Role,
			})
		}
	}
	return members, nil
}

// memoryTokens implements the subset of auth.TokenRepository invitations use.
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

func (m *memoryTokens) FindByUserAndPurpose(_ context.Context, _ string, _ auth.TokenPurpose) (*auth.Token, error) {
	return nil, apperr.NotFound("Token")
}

func (m *memoryTokens) UpsertRefresh(_ context.Context, token *auth.Token) error {
	return m.Create(context.Background(), token)
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

type fakeInviteMailer struct {
	sentNonces []string
	failNext   bool
}

func (f *fakeInviteMailer) SendFamilyInvite(_ context.Context, _, _, nonce string) error {
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("smtp unreachable")
	}
	f.sentNonces = append(f.sentNonces, nonce)
	return nil
}

func (f *fakeInviteMailer) lastNonce() string {
	if len(f.sentNonces) == 0 {
		return ""
	}
	return f.sentNonces[len(f.sentNonces)-1]
}

// # Fixture

type fixture struct {
	families *memoryFamilies
	members  *memoryMembers
	tokens   *memoryTokens
	mailer   *fakeInviteMailer
	service  *family.Service
}

func newFixture() *fixture {
	families := newMemoryFamilies()
	members := newMemoryMembers()
	tokens := newMemoryTokens()
	mailer := &fakeInviteMailer{}

	return &fixture{
		families: families,
		members:  members,
		tokens:   tokens,
		mailer:   mailer,
		service:  family.NewService(families, members, tokens, mailer, nil),
	}
}

// # Tests

func TestCreate_PromotesCreatorToFamilyAdmin(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)

	created, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)
	assert.Equal(t, adaID, created.AdminID)

	profile := f.members.byID[adaID]
	require.NotNil(t, profile.FamilyID)
	assert.Equal(t, created.ID, *profile.FamilyID)
	assert.Equal(t, sec.RoleFamilyAdmin, profile.Role)
}

func TestCreate_PlatformAdminKeepsRole(t *testing.T) {
	f := newFixture()
	rootID := f.members.add("root@wealthwave.app", sec.RoleAdmin)

	_, err := f.service.Create(context.Background(), rootID, "Ops")
	require.NoError(t, err)

	assert.Equal(t, sec.RoleAdmin, f.members.byID[rootID].Role)
}

func TestCreate_AlreadyInFamily(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	_, err := f.service.Create(context.Background(), adaID, "First")
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), adaID, "Second")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestInvite_MailFirstOrdering(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	_, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)

	f.mailer.failNext = true
	err = f.service.Invite(context.Background(), adaID, "bob@wealthwave.app")
	require.Error(t, err)
	assert.Equal(t, "EXTERNAL_SERVICE", apperr.As(err).Code)
	assert.Empty(t, f.tokens.byID)

	require.NoError(t, f.service.Invite(context.Background(), adaID, "bob@wealthwave.app"))
	assert.Len(t, f.tokens.byID, 1)
}

func TestAccept_JoinsAndConsumesAllInvites(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	bobID := f.members.add("bob@wealthwave.app", sec.RoleUser)
	created, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)

	// Two outstanding invites to the same mailbox.
	require.NoError(t, f.service.Invite(context.Background(), adaID, "bob@wealthwave.app"))
	firstNonce := f.mailer.lastNonce()
	require.NoError(t, f.service.Invite(context.Background(), adaID, "bob@wealthwave.app"))

	require.NoError(t, f.service.Accept(context.Background(), bobID, firstNonce))

	profile := f.members.byID[bobID]
	require.NotNil(t, profile.FamilyID)
	assert.Equal(t, created.ID, *profile.FamilyID)
	// Joining keeps the member's role.
	assert.Equal(t, sec.RoleUser, profile.Role)

	// Accepting one invite consumed every invite to that address.
	assert.Empty(t, f.tokens.byID)
}

func TestAccept_EmailMismatch(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	eveID := f.members.add("eve@wealthwave.app", sec.RoleUser)
	_, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)

	require.NoError(t, f.service.Invite(context.Background(), adaID, "bob@wealthwave.app"))

	// Eve holds the link but the invite names Bob's mailbox.
	err = f.service.Accept(context.Background(), eveID, f.mailer.lastNonce())
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestAccept_ExpiredInvite(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	bobID := f.members.add("bob@wealthwave.app", sec.RoleUser)
	_, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)

	require.NoError(t, f.service.Invite(context.Background(), adaID, "bob@wealthwave.app"))
	for _, token := range f.tokens.byID {
		token.ExpiresAt = time.Now().Add(-time.Minute)
	}

	err = f.service.Accept(context.Background(), bobID, f.mailer.lastNonce())
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired invitation", apperr.As(err).Message)
	assert.Empty(t, f.tokens.byID)
}

func TestLeave_AdminCannotLeave(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	_, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)

	err = f.service.Leave(context.Background(), adaID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestLeave_MemberDetachesAndDemotes(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	bobID := f.members.add("bob@wealthwave.app", sec.RoleUser)
	_, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)

	require.NoError(t, f.service.Invite(context.Background(), adaID, "bob@wealthwave.app"))
	require.NoError(t, f.service.Accept(context.Background(), bobID, f.mailer.lastNonce()))

	require.NoError(t, f.service.Leave(context.Background(), bobID))
	assert.Nil(t, f.members.byID[bobID].FamilyID)
}

func TestRemoveMember(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	bobID := f.members.add("bob@wealthwave.app", sec.RoleUser)
	strangerID := f.members.add("eve@wealthwave.app", sec.RoleUser)
	_, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)

	require.NoError(t, f.service.Invite(context.Background(), adaID, "bob@wealthwave.app"))
	require.NoError(t, f.service.Accept(context.Background(), bobID, f.mailer.lastNonce()))

	// A user outside the family is not a removable member.
	err = f.service.RemoveMember(context.Background(), adaID, strangerID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// The owning admin cannot be evicted.
	err = f.service.RemoveMember(context.Background(), bobID, adaID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// Eviction detaches the member.
	require.NoError(t, f.service.RemoveMember(context.Background(), adaID, bobID))
	assert.Nil(t, f.members.byID[bobID].FamilyID)
}

func TestMembers(t *testing.T) {
	f := newFixture()
	adaID := f.members.add("ada@wealthwave.app", sec.RoleUser)
	bobID := f.members.add("bob@wealthwave.app", sec.RoleUser)
	_, err := f.service.Create(context.Background(), adaID, "The Lovelaces")
	require.NoError(t, err)

	require.NoError(t, f.service.Invite(context.Background(), adaID, "bob@wealthwave.app"))
	require.NoError(t, f.service.Accept(context.Background(), bobID, f.mailer.lastNonce()))

	members, err := f.service.Members(context.Background(), adaID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// Outsiders have no member list.
	outsiderID := f.members.add("eve@wealthwave.app", sec.RoleUser)
	_, err = f.service.Members(context.Background(), outsiderID)
	require.Error(t, err)
}
