// Copyright (c) 2026 WealthWave. All rights reserved.

package budget_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthwave/api/internal/budget"
	"github.com/wealthwave/api/internal/platform/apperr"
)

// memoryBudgets implements budget.BudgetRepository with a map plus a
// user→family assignment table standing in for users.account.
type memoryBudgets struct {
	byID       map[string]*budget.Budget
	familyByID map[string]*string
}

func newMemoryBudgets() *memoryBudgets {
	return &memoryBudgets{
		byID:       make(map[string]*budget.Budget),
		familyByID: make(map[string]*string),
	}
}

func (m *memoryBudgets) Create(_ context.Context, b *budget.Budget) error {
	copied := *b
	m.byID[b.ID] = &copied
	return nil
}

func (m *memoryBudgets) FindByID(_ context.Context, id string) (*budget.Budget, error) {
	if b, ok := m.byID[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, apperr.NotFound("Budget")
}

func (m *memoryBudgets) ListVisible(_ context.Context, userID string) ([]budget.Budget, error) {
	callerFamily := m.familyByID[userID]
	visible := make([]budget.Budget, 0)
	for _, b := range m.byID {
		owned := b.UserID == userID
		shared := b.FamilyID != nil && callerFamily != nil && *b.FamilyID == *callerFamily
		if owned || shared {
			visible = append(visible, *b)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].PeriodStart.After(visible[j].PeriodStart)
	})
	return visible, nil
}

func (m *memoryBudgets) Update(_ context.Context, b *budget.Budget) error {
	copied := *b
	m.byID[b.ID] = &copied
	return nil
}

func (m *memoryBudgets) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memoryBudgets) CallerFamilyID(_ context.Context, userID string) (*string, error) {
	return m.familyByID[userID], nil
}

func monthInput(shared bool) budget.BudgetInput {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return budget.BudgetInput{
		Category:    "groceries",
		AmountCents: 50_000,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 1, 0),
		Shared:      shared,
	}
}

func TestCreate_PersonalBudget(t *testing.T) {
	store := newMemoryBudgets()
	service := budget.NewService(store)

	created, err := service.Create(context.Background(), "ada", monthInput(false))
	require.NoError(t, err)

	assert.Equal(t, "ada", created.UserID)
	assert.Nil(t, created.FamilyID)
	assert.Equal(t, int64(50_000), created.AmountCents)
}

func TestCreate_SharedTagsCallerFamily(t *testing.T) {
	store := newMemoryBudgets()
	familyID := "fam-1"
	store.familyByID["ada"] = &familyID
	service := budget.NewService(store)

	created, err := service.Create(context.Background(), "ada", monthInput(true))
	require.NoError(t, err)

	require.NotNil(t, created.FamilyID)
	assert.Equal(t, "fam-1", *created.FamilyID)
}

func TestCreate_SharedWithoutFamilyDegrades(t *testing.T) {
	store := newMemoryBudgets()
	service := budget.NewService(store)

	created, err := service.Create(context.Background(), "ada", monthInput(true))
	require.NoError(t, err)

	// Shared without a family silently becomes personal.
	assert.Nil(t, created.FamilyID)
}

func TestGet_FamilyVisibility(t *testing.T) {
	store := newMemoryBudgets()
	familyID := "fam-1"
	store.familyByID["ada"] = &familyID
	store.familyByID["bob"] = &familyID
	service := budget.NewService(store)

	shared, err := service.Create(context.Background(), "ada", monthInput(true))
	require.NoError(t, err)
	personal, err := service.Create(context.Background(), "ada", monthInput(false))
	require.NoError(t, err)

	// A family member sees the shared budget...
	got, err := service.Get(context.Background(), "bob", shared.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.ID, got.ID)

	// ...but not the personal one; existence is not confirmed.
	_, err = service.Get(context.Background(), "bob", personal.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// A stranger sees neither.
	_, err = service.Get(context.Background(), "eve", shared.ID)
	require.Error(t, err)
}

func TestList_OwnPlusShared(t *testing.T) {
	store := newMemoryBudgets()
	familyID := "fam-1"
	store.familyByID["ada"] = &familyID
	store.familyByID["bob"] = &familyID
	service := budget.NewService(store)

	_, err := service.Create(context.Background(), "ada", monthInput(true))
	require.NoError(t, err)
	_, err = service.Create(context.Background(), "ada", monthInput(false))
	require.NoError(t, err)
	_, err = service.Create(context.Background(), "bob", monthInput(false))
	require.NoError(t, err)

	adaVisible, err := service.List(context.Background(), "ada")
	require.NoError(t, err)
	assert.Len(t, adaVisible, 2)

	bobVisible, err := service.List(context.Background(), "bob")
	require.NoError(t, err)
	assert.Len(t, bobVisible, 2)

	eveVisible, err := service.List(context.Background(), "eve")
	require.NoError(t, err)
	assert.Empty(t, eveVisible)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	store := newMemoryBudgets()
	familyID := "fam-1"
	store.familyByID["ada"] = &familyID
	store.familyByID["bob"] = &familyID
	service := budget.NewService(store)

	shared, err := service.Create(context.Background(), "ada", monthInput(true))
	require.NoError(t, err)

	// A family member can see but not modify.
	_, err = service.Update(context.Background(), "bob", shared.ID, monthInput(true))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// The owner can unshare; the family tag is dropped.
	updated, err := service.Update(context.Background(), "ada", shared.ID, monthInput(false))
	require.NoError(t, err)
	assert.Nil(t, updated.FamilyID)
}

func TestDelete_OwnerOnly(t *testing.T) {
	store := newMemoryBudgets()
	service := budget.NewService(store)

	created, err := service.Create(context.Background(), "ada", monthInput(false))
	require.NoError(t, err)

	err = service.Delete(context.Background(), "bob", created.ID)
	require.Error(t, err)

	require.NoError(t, service.Delete(context.Background(), "ada", created.ID))
	_, err = store.FindByID(context.Background(), created.ID)
	assert.Error(t, err)
}
