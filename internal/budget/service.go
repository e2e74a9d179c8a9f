// Copyright (c) 2026 WealthWave. All rights reserved.

package budget

import (
	"context"
	"time"

	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/pkg/uuidv7"
)

// # Service

// Service implements the budget use cases. Every operation is scoped to
// the authenticated caller; ownership checks happen here, not in SQL.
type Service struct {
	budgets BudgetRepository
}

// NewService constructs a new budget [Service].
func NewService(budgets BudgetRepository) *Service {
	return &Service{budgets: budgets}
}

// BudgetInput holds the mutable fields for create and update.
type BudgetInput struct {
	Category    string
	AmountCents int64
	PeriodStart time.Time
	PeriodEnd   time.Time
	Shared      bool
}

/*
Create persists a new budget owned by the caller.

Description: When Shared is set and the caller belongs to a family, the
budget is tagged with that family and becomes visible to every member.
Shared without a family silently degrades to a personal budget.

Parameters:
  - context: context.Context
  - actorID: string
  - input: BudgetInput

Returns:
  - *Budget: Created entity
  - error: Persistence failures
*/
func (service *Service) Create(context context.Context, actorID string, input BudgetInput) (*Budget, error) {
	budget := &Budget{
		ID:          uuidv7.New(),
		UserID:      actorID,
		Category:    input.Category,
		AmountCents: input.AmountCents,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
	}

	if input.Shared {
		familyID, err := service.budgets.CallerFamilyID(context, actorID)
		if err != nil {
			return nil, err
		}
		budget.FamilyID = familyID
	}

	if err := service.budgets.Create(context, budget); err != nil {
		return nil, err
	}

	return budget, nil
}

/*
List returns every budget visible to the caller.

Parameters:
  - context: context.Context
  - actorID: string

Returns:
  - []Budget: Own budgets plus family-shared ones
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, actorID string) ([]Budget, error) {
	return service.budgets.ListVisible(context, actorID)
}

/*
Get returns one budget if the caller may see it.

Description: Non-visible budgets report NotFound rather than Forbidden so
the endpoint does not confirm the existence of other users' budgets.

Parameters:
  - context: context.Context
  - actorID: string
  - budgetID: string

Returns:
  - *Budget: Hydrated entity
  - error: NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, actorID, budgetID string) (*Budget, error) {
	budget, err := service.budgets.FindByID(context, budgetID)
	if err != nil {
		return nil, err
	}

	visible := budget.UserID == actorID
	if !visible && budget.FamilyID != nil {
		familyID, err := service.budgets.CallerFamilyID(context, actorID)
		if err == nil && familyID != nil && *familyID == *budget.FamilyID {
			visible = true
		}
	}

	if !visible {
		return nil, apperr.NotFound("Budget")
	}

	return budget, nil
}

/*
Update modifies a budget the caller owns.

Parameters:
  - context: context.Context
  - actorID: string
  - budgetID: string
  - input: BudgetInput

Returns:
  - *Budget: Updated entity
  - error: NotFound (non-owner), or persistence failures
*/
func (service *Service) Update(context context.Context, actorID, budgetID string, input BudgetInput) (*Budget, error) {
	budget, err := service.budgets.FindByID(context, budgetID)
	if err != nil {
		return nil, err
	}

	// Only the owner may modify, family members included.
	if budget.UserID != actorID {
		return nil, apperr.NotFound("Budget")
	}

	budget.Category = input.Category
	budget.AmountCents = input.AmountCents
	budget.PeriodStart = input.PeriodStart
	budget.PeriodEnd = input.PeriodEnd

	if input.Shared {
		familyID, err := service.budgets.CallerFamilyID(context, actorID)
		if err != nil {
			return nil, err
		}
		budget.FamilyID = familyID
	} else {
		budget.FamilyID = nil
	}

	if err := service.budgets.Update(context, budget); err != nil {
		return nil, err
	}

	return budget, nil
}

/*
Delete removes a budget the caller owns.

Parameters:
  - context: context.Context
  - actorID: string
  - budgetID: string

Returns:
  - error: NotFound (non-owner), or persistence failures
*/
func (service *Service) Delete(context context.Context, actorID, budgetID string) error {
	budget, err := service.budgets.FindByID(context, budgetID)
	if err != nil {
		return err
	}

	if budget.UserID != actorID {
		return apperr.NotFound("Budget")
	}

	return service.budgets.Delete(context, budget.ID)
}
