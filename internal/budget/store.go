// Copyright (c) 2026 WealthWave. All rights reserved.

package budget

import (
	"context"
)

// # Budget Data Access

// BudgetRepository defines the data access contract for budgets.
type BudgetRepository interface {

	/*
		Create persists a new budget.

		Parameters:
		  - context: context.Context
		  - budget: *Budget

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, budget *Budget) error

	/*
		FindByID returns the budget with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Budget: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Budget, error)

	/*
		ListVisible returns every budget the user can see: their own plus
		any budget shared with their family.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []Budget: Visible budgets, newest period first
		  - error: Database retrieval failures
	*/
	ListVisible(context context.Context, userID string) ([]Budget, error)

	/*
		Update persists changes to a budget's mutable fields.

		Parameters:
		  - context: context.Context
		  - budget: *Budget

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, budget *Budget) error

	/*
		Delete removes a budget by ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		CallerFamilyID returns the family the user belongs to, or nil.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *string: Family ID, nil when the user has none
		  - error: Database retrieval failures
	*/
	CallerFamilyID(context context.Context, userID string) (*string, error)
}
