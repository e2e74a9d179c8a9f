// Copyright (c) 2026 WealthWave. All rights reserved.

package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wealthwave/api/internal/platform/apperr"
)

// # Budget Repository

// PostgresBudgetRepository implements [BudgetRepository] using pgx.
type PostgresBudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new PostgreSQL implementation of [BudgetRepository].
func NewBudgetRepository(pool *pgxpool.Pool) *PostgresBudgetRepository {
	return &PostgresBudgetRepository{pool: pool}
}

const budgetColumns = `id, userid, familyid, category, amountcents, periodstart, periodend, createdat, updatedat`

// scanBudget hydrates a Budget from a row using the budgetColumns ordering.
func scanBudget(row pgx.Row) (*Budget, error) {
	budget := &Budget{}
	err := row.Scan(
		&budget.ID,
		&budget.UserID,
		&budget.FamilyID,
		&budget.Category,
		&budget.AmountCents,
		&budget.PeriodStart,
		&budget.PeriodEnd,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return budget, nil
}

/*
Create persists a new budget into the core.budget table.

Parameters:
  - context: context.Context
  - budget: *Budget

Returns:
  - error: Persistence failures
*/
func (repository *PostgresBudgetRepository) Create(context context.Context, budget *Budget) error {
	const query = `
		INSERT INTO core.budget (
			id, userid, familyid, category, amountcents, periodstart, periodend, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = now
	}
	budget.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		budget.ID,
		budget.UserID,
		budget.FamilyID,
		budget.Category,
		budget.AmountCents,
		budget.PeriodStart,
		budget.PeriodEnd,
		budget.CreatedAt,
		budget.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_budget_repo_create_failed: %w", err)
	}
	return nil
}

/*
FindByID retrieves a budget by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Budget: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresBudgetRepository) FindByID(context context.Context, id string) (*Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM core.budget WHERE id = $1`

	budget, err := scanBudget(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Budget")
		}
		return nil, fmt.Errorf("postgres_budget_repo_find_failed: %w", err)
	}

	return budget, nil
}

/*
ListVisible returns budgets the user owns plus family-shared budgets.

Description: Family visibility resolves in SQL against the caller's own
account row, so a user outside any family only sees their own budgets.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Budget: Visible budgets, newest period first
  - error: Execution errors
*/
func (repository *PostgresBudgetRepository) ListVisible(context context.Context, userID string) ([]Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM core.budget
		WHERE userid = $1
		   OR (familyid IS NOT NULL
		       AND familyid = (SELECT familyid FROM users.account WHERE id = $1))
		ORDER BY periodstart DESC, createdat DESC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_budget_repo_list_failed: %w", err)
	}
	defer rows.Close()

	budgets := make([]Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_budget_repo_scan_failed: %w", err)
		}
		budgets = append(budgets, *budget)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_budget_repo_rows_failed: %w", err)
	}

	return budgets, nil
}

/*
Update persists changes to a budget's mutable fields.

Parameters:
  - context: context.Context
  - budget: *Budget

Returns:
  - error: Execution errors
*/
func (repository *PostgresBudgetRepository) Update(context context.Context, budget *Budget) error {
	const query = `
		UPDATE core.budget
		SET category = $2, amountcents = $3, periodstart = $4, periodend = $5,
		    familyid = $6, updatedat = $7
		WHERE id = $1`

	budget.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		budget.ID,
		budget.Category,
		budget.AmountCents,
		budget.PeriodStart,
		budget.PeriodEnd,
		budget.FamilyID,
		budget.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_budget_repo_update_failed: %w", err)
	}
	return nil
}

/*
Delete removes a budget by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresBudgetRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM core.budget WHERE id = $1`

	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_budget_repo_delete_failed: %w", err)
	}
	return nil
}

/*
CallerFamilyID returns the family the user belongs to, or nil.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *string: Family ID, nil when the user has none
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresBudgetRepository) CallerFamilyID(context context.Context, userID string) (*string, error) {
	const query = `SELECT familyid FROM users.account WHERE id = $1`

	var familyID *string
	err := repository.pool.QueryRow(context, query, userID).Scan(&familyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_budget_repo_family_failed: %w", err)
	}

	return familyID, nil
}
