// Copyright (c) 2026 WealthWave. All rights reserved.

/*
Package budget implements per-category spending budgets.

Budgets belong to a user; a budget may additionally be shared with the
owner's family, in which case every family member can see it. Only the
owner can modify or delete a budget.
*/
package budget

import (
	"time"
)

// # Domain Entities

// Budget caps spending for one category over one period. Amounts are
// stored in cents to avoid floating-point money.
type Budget struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FamilyID    *string   `json:"family_id,omitempty"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldID          = "id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldPeriodStart = "period_start"
	FieldPeriodEnd   = "period_end"
	FieldMessage     = "message"
)
