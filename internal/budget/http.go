// Copyright (c) 2026 WealthWave. All rights reserved.

package budget

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/wealthwave/api/internal/platform/request"
	"github.com/wealthwave/api/internal/platform/respond"
	"github.com/wealthwave/api/internal/platform/validate"
)

// # HTTP Delivery

// Handler implements the budget CRUD endpoints. The whole router is
// mounted behind the Access Guard.
type Handler struct {
	budgetService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{budgetService: service}
}

// Routes returns a [chi.Router] with the budget endpoints.
//
// # Endpoints
//   - POST   /      : Creates a budget.
//   - GET    /      : Lists budgets visible to the caller.
//   - GET    /{id}  : Returns one budget.
//   - PUT    /{id}  : Updates an owned budget.
//   - DELETE /{id}  : Deletes an owned budget.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)

	return router
}

// # Request Payloads

type budgetRequest struct {
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Shared      bool      `json:"shared"`
}

// validateBudgetRequest applies the shared create/update rules.
func validateBudgetRequest(input *budgetRequest) error {
	validator := &validate.Validator{}
	validator.Required(FieldCategory, input.Category).
		MaxLen(FieldCategory, input.Category, 50).
		Custom(FieldAmountCents, input.AmountCents <= 0, "Must be a positive amount").
		Custom(FieldPeriodStart, input.PeriodStart.IsZero(), "This field is required").
		Custom(FieldPeriodEnd, input.PeriodEnd.IsZero(), "This field is required").
		Custom(FieldPeriodEnd, !input.PeriodEnd.IsZero() && !input.PeriodEnd.After(input.PeriodStart), "Must be after period_start")

	return validator.Err()
}

// create handles POST /api/v1/budgets.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input budgetRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := validateBudgetRequest(&input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	budget, err := handler.budgetService.Create(request.Context(), userID, BudgetInput{
		Category:    input.Category,
		AmountCents: input.AmountCents,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Shared:      input.Shared,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, budget)
}

// list handles GET /api/v1/budgets.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	budgets, err := handler.budgetService.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, budgets)
}

// get handles GET /api/v1/budgets/{id}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	budgetID := requestutil.Param(request, FieldID)
	validator := &validate.Validator{}
	validator.Required(FieldID, budgetID).UUID(FieldID, budgetID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	budget, err := handler.budgetService.Get(request.Context(), userID, budgetID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, budget)
}

// update handles PUT /api/v1/budgets/{id}.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	budgetID := requestutil.Param(request, FieldID)

	var input budgetRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := validateBudgetRequest(&input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	budget, err := handler.budgetService.Update(request.Context(), userID, budgetID, BudgetInput{
		Category:    input.Category,
		AmountCents: input.AmountCents,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Shared:      input.Shared,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, budget)
}

// remove handles DELETE /api/v1/budgets/{id}.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	budgetID := requestutil.Param(request, FieldID)

	if err := handler.budgetService.Delete(request.Context(), userID, budgetID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Budget deleted",
	})
}
