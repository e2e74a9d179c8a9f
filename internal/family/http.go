// Copyright (c) 2026 WealthWave. All rights reserved.

package family

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/wealthwave/api/internal/platform/request"
	"github.com/wealthwave/api/internal/platform/respond"
	"github.com/wealthwave/api/internal/platform/validate"
)

// # HTTP Delivery

// Handler implements the family membership endpoints. The whole router is
// mounted behind the Access Guard; invitation and removal additionally
// require an elevated role.
type Handler struct {
	familyService *Service
	adminOnly     func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler].
//
// adminOnly is the Role Guard restricting invite/remove to family_admin
// and admin callers.
func NewHandler(service *Service, adminOnly func(http.Handler) http.Handler) *Handler {
	return &Handler{familyService: service, adminOnly: adminOnly}
}

// Routes returns a [chi.Router] with the family endpoints.
//
// # Endpoints
//   - POST   /              : Creates a family (caller becomes family_admin).
//   - GET    /members       : Lists the caller's family members.
//   - POST   /accept        : Consumes an invitation link.
//   - POST   /leave         : Detaches the caller from their family.
//   - POST   /invite        : (role-guarded) Mails an invitation.
//   - DELETE /members/{id}  : (role-guarded) Evicts a member.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/members", handler.members)
	router.Post("/accept", handler.accept)
	router.Post("/leave", handler.leave)

	router.Group(func(r chi.Router) {
		r.Use(handler.adminOnly)
		r.Post("/invite", handler.invite)
		r.Delete("/members/{id}", handler.removeMember)
	})

	return router
}

// # Request Payloads

type createFamilyRequest struct {
	Name string `json:"name"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

type acceptRequest struct {
	Nonce string `json:"nonce"`
}

// create handles POST /api/v1/families.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createFamilyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 100)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	family, err := handler.familyService.Create(request.Context(), userID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, family)
}

// members handles GET /api/v1/families/members.
func (handler *Handler) members(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	members, err := handler.familyService.Members(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, members)
}

// invite handles POST /api/v1/families/invite.
func (handler *Handler) invite(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input inviteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.familyService.Invite(request.Context(), userID, input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Invitation sent",
	})
}

// accept handles POST /api/v1/families/accept.
func (handler *Handler) accept(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input acceptRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldNonce, input.Nonce).Nonce(FieldNonce, input.Nonce)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.familyService.Accept(request.Context(), userID, input.Nonce); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Invitation accepted",
	})
}

// leave handles POST /api/v1/families/leave.
func (handler *Handler) leave(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.familyService.Leave(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "You have left the family",
	})
}

// removeMember handles DELETE /api/v1/families/members/{id}.
func (handler *Handler) removeMember(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	memberID := requestutil.Param(request, FieldID)
	validator := &validate.Validator{}
	validator.Required(FieldID, memberID).UUID(FieldID, memberID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.familyService.RemoveMember(request.Context(), userID, memberID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Member removed",
	})
}
