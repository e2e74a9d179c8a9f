// Copyright (c) 2026 WealthWave. All rights reserved.

package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wealthwave/api/internal/platform/apperr"
	requestutil "github.com/wealthwave/api/internal/platform/request"
	"github.com/wealthwave/api/internal/platform/respond"
)

// # HTTP Delivery

// Handler implements the notification feed endpoints. Every route requires
// an authenticated session; the feed is always scoped to the caller.
type Handler struct {
	store *RedisStore
}

// NewHandler constructs a new [Handler].
func NewHandler(store *RedisStore) *Handler {
	return &Handler{store: store}
}

// Routes returns a [chi.Router] with the notification endpoints.
//
// # Endpoints
//   - GET  /           : The caller's feed, newest first.
//   - POST /{id}/read  : Marks one entry as read.
//   - POST /read_all   : Marks the whole feed as read.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/{id}/read", handler.markRead)
	router.Post("/read_all", handler.markAllRead)

	return router
}

// list handles GET /api/v1/notifications.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	feed, err := handler.store.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, feed)
}

// markRead handles POST /api/v1/notifications/{id}/read.
func (handler *Handler) markRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	notificationID := requestutil.Param(request, FieldID)
	found, err := handler.store.MarkRead(request.Context(), userID, notificationID)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	if !found {
		respond.Error(writer, request, apperr.NotFound("Notification"))
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Notification marked as read"})
}

// markAllRead handles POST /api/v1/notifications/read_all.
func (handler *Handler) markAllRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.store.MarkAllRead(request.Context(), userID); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "All notifications marked as read"})
}
