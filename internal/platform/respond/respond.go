// Copyright (c) 2026 WealthWave. All rights reserved.

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every response (Success or Error) across the entire application follows the
// WealthWave envelope:
//
//	{ "data": T|null, "meta": { "timestamp": ... }, "errors": [{message, code?}]|null }
//
// Success responses carry errors=null; failures carry data=null and a
// non-empty errors array. Unlike the legacy behavior of always answering
// HTTP 200, failures are mapped to real status codes while the body shape
// stays compatible for existing clients.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/wealthwave/api/internal/platform/apperr"
	"github.com/wealthwave/api/internal/platform/ctxkey"
)

// Meta carries response metadata. Timestamp is present on every response.
type Meta struct {
	Timestamp string `json:"timestamp"`
}

// ErrorItem is a single entry in the envelope's errors array.
type ErrorItem struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// Envelope is the uniform JSON body for all API responses.
type Envelope struct {
	Data   interface{} `json:"data"`
	Meta   Meta        `json:"meta"`
	Errors []ErrorItem `json:"errors"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard envelope.
func OK(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusOK, Envelope{Data: data, Meta: newMeta()})
}

// Created writes a 201 Created response with data wrapped in the standard envelope.
func Created(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusCreated, Envelope{Data: data, Meta: newMeta()})
}

// Message writes a 200 OK response whose data is a plain human-readable string.
func Message(writer http.ResponseWriter, message string) {
	OK(writer, message)
}

// Error converts any Go error into a standardized envelope error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", getRequestIDFromContext(request)),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", getRequestIDFromContext(request)),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, Envelope{
		Meta: newMeta(),
		Errors: []ErrorItem{{
			Message: appError.Message,
			Code:    appError.Code,
			Details: appError.Details,
		}},
	})
}

// newMeta stamps the envelope with the current UTC time in RFC 3339 format.
func newMeta() Meta {
	return Meta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// getLoggerFromContext extracts the per-request logger.
func getLoggerFromContext(request *http.Request) *slog.Logger {
	if logger, ok := request.Context().Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// getRequestIDFromContext extracts the X-Request-ID for log correlation.
func getRequestIDFromContext(request *http.Request) string {
	if id, ok := request.Context().Value(ctxkey.KeyRequestID).(string); ok {
		return id
	}
	return ""
}
