package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zapponejosh/liuren-api/internal/apperr"
	"github.com/zapponejosh/liuren-api/internal/database"
	"github.com/zapponejosh/liuren-api/internal/logger"
)

// Response represents a standard API response.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// WriteCreated writes a 201 response.
func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, status int, message string, code ...string) error {
	errInfo := ErrorInfo{
		Message: message,
	}
	if len(code) > 0 {
		errInfo.Code = code[0]
	}

	return WriteJSON(w, status, Response{
		Success: false,
		Error:   &errInfo,
	})
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusNotFound, message, "NOT_FOUND")
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message, "BAD_REQUEST")
}

// WriteLookupMiss writes a 422 response for names missing from a table or dictionary.
func WriteLookupMiss(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusUnprocessableEntity, message, "LOOKUP_MISS")
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusUnauthorized, message, "UNAUTHORIZED")
}

// WriteServiceError maps an error kind to its HTTP status. Caller mistakes
// echo the error text; anything else is logged and hidden.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperr.IsInvalidArgument(err):
		WriteBadRequest(w, err.Error())
	case apperr.IsLookupMiss(err):
		WriteLookupMiss(w, err.Error())
	case database.IsNotFound(err):
		WriteNotFound(w, "Resource not found")
	case errors.Is(err, apperr.ErrInvalidConfiguration):
		logger.Error(r.Context(), "service misconfigured", err, slog.String("path", r.URL.Path))
		WriteError(w, http.StatusServiceUnavailable, "Service not configured for this request", "UNAVAILABLE")
	default:
		logger.Error(r.Context(), "request failed", err, slog.String("path", r.URL.Path))
		WriteInternalError(w, "Internal server error")
	}
}
