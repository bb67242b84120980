// Package handler contains the HTTP handlers of the practice tracker API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (path params, query, JSON body)
//  2. Call a service with the request context (which carries the identity)
//  3. Write the HTTP response (status code, headers, body)
//
// Handlers hold no business rules and do no authorization themselves: the
// services call auth.RequireUser and the handler only maps the error.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/practice-tracker/internal/apperror"
)

// maxBodyBytes caps request bodies. Submitted code is at most 100 kB, so this
// leaves room for the rest of a session payload.
const maxBodyBytes = 1 << 20

// ErrorResponse is the error body of every endpoint:
//
//	{"kind": "not_found", "message": "project not found with id abc123"}
type ErrorResponse struct {
	Kind    string `json:"kind"`            // machine-readable, from apperror.Kind
	Message string `json:"message"`         // human-readable
	Field   string `json:"field,omitempty"` // offending input field, if any
}

// writeJSON sends data with the given status code. Headers must be set
// before WriteHeader; anything set after is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind string) int {
	switch kind {
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindInvalidDomain:
		return http.StatusForbidden
	case apperror.KindInvalidArgument:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindOracleUnavailable:
		return http.StatusBadGateway
	case apperror.KindHandleNotRegistered:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a domain error to its status and JSON body. Internal
// errors are logged with their cause and answered with a generic message.
func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	kind := apperror.Kind(err)
	status := statusFor(kind)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}

	resp := ErrorResponse{Kind: kind, Message: apperror.Message(err)}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp.Field = appErr.Field
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads a single JSON object from r into dst. Unknown fields,
// trailing data and oversized bodies are invalid arguments.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.InvalidArgument("body", "request body is too large")
		}
		if errors.Is(err, io.EOF) {
			return apperror.InvalidArgument("body", "request body is required")
		}
		return apperror.InvalidArgument("body", fmt.Sprintf("invalid JSON body: %v", err))
	}

	if dec.More() {
		return apperror.InvalidArgument("body", "request body must contain a single JSON object")
	}

	return nil
}
