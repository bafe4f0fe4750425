// Package httpx holds the JSON and error helpers shared by the module HTTP
// handlers.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
)

// UserHeader carries the id of the user authenticated by the upstream gateway.
const UserHeader = "X-User-ID"

const maxBodyBytes = 1 << 20

type userKey struct{}

// WithRequestingUser stores the authenticated user id on ctx.
func WithRequestingUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// RequestingUser returns the authenticated user id stored on ctx.
func RequestingUser(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userKey{}).(int64)
	return id, ok
}

// ParseUserID parses a positive user id header value.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    string         `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto the JSON error envelope. Unclassified errors are
// logged and reported as internal errors without leaking their message.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		logger.ErrorContext(r.Context(), "Unhandled request error",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
			Kind:    "internal",
			Code:    "internal_error",
			Message: "internal server error",
		}})
		return
	}

	status := apperrors.HTTPStatus(appErr.Kind)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = appErr.Message
		logger.ErrorContext(r.Context(), "Request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
	}
	WriteJSON(w, status, ErrorBody{Error: ErrorDetail{
		Kind:    string(appErr.Kind),
		Code:    appErr.Code,
		Message: message,
		Context: appErr.Context,
	}})
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("empty_body", "request body is required")
		}
		return apperrors.Validation("malformed_body", "malformed request body").Wrap(err)
	}
	return nil
}

// UUIDParam parses the chi URL parameter name as a UUID.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid_id", fmt.Sprintf("invalid %s", name), name, raw)
	}
	return id, nil
}

// Requester returns the authenticated user or writes a 401.
func Requester(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := RequestingUser(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorBody{Error: ErrorDetail{
			Kind:    "authentication",
			Code:    "missing_user",
			Message: UserHeader + " header is required",
		}})
		return 0, false
	}
	return id, true
}
