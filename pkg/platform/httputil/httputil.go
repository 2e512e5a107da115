// Package httputil provides JSON response and request helpers shared by all
// HTTP handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "clubhub/pkg/domain-errors"
	"clubhub/pkg/platform/sentinel"
)

// ErrorResponse is the wire shape for every failed request. Reason and
// Fields surface machine-readable detail: Reason distinguishes outcomes
// sharing a status (the admission gates are all 409s), Fields carries
// per-field validation problems keyed by field or question ID.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error onto an HTTP status and envelope.
// Internal errors never leak their description to the client.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			de = dErrors.New(dErrors.CodeNotFound, "not found")
		case errors.Is(err, sentinel.ErrConflict):
			de = dErrors.New(dErrors.CodeConflict, "conflict")
		default:
			de = dErrors.New(dErrors.CodeInternal, "internal error")
		}
	}

	status, code := statusFor(de.Code)
	resp := ErrorResponse{Error: code}
	if status < http.StatusInternalServerError {
		resp.Description = de.Message
		resp.Reason = de.Reason
		resp.Fields = de.Fields
	}
	WriteJSON(w, status, resp)
}

func statusFor(code dErrors.Code) (int, string) {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest, "bad_request"
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case dErrors.CodeForbidden:
		return http.StatusForbidden, "forbidden"
	case dErrors.CodeNotFound:
		return http.StatusNotFound, "not_found"
	case dErrors.CodeConflict, dErrors.CodeInvariantViolation:
		return http.StatusConflict, "conflict"
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout, "timeout"
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// DecodeAndPrepare decodes a JSON request body into T. On failure it writes
// a bad_request response and returns ok=false; handlers just return.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "malformed request body",
				"request_id", requestID, "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		var zero T
		return zero, false
	}
	return req, true
}
