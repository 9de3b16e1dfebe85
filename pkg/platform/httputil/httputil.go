// Package httputil holds the JSON request/response helpers shared by handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "caregate/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// Validatable is implemented by request DTOs that normalize and check
// themselves after decoding.
type Validatable interface {
	Validate() error
}

type errorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:          http.StatusBadRequest,
	dErrors.CodeInvalidInput:        http.StatusBadRequest,
	dErrors.CodeValidation:          http.StatusBadRequest,
	dErrors.CodeNotFound:            http.StatusNotFound,
	dErrors.CodeConflict:            http.StatusConflict,
	dErrors.CodeInvariantViolation:  http.StatusConflict,
	dErrors.CodeUnauthorized:        http.StatusUnauthorized,
	dErrors.CodeForbidden:           http.StatusForbidden,
	dErrors.CodeTimeout:             http.StatusGatewayTimeout,
	dErrors.CodeInternal:            http.StatusInternalServerError,
	dErrors.CodeBlacklisted:         http.StatusForbidden,
	dErrors.CodeDuplicateCredential: http.StatusConflict,
}

// StatusFor maps an error to its HTTP status. Errors without a code are 500.
func StatusFor(err error) int {
	if status, ok := statusByCode[dErrors.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
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

// WriteError writes err as {"error", "error_description", "details"}. Internal
// errors carry no description so storage messages never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal && code != dErrors.CodeTimeout {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
		}
		resp.Details = dErrors.DetailsOf(err)
	}
	WriteJSON(w, StatusFor(err), resp)
}

// DecodeAndPrepare decodes the JSON body into a new T and validates it. On
// failure it writes the error response and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	var zero PT
	req := PT(new(T))
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return zero, false
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return zero, false
	}
	return req, true
}
