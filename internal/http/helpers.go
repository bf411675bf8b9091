package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"budgetapi/internal/auth"
	"budgetapi/internal/core"
	"budgetapi/internal/log"
	"budgetapi/internal/middleware/trace"
)

const detailInternal = "Internal server error"

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response", log.FieldError, err.Error())
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, r, status, errorResponse{Detail: detail})
}

// writeAuthError answers 401 and tells the client which credential check
// failed.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	detail := "Invalid authentication credentials"
	if errors.Is(err, auth.ErrTokenExpired) {
		detail = "Token has expired"
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, r, http.StatusUnauthorized, detail)
}

// respondError maps err to a status and writes it. Anything that is not
// a client error is logged and reported as a bare 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
		writeError(w, r, apiErr.Status, apiErr.Detail)
	case errors.Is(err, core.ErrInvalidMonth):
		writeError(w, r, http.StatusUnprocessableEntity, core.ErrInvalidMonth.Error())
	case core.IsValidation(err):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
		writeAuthError(w, r, err)
	case errors.Is(err, context.Canceled):
		// client went away; nobody is listening for the body
		w.WriteHeader(499)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldRequestID, trace.GetRequestID(r.Context()),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err.Error())
		writeError(w, r, http.StatusInternalServerError, detailInternal)
	}
}
