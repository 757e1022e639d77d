// Package v1handler implements the operator-facing JSON API: reading the
// cached privacy verdict and listing the upload registry.
package v1handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"privuploads/internal/delivery"
	"privuploads/internal/probe"
	"privuploads/pkg/logger"
	"privuploads/pkg/serrors"
	"privuploads/pkg/storage"

	"go.uber.org/zap"
)

// Deps are the collaborators the v1 handlers need.
type Deps struct {
	// Prober reads (and on misses schedules) the privacy verdict.
	Prober probe.Prober
	// Storage reads the upload registry.
	Storage storage.UploadStorage
}

// Handler serves the v1 API routes.
type Handler struct {
	deps Deps
}

// New creates a v1 API handler.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Mux returns the route table for the v1 API. Every route requires the
// caller to pass the given authorization check.
func (h *Handler) Mux(authorize delivery.AuthorizationCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /v1/privacy", withAuthorization(authorize, http.HandlerFunc(h.Privacy)))
	mux.Handle("GET /v1/files", withAuthorization(authorize, http.HandlerFunc(h.Files)))

	return mux
}

// withAuthorization rejects requests that fail the authorization check before
// they reach the handler.
func withAuthorization(authorize delivery.AuthorizationCheck, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := authorize(r); err != nil {
			writeError(w, r, err)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// errorResponse is the uniform error body of the v1 API.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debug(r.Context(), "could not write response", zap.Error(err))
	}
}

// writeError maps semantic error kinds onto HTTP statuses. Internal details
// never reach the response body; they are logged instead.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, serrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, serrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, serrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, serrors.ErrBadRequest):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}

	body := errorResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		logger.Error(r.Context(), "internal error handling request", zap.Error(err))
		body.Error = "internal server error"
	}

	writeJSON(w, r, status, body)
}
