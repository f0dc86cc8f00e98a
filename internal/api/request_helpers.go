package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/weilandt/circ-api/internal/api/shared"
	"github.com/weilandt/circ-api/internal/domain"
)

// getUsernameFromContext extracts the authenticated account name placed in
// the context by the authentication middleware.
func getUsernameFromContext(r *http.Request) (string, bool) {
	username, ok := r.Context().Value(shared.UsernameContextKey).(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}

// requireUsername extracts the authenticated name or writes a 401 response.
func requireUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := getUsernameFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return username, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.ErrValidation
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}

	return id, nil
}
