package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/subiehq/subie/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps the error taxonomy to HTTP statuses. Credential
// errors surface their message verbatim so the UI can display them inline.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCredentials),
		apperrors.Is(err, apperrors.ErrNoAuthenticatedUser),
		apperrors.Is(err, apperrors.ErrSessionExpired),
		apperrors.Is(err, apperrors.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, err.Error())
	case apperrors.Is(err, apperrors.ErrIdentifierTaken),
		apperrors.Is(err, apperrors.ErrProfileExists):
		writeError(w, http.StatusConflict, err.Error())
	case apperrors.Is(err, apperrors.ErrInvalidIdentifier),
		apperrors.Is(err, apperrors.ErrWeakSecret),
		apperrors.Is(err, apperrors.ErrUnsupportedProvider):
		writeError(w, http.StatusBadRequest, err.Error())
	case apperrors.Is(err, apperrors.ErrNotFound),
		apperrors.Is(err, apperrors.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
