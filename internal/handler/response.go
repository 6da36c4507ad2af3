package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hellodube-gateway/internal/model"
	"hellodube-gateway/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: true, Message: message})
}

// writeError maps domain failures onto the wire envelope. Anything
// unclassified becomes a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		writeErrorMessage(w, apiErr.HTTPStatus, apiErr.Message)
	case errors.Is(err, model.ErrUserNotFound):
		writeErrorMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, model.ErrSessionNotFound):
		writeErrorMessage(w, http.StatusForbidden, "Refresh token not found or revoked")
	case errors.Is(err, model.ErrTokenInvalid):
		writeErrorMessage(w, http.StatusUnauthorized, "Invalid or expired token.")
	case errors.Is(err, model.ErrSecretMissing):
		slog.Error("signing secret missing", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Server configuration error.")
	default:
		slog.Error("unhandled error", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "An internal server error occurred.")
	}
}
