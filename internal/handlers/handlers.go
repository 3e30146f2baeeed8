package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pennywise/internal/ledger"
	"pennywise/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service sentinels onto HTTP codes with
// machine-readable bodies. Anything unrecognized is a 500 with no
// internals leaked.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_amount")
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "insufficient_funds")
	case errors.Is(err, services.ErrMissingField):
		respondError(w, http.StatusBadRequest, "missing_field")
	case errors.Is(err, services.ErrImmutableField):
		respondError(w, http.StatusBadRequest, "immutable_field")
	case errors.Is(err, services.ErrInvalidAccountKind):
		respondError(w, http.StatusBadRequest, "invalid_account_kind")
	case errors.Is(err, ledger.ErrInvalidKind):
		respondError(w, http.StatusBadRequest, "invalid_kind")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error")
	}
}
