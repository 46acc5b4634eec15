package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskquest/internal/ledger"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondLedgerError maps the ledger error taxonomy onto HTTP statuses. Any
// error outside the taxonomy is an unexpected storage failure.
func respondLedgerError(w http.ResponseWriter, err error) {
	var insufficient ledger.InsufficientPointsError
	var locked ledger.LockedError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ledger.ErrAlreadyCompleted):
		http.Error(w, "task already completed", http.StatusConflict)
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":     "insufficient points",
			"required":  insufficient.Required,
			"available": insufficient.Available,
			"shortfall": insufficient.Shortfall(),
		})
	case errors.As(err, &locked):
		respondJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":           "avatar locked",
			"streak_required": locked.StreakRequired,
		})
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
