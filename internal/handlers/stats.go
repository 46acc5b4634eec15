package handlers

import (
	"net/http"
	"strconv"

	"taskquest/internal/middleware"
	"taskquest/internal/stats"
)

type StatsHandler struct {
	svc *stats.Service
}

func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	out, err := h.svc.Overview(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// Weekly returns completion counts for the trailing 7 days including today.
func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	out, err := h.svc.Weekly(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *StatsHandler) TopTasks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	n := 5
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	out, err := h.svc.TopTasks(r.Context(), userID, n)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *StatsHandler) TimeOfDay(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	out, err := h.svc.TimeOfDay(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
