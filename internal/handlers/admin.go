package handlers

import (
	"database/sql"
	"net/http"

	"github.com/jmoiron/sqlx"

	"taskquest/internal/middleware"
)

type AdminHandler struct {
	db *sqlx.DB
}

func NewAdminHandler(db *sqlx.DB) *AdminHandler { return &AdminHandler{db: db} }

type adminOverview struct {
	TotalUsers           int `json:"total_users"`
	TotalTasks           int `json:"total_tasks"`
	TotalCompletions     int `json:"total_completions"`
	TotalRedemptions     int `json:"total_redemptions"`
	ActiveUsersThisWeek  int `json:"active_users_this_week"`
	CompletionsThisWeek  int `json:"completions_this_week"`
	CompletionsThisMonth int `json:"completions_this_month"`
}

func (h *AdminHandler) mustBeAdmin(userID int) (bool, error) {
	var isAdmin bool
	if err := h.db.QueryRowx(`SELECT is_admin FROM users WHERE id=$1`, userID).Scan(&isAdmin); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return isAdmin, nil
}

// Overview returns administrative counts across all users (admin only).
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if ok, err := h.mustBeAdmin(userID); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	} else if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var out adminOverview
	queries := []struct {
		dest  *int
		query string
	}{
		{&out.TotalUsers, `SELECT COUNT(*) FROM users`},
		{&out.TotalTasks, `SELECT COUNT(*) FROM tasks`},
		{&out.TotalCompletions, `SELECT COUNT(*) FROM completed_tasks`},
		{&out.TotalRedemptions, `SELECT COUNT(*) FROM redeemed_rewards`},
		{&out.ActiveUsersThisWeek, `SELECT COUNT(DISTINCT user_id) FROM completed_tasks WHERE completed_at >= date_trunc('week', NOW())`},
		{&out.CompletionsThisWeek, `SELECT COUNT(*) FROM completed_tasks WHERE completed_at >= date_trunc('week', NOW())`},
		{&out.CompletionsThisMonth, `SELECT COUNT(*) FROM completed_tasks WHERE completed_at >= date_trunc('month', NOW())`},
	}
	for _, q := range queries {
		if err := h.db.QueryRowx(q.query).Scan(q.dest); err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	}
	respondJSON(w, http.StatusOK, out)
}
