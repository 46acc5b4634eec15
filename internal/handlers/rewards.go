package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"taskquest/internal/ledger"
	"taskquest/internal/middleware"
	"taskquest/internal/models"
)

type RewardHandler struct {
	db     *sqlx.DB
	engine *ledger.Engine
}

func NewRewardHandler(db *sqlx.DB, engine *ledger.Engine) *RewardHandler {
	return &RewardHandler{db: db, engine: engine}
}

type rewardRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Points      int     `json:"points"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}
	if req.Points < 1 {
		http.Error(w, "points must be positive", http.StatusBadRequest)
		return
	}

	var rw models.Reward
	err := h.db.QueryRowx(`INSERT INTO rewards (user_id, title, description, points, icon, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, title, description, points, icon, color, created_at`,
		userID, req.Title, req.Description, req.Points, req.Icon, req.Color).StructScan(&rw)
	if err != nil {
		http.Error(w, "could not create reward", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, rw)
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	rewards := []models.Reward{}
	err := h.db.Select(&rewards, `SELECT id, user_id, title, description, points, icon, color, created_at
		FROM rewards WHERE user_id=$1 ORDER BY points, id`, userID)
	if err != nil {
		http.Error(w, "could not fetch rewards", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, rewards)
}

// Redeem runs the ledger debit: the balance check and the deduction happen
// under the same row lock, so a stale balance can never pay out twice.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	rewardID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid reward id", http.StatusBadRequest)
		return
	}
	res, err := h.engine.RedeemReward(r.Context(), userID, rewardID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	rewardID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid reward id", http.StatusBadRequest)
		return
	}
	if err := h.engine.DeleteReward(r.Context(), userID, rewardID); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type redeemedEntry struct {
	ID          int     `json:"id"`
	RewardID    int     `json:"reward_id"`
	Title       *string `json:"title,omitempty"` // nil when the reward was deleted since
	PointsSpent int     `json:"points_spent"`
	RedeemedAt  string  `json:"redeemed_at"`
}

// ListRedeemed returns the redemption history. Cost comes from the
// points_spent snapshot, never from the live reward row.
func (h *RewardHandler) ListRedeemed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	rows, err := h.db.Queryx(`
		SELECT rr.id, rr.reward_id, r.title, rr.points_spent, rr.redeemed_at
		FROM redeemed_rewards rr
		LEFT JOIN rewards r ON r.id = rr.reward_id
		WHERE rr.user_id=$1 ORDER BY rr.redeemed_at DESC LIMIT 100`, userID)
	if err != nil {
		http.Error(w, "could not fetch redemptions", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	out := []redeemedEntry{}
	for rows.Next() {
		var e redeemedEntry
		var redeemedAt time.Time
		if err := rows.Scan(&e.ID, &e.RewardID, &e.Title, &e.PointsSpent, &redeemedAt); err != nil {
			http.Error(w, "could not scan redemption", http.StatusInternalServerError)
			return
		}
		e.RedeemedAt = redeemedAt.UTC().Format(time.RFC3339)
		out = append(out, e)
	}
	respondJSON(w, http.StatusOK, out)
}
