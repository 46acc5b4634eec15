package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"taskquest/internal/ledger"
	"taskquest/internal/middleware"
	"taskquest/internal/models"
)

type UserHandler struct {
	db     *sqlx.DB
	engine *ledger.Engine
}

func NewUserHandler(db *sqlx.DB, engine *ledger.Engine) *UserHandler {
	return &UserHandler{db: db, engine: engine}
}

// GetMe returns the current user's profile.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	var u models.User
	if err := h.db.Get(&u, `SELECT id, email, password_hash, points, streak, longest_streak, current_avatar_id, is_admin, created_at
		FROM users WHERE id=$1`, userID); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// UpdateMe updates provided fields on the current user's profile.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	var body struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	setClauses := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		setClauses, args = appendSet(setClauses, args, col, v)
	}
	if body.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*body.Email))
		if email == "" {
			http.Error(w, "email cannot be empty", http.StatusBadRequest)
			return
		}
		add("email", email)
	}
	if body.Password != nil {
		if *body.Password == "" {
			http.Error(w, "password cannot be empty", http.StatusBadRequest)
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "could not hash password", http.StatusInternalServerError)
			return
		}
		add("password_hash", string(hashed))
	}
	if len(setClauses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	args = append(args, userID)
	query := "UPDATE users SET " + joinClauses(setClauses) + " WHERE id=$" + itoa(len(args))
	if _, err := h.db.Exec(query, args...); err != nil {
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAvatar selects a new current avatar, gated on the unlock rule.
func (h *UserHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	var body struct {
		AvatarID int `json:"avatar_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.AvatarID == 0 {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.engine.SetCurrentAvatar(r.Context(), userID, body.AvatarID); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }
