package handlers

import (
	"net/http"

	"taskquest/internal/ledger"
	"taskquest/internal/middleware"
)

type AvatarHandler struct {
	engine *ledger.Engine
}

func NewAvatarHandler(engine *ledger.Engine) *AvatarHandler {
	return &AvatarHandler{engine: engine}
}

// List returns the avatar catalog with per-user unlock state.
func (h *AvatarHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	avatars, err := h.engine.AvatarsWithUnlockState(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, avatars)
}
