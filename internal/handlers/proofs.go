package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskquest/internal/middleware"
	"taskquest/internal/models"
)

type ProofHandler struct {
	db *sqlx.DB
}

func NewProofHandler(db *sqlx.DB) *ProofHandler {
	return &ProofHandler{db: db}
}

type proofRequest struct {
	ProofType string `json:"proof_type"` // image | audio
	ProofURL  string `json:"proof_url"`
}

// Add attaches evidence to one of the user's completions. Proofs carry no
// points logic.
func (h *ProofHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	completionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid completion id", http.StatusBadRequest)
		return
	}
	var req proofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.ProofType != "image" && req.ProofType != "audio" {
		http.Error(w, "proof_type must be image or audio", http.StatusBadRequest)
		return
	}
	if req.ProofURL == "" {
		http.Error(w, "proof_url required", http.StatusBadRequest)
		return
	}

	var ownerID int
	if err := h.db.Get(&ownerID, `SELECT user_id FROM completed_tasks WHERE id=$1`, completionID); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if ownerID != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var p models.TaskProof
	err = h.db.QueryRowx(`INSERT INTO task_proofs (id, completed_task_id, proof_type, proof_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, completed_task_id, proof_type, proof_url, uploaded_at`,
		uuid.New(), completionID, req.ProofType, req.ProofURL).StructScan(&p)
	if err != nil {
		http.Error(w, "could not save proof", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// Delete removes a proof. History (the completion row) is untouched.
func (h *ProofHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	proofID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid proof id", http.StatusBadRequest)
		return
	}

	var ownerID int
	err = h.db.Get(&ownerID, `
		SELECT ct.user_id FROM task_proofs p
		JOIN completed_tasks ct ON ct.id = p.completed_task_id
		WHERE p.id=$1`, proofID)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if ownerID != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if _, err := h.db.Exec(`DELETE FROM task_proofs WHERE id=$1`, proofID); err != nil {
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
