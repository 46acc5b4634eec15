package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"taskquest/internal/ledger"
	"taskquest/internal/middleware"
	"taskquest/internal/models"
)

type TaskHandler struct {
	db     *sqlx.DB
	engine *ledger.Engine
}

func NewTaskHandler(db *sqlx.DB, engine *ledger.Engine) *TaskHandler {
	return &TaskHandler{db: db, engine: engine}
}

type taskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Points      int     `json:"points"`
	DueDate     *string `json:"due_date"` // YYYY-MM-DD
	DueTime     *string `json:"due_time"` // HH:MM
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
}

func (req *taskRequest) validate() error {
	if req.Title == "" {
		return fmt.Errorf("title required")
	}
	if req.Points < 1 || req.Points > 100 {
		return fmt.Errorf("points must be between 1 and 100")
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if _, err := time.Parse("2006-01-02", *req.DueDate); err != nil {
			return fmt.Errorf("invalid due_date; expected YYYY-MM-DD")
		}
	}
	return nil
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var t models.Task
	err := h.db.QueryRowx(`INSERT INTO tasks (user_id, title, description, points, due_date, due_time, category, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns, userID, req.Title, req.Description, req.Points,
		nullableDate(req.DueDate), req.DueTime, req.Category, req.Priority).StructScan(&t)
	if err != nil {
		http.Error(w, "could not create task", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	q := r.URL.Query()

	where := "WHERE user_id=$1"
	args := []interface{}{userID}
	if c := q.Get("category"); c != "" {
		args = append(args, c)
		where += fmt.Sprintf(" AND category=$%d", len(args))
	}
	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid completed filter", http.StatusBadRequest)
			return
		}
		args = append(args, completed)
		where += fmt.Sprintf(" AND is_completed=$%d", len(args))
	}

	tasks := []models.Task{}
	err := h.db.Select(&tasks, `SELECT `+taskColumns+` FROM tasks `+where+` ORDER BY created_at DESC LIMIT 200`, args...)
	if err != nil {
		http.Error(w, "could not fetch tasks", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	taskID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var ownerID int
	if err := h.db.Get(&ownerID, `SELECT user_id FROM tasks WHERE id=$1`, taskID); err != nil {
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

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Points      *int    `json:"points"`
		DueDate     *string `json:"due_date"`
		DueTime     *string `json:"due_time"`
		Category    *string `json:"category"`
		Priority    *string `json:"priority"`
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
	if body.Title != nil {
		if *body.Title == "" {
			http.Error(w, "title cannot be empty", http.StatusBadRequest)
			return
		}
		add("title", *body.Title)
	}
	if body.Description != nil {
		add("description", *body.Description)
	}
	if body.Points != nil {
		if *body.Points < 1 || *body.Points > 100 {
			http.Error(w, "points must be between 1 and 100", http.StatusBadRequest)
			return
		}
		add("points", *body.Points)
	}
	if body.DueDate != nil {
		if *body.DueDate == "" {
			setClauses = append(setClauses, "due_date=NULL")
		} else {
			if _, err := time.Parse("2006-01-02", *body.DueDate); err != nil {
				http.Error(w, "invalid due_date; expected YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			add("due_date", *body.DueDate)
		}
	}
	if body.DueTime != nil {
		add("due_time", *body.DueTime)
	}
	if body.Category != nil {
		add("category", *body.Category)
	}
	if body.Priority != nil {
		add("priority", *body.Priority)
	}
	if len(setClauses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	args = append(args, taskID)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id=$%d", joinClauses(setClauses), len(args))
	if _, err := h.db.Exec(query, args...); err != nil {
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Complete runs the ledger credit: flips the task, logs the completion and
// credits the snapshot point value, all in one transaction.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	taskID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	res, err := h.engine.CompleteTask(r.Context(), userID, taskID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	taskID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	if err := h.engine.DeleteTask(r.Context(), userID, taskID); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type importedEvent struct {
	GoogleEventID string  `json:"google_event_id"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	Date          *string `json:"date"` // YYYY-MM-DD
	Time          *string `json:"time"` // HH:MM
	Points        int     `json:"points"`
}

// Import accepts calendar-shaped records and creates tasks from them. Events
// already imported (same google_event_id) are skipped; imported tasks start
// uncompleted and earn points only through the normal completion flow.
func (h *TaskHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	var body struct {
		Events []importedEvent `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	imported, skipped := 0, 0
	for _, ev := range body.Events {
		if ev.GoogleEventID == "" || ev.Title == "" {
			skipped++
			continue
		}
		points := ev.Points
		if points < 1 || points > 100 {
			points = 10
		}
		if ev.Date != nil && *ev.Date != "" {
			if _, err := time.Parse("2006-01-02", *ev.Date); err != nil {
				skipped++
				continue
			}
		}
		res, err := h.db.Exec(`INSERT INTO tasks (user_id, title, description, points, due_date, due_time, google_event_id, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'calendar')
			ON CONFLICT (user_id, google_event_id) DO NOTHING`,
			userID, ev.Title, ev.Description, points, nullableDate(ev.Date), ev.Time, ev.GoogleEventID)
		if err != nil {
			http.Error(w, "could not import events", http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n > 0 {
			imported++
		} else {
			skipped++
		}
	}
	respondJSON(w, http.StatusOK, map[string]int{"imported": imported, "skipped": skipped})
}

// appendSet numbers the placeholder from the argument position, so clauses
// stay correct no matter which optional fields the request carried.
func appendSet(sets []string, args []interface{}, col string, v interface{}) ([]string, []interface{}) {
	args = append(args, v)
	return append(sets, fmt.Sprintf("%s=$%d", col, len(args))), args
}

func nullableDate(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func joinClauses(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

const taskColumns = `id, user_id, title, description, points, due_date, due_time, category, priority, is_completed, google_event_id, created_at`
