package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              int       `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	Points          int       `db:"points" json:"points"`
	Streak          int       `db:"streak" json:"streak"`
	LongestStreak   int       `db:"longest_streak" json:"longest_streak"`
	CurrentAvatarID *int      `db:"current_avatar_id" json:"current_avatar_id,omitempty"`
	IsAdmin         bool      `db:"is_admin" json:"is_admin"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type Task struct {
	ID            int        `db:"id" json:"id"`
	UserID        int        `db:"user_id" json:"user_id"`
	Title         string     `db:"title" json:"title"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Points        int        `db:"points" json:"points"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	DueTime       *string    `db:"due_time" json:"due_time,omitempty"` // HH:MM
	Category      *string    `db:"category" json:"category,omitempty"`
	Priority      *string    `db:"priority" json:"priority,omitempty"`
	IsCompleted   bool       `db:"is_completed" json:"is_completed"`
	GoogleEventID *string    `db:"google_event_id" json:"google_event_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// CompletedTask is an append-only log row. PointsEarned snapshots the task's
// value at completion time; the task row may be edited or deleted afterwards.
type CompletedTask struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	TaskID       int       `db:"task_id" json:"task_id"`
	CompletedAt  time.Time `db:"completed_at" json:"completed_at"`
	PointsEarned int       `db:"points_earned" json:"points_earned"`
}

type Reward struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Points      int       `db:"points" json:"points"`
	Icon        *string   `db:"icon" json:"icon,omitempty"`
	Color       *string   `db:"color" json:"color,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RedeemedReward is an append-only log row. PointsSpent snapshots the reward
// cost at redemption time.
type RedeemedReward struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	RewardID    int       `db:"reward_id" json:"reward_id"`
	PointsSpent int       `db:"points_spent" json:"points_spent"`
	RedeemedAt  time.Time `db:"redeemed_at" json:"redeemed_at"`
}

// Avatar is a global catalog entry, seeded at migration time and read-only
// afterwards.
type Avatar struct {
	ID             int    `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	ImageURL       string `db:"image_url" json:"image_url"`
	IsDefault      bool   `db:"is_default" json:"is_default"`
	StreakRequired int    `db:"streak_required" json:"streak_required"`
}

// TaskProof is an evidentiary attachment on a completion. It carries no
// points logic and can be deleted independently.
type TaskProof struct {
	ID              uuid.UUID `db:"id" json:"id"`
	CompletedTaskID int       `db:"completed_task_id" json:"completed_task_id"`
	ProofType       string    `db:"proof_type" json:"proof_type"` // image | audio
	ProofURL        string    `db:"proof_url" json:"proof_url"`
	UploadedAt      time.Time `db:"uploaded_at" json:"uploaded_at"`
}
