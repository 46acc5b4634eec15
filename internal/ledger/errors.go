package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the task/reward/avatar id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the resource exists but the acting user does not own it.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyCompleted guards against double-crediting a task.
	ErrAlreadyCompleted = errors.New("task already completed")
)

// InsufficientPointsError is returned when a redemption is attempted without
// enough balance. It carries the shortfall for client display.
type InsufficientPointsError struct {
	Required  int
	Available int
}

func (e InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: need %d, have %d", e.Required, e.Available)
}

func (e InsufficientPointsError) Shortfall() int {
	return e.Required - e.Available
}

// LockedError is returned when a user selects an avatar their streak has not
// unlocked yet.
type LockedError struct {
	AvatarName     string
	StreakRequired int
}

func (e LockedError) Error() string {
	return fmt.Sprintf("avatar '%s' unlocks at a %d-day streak", e.AvatarName, e.StreakRequired)
}
