// Package store is the persistence boundary for the ledger core. The engine
// talks to this interface only; production uses Postgres, tests use Memory.
package store

import (
	"context"

	"taskquest/internal/models"
)

// Store exposes the entity reads and writes the ledger and stats code needs.
// Lookups return (nil, nil) when the row does not exist. The ForUpdate
// variants take a row lock when running inside Atomic so that
// check-then-write sequences on the same user/task/reward are serialized.
type Store interface {
	// Atomic runs fn against a transactional view of the store. All writes
	// inside fn commit together or not at all.
	Atomic(ctx context.Context, fn func(Store) error) error

	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserForUpdate(ctx context.Context, id int) (*models.User, error)
	// AddUserPoints applies a single atomic increment (possibly negative)
	// to the user's balance.
	AddUserPoints(ctx context.Context, userID, delta int) error
	SetUserStreak(ctx context.Context, userID, streak, longest int) error
	SetUserAvatar(ctx context.Context, userID, avatarID int) error

	GetTaskForUpdate(ctx context.Context, id int) (*models.Task, error)
	MarkTaskCompleted(ctx context.Context, id int) error
	DeleteTask(ctx context.Context, id int) error
	// CountTasks returns the size of the user's current task set and how
	// many of those are completed.
	CountTasks(ctx context.Context, userID int) (total, completed int, err error)

	GetRewardForUpdate(ctx context.Context, id int) (*models.Reward, error)
	DeleteReward(ctx context.Context, id int) error

	InsertCompletedTask(ctx context.Context, c *models.CompletedTask) error
	ListCompletions(ctx context.Context, userID int) ([]models.CompletedTask, error)

	InsertRedeemedReward(ctx context.Context, rr *models.RedeemedReward) error

	ListAvatars(ctx context.Context) ([]models.Avatar, error)
	GetAvatar(ctx context.Context, id int) (*models.Avatar, error)
}
