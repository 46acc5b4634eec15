// Package ledger holds the points rules: task completion credits, reward
// redemption debits, and the streak derived from the completion log. Every
// mutation runs as one atomic unit against the store, with the ownership
// check inside the same transaction as the write.
package ledger

import (
	"context"
	"fmt"
	"time"

	"taskquest/internal/models"
	"taskquest/internal/store"
)

type Engine struct {
	store store.Store
	now   func() time.Time
}

// New builds an engine over the given store. now may be nil, in which case
// time.Now is used; tests inject a fixed clock.
func New(s store.Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: s, now: now}
}

type CompleteResult struct {
	TaskID       int `json:"task_id"`
	PointsEarned int `json:"points_earned"`
	Balance      int `json:"balance"`
	Streak       int `json:"streak"`
}

// CompleteTask flips the task to completed, appends a completion-log row with
// the task's point value snapshotted, credits the owner, and recomputes the
// streak from the log. Repeated calls fail with ErrAlreadyCompleted and do
// not credit twice.
func (e *Engine) CompleteTask(ctx context.Context, userID, taskID int) (*CompleteResult, error) {
	var res *CompleteResult
	err := e.store.Atomic(ctx, func(s store.Store) error {
		task, err := s.GetTaskForUpdate(ctx, taskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}
		if task == nil {
			return ErrNotFound
		}
		if task.UserID != userID {
			return ErrForbidden
		}
		if task.IsCompleted {
			return ErrAlreadyCompleted
		}

		now := e.now()
		if err := s.MarkTaskCompleted(ctx, taskID); err != nil {
			return fmt.Errorf("mark completed: %w", err)
		}
		entry := &models.CompletedTask{
			UserID:       userID,
			TaskID:       taskID,
			CompletedAt:  now,
			PointsEarned: task.Points,
		}
		if err := s.InsertCompletedTask(ctx, entry); err != nil {
			return fmt.Errorf("log completion: %w", err)
		}
		if err := s.AddUserPoints(ctx, userID, task.Points); err != nil {
			return fmt.Errorf("credit points: %w", err)
		}

		streak, longest, err := e.recomputeStreak(ctx, s, userID, now)
		if err != nil {
			return err
		}
		if err := s.SetUserStreak(ctx, userID, streak, longest); err != nil {
			return fmt.Errorf("store streak: %w", err)
		}

		u, err := s.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("user %d missing after credit", userID)
		}
		res = &CompleteResult{
			TaskID:       taskID,
			PointsEarned: task.Points,
			Balance:      u.Points,
			Streak:       streak,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

type RedeemResult struct {
	RedeemedRewardID int `json:"redeemed_reward_id"`
	PointsSpent      int `json:"points_spent"`
	PointsRemaining  int `json:"points_remaining"`
}

// RedeemReward debits the reward cost and appends a redemption-log row. The
// balance check and the debit run under the same user-row lock, so two
// concurrent redemptions cannot both succeed against a stale balance.
func (e *Engine) RedeemReward(ctx context.Context, userID, rewardID int) (*RedeemResult, error) {
	var res *RedeemResult
	err := e.store.Atomic(ctx, func(s store.Store) error {
		reward, err := s.GetRewardForUpdate(ctx, rewardID)
		if err != nil {
			return fmt.Errorf("get reward: %w", err)
		}
		if reward == nil {
			return ErrNotFound
		}
		if reward.UserID != userID {
			return ErrForbidden
		}

		u, err := s.GetUserForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("user %d missing during redemption", userID)
		}
		if u.Points < reward.Points {
			return InsufficientPointsError{Required: reward.Points, Available: u.Points}
		}

		entry := &models.RedeemedReward{
			UserID:      userID,
			RewardID:    rewardID,
			PointsSpent: reward.Points,
			RedeemedAt:  e.now(),
		}
		if err := s.InsertRedeemedReward(ctx, entry); err != nil {
			return fmt.Errorf("log redemption: %w", err)
		}
		if err := s.AddUserPoints(ctx, userID, -reward.Points); err != nil {
			return fmt.Errorf("debit points: %w", err)
		}
		res = &RedeemResult{
			RedeemedRewardID: entry.ID,
			PointsSpent:      reward.Points,
			PointsRemaining:  u.Points - reward.Points,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteTask removes a task the user owns. Completing history is untouched:
// a completed task keeps its log row and the credit it earned.
func (e *Engine) DeleteTask(ctx context.Context, userID, taskID int) error {
	return e.store.Atomic(ctx, func(s store.Store) error {
		task, err := s.GetTaskForUpdate(ctx, taskID)
		if err != nil {
			return fmt.Errorf("get task: %w", err)
		}
		if task == nil {
			return ErrNotFound
		}
		if task.UserID != userID {
			return ErrForbidden
		}
		return s.DeleteTask(ctx, taskID)
	})
}

// DeleteReward removes a reward the user owns. No point side effects.
func (e *Engine) DeleteReward(ctx context.Context, userID, rewardID int) error {
	return e.store.Atomic(ctx, func(s store.Store) error {
		reward, err := s.GetRewardForUpdate(ctx, rewardID)
		if err != nil {
			return fmt.Errorf("get reward: %w", err)
		}
		if reward == nil {
			return ErrNotFound
		}
		if reward.UserID != userID {
			return ErrForbidden
		}
		return s.DeleteReward(ctx, rewardID)
	})
}

// recomputeStreak folds the completion log rather than incrementing the
// stored counter, so the denormalized field cannot drift.
func (e *Engine) recomputeStreak(ctx context.Context, s store.Store, userID int, today time.Time) (streak, longest int, err error) {
	comps, err := s.ListCompletions(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("list completions: %w", err)
	}
	dates := make([]time.Time, len(comps))
	for i, c := range comps {
		dates[i] = c.CompletedAt
	}
	return CurrentStreak(today, dates), LongestStreak(dates), nil
}
