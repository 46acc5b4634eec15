package ledger

import (
	"context"
	"fmt"
	"time"

	"taskquest/internal/models"
	"taskquest/internal/store"
)

// AvatarUnlocked is the rule gating avatar selection: defaults are always
// selectable, the rest unlock once the streak meets their threshold.
func AvatarUnlocked(a models.Avatar, streak int) bool {
	return a.IsDefault || a.StreakRequired <= streak
}

type AvatarState struct {
	Avatar   models.Avatar `json:"avatar"`
	Unlocked bool          `json:"unlocked"`
}

// AvatarsWithUnlockState lists the catalog with per-avatar unlock state for
// the user. The streak is recomputed from the completion log on read.
func (e *Engine) AvatarsWithUnlockState(ctx context.Context, userID int) ([]AvatarState, error) {
	comps, err := e.store.ListCompletions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	dates := make([]time.Time, len(comps))
	for i, c := range comps {
		dates[i] = c.CompletedAt
	}
	streak := CurrentStreak(e.now(), dates)

	avatars, err := e.store.ListAvatars(ctx)
	if err != nil {
		return nil, fmt.Errorf("list avatars: %w", err)
	}
	out := make([]AvatarState, len(avatars))
	for i, a := range avatars {
		out[i] = AvatarState{Avatar: a, Unlocked: AvatarUnlocked(a, streak)}
	}
	return out, nil
}

// SetCurrentAvatar points the user at an avatar they qualify for. Selecting a
// locked avatar fails with LockedError and changes nothing.
func (e *Engine) SetCurrentAvatar(ctx context.Context, userID, avatarID int) error {
	return e.store.Atomic(ctx, func(s store.Store) error {
		avatar, err := s.GetAvatar(ctx, avatarID)
		if err != nil {
			return fmt.Errorf("get avatar: %w", err)
		}
		if avatar == nil {
			return ErrNotFound
		}

		u, err := s.GetUserForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("user %d missing during avatar change", userID)
		}
		streak, _, err := e.recomputeStreak(ctx, s, userID, e.now())
		if err != nil {
			return err
		}
		if !AvatarUnlocked(*avatar, streak) {
			return LockedError{AvatarName: avatar.Name, StreakRequired: avatar.StreakRequired}
		}
		return s.SetUserAvatar(ctx, userID, avatarID)
	})
}
