package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"taskquest/internal/models"
)

// Memory is an in-process Store used by unit tests. A single mutex stands in
// for the row locks the Postgres implementation takes, so Atomic sections are
// serialized the same way.
type Memory struct {
	mu   sync.Mutex
	data *memData
}

func NewMemory() *Memory {
	return &Memory{data: &memData{
		users:       map[int]*models.User{},
		tasks:       map[int]*models.Task{},
		rewards:     map[int]*models.Reward{},
		completions: map[int]*models.CompletedTask{},
		redemptions: map[int]*models.RedeemedReward{},
		avatars:     map[int]*models.Avatar{},
	}}
}

func (m *Memory) Atomic(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.data)
}

// Seed helpers for tests.

func (m *Memory) SeedUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.seq++
	u.ID = m.data.seq
	m.data.users[u.ID] = &u
	return u
}

func (m *Memory) SeedTask(t models.Task) models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.seq++
	t.ID = m.data.seq
	m.data.tasks[t.ID] = &t
	return t
}

func (m *Memory) SeedReward(r models.Reward) models.Reward {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.seq++
	r.ID = m.data.seq
	m.data.rewards[r.ID] = &r
	return r
}

func (m *Memory) SeedAvatar(a models.Avatar) models.Avatar {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.seq++
	a.ID = m.data.seq
	m.data.avatars[a.ID] = &a
	return a
}

// Redemptions returns all redemption rows for assertions in tests.
func (m *Memory) Redemptions() []models.RedeemedReward {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RedeemedReward
	for _, rr := range m.data.redemptions {
		out = append(out, *rr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) GetUser(ctx context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.GetUser(ctx, id)
}

func (m *Memory) GetUserForUpdate(ctx context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.GetUserForUpdate(ctx, id)
}

func (m *Memory) AddUserPoints(ctx context.Context, userID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.AddUserPoints(ctx, userID, delta)
}

func (m *Memory) SetUserStreak(ctx context.Context, userID, streak, longest int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SetUserStreak(ctx, userID, streak, longest)
}

func (m *Memory) SetUserAvatar(ctx context.Context, userID, avatarID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.SetUserAvatar(ctx, userID, avatarID)
}

func (m *Memory) GetTaskForUpdate(ctx context.Context, id int) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.GetTaskForUpdate(ctx, id)
}

func (m *Memory) MarkTaskCompleted(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.MarkTaskCompleted(ctx, id)
}

func (m *Memory) DeleteTask(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.DeleteTask(ctx, id)
}

func (m *Memory) CountTasks(ctx context.Context, userID int) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.CountTasks(ctx, userID)
}

func (m *Memory) GetRewardForUpdate(ctx context.Context, id int) (*models.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.GetRewardForUpdate(ctx, id)
}

func (m *Memory) DeleteReward(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.DeleteReward(ctx, id)
}

func (m *Memory) InsertCompletedTask(ctx context.Context, c *models.CompletedTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.InsertCompletedTask(ctx, c)
}

func (m *Memory) ListCompletions(ctx context.Context, userID int) ([]models.CompletedTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.ListCompletions(ctx, userID)
}

func (m *Memory) InsertRedeemedReward(ctx context.Context, rr *models.RedeemedReward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.InsertRedeemedReward(ctx, rr)
}

func (m *Memory) ListAvatars(ctx context.Context) ([]models.Avatar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.ListAvatars(ctx)
}

func (m *Memory) GetAvatar(ctx context.Context, id int) (*models.Avatar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.GetAvatar(ctx, id)
}

// memData holds the actual state; its methods assume the caller already holds
// the Memory mutex.
type memData struct {
	seq         int
	users       map[int]*models.User
	tasks       map[int]*models.Task
	rewards     map[int]*models.Reward
	completions map[int]*models.CompletedTask
	redemptions map[int]*models.RedeemedReward
	avatars     map[int]*models.Avatar
}

func (d *memData) Atomic(ctx context.Context, fn func(Store) error) error {
	return fn(d)
}

func (d *memData) GetUser(_ context.Context, id int) (*models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (d *memData) GetUserForUpdate(ctx context.Context, id int) (*models.User, error) {
	return d.GetUser(ctx, id)
}

func (d *memData) AddUserPoints(_ context.Context, userID, delta int) error {
	u, ok := d.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	if u.Points+delta < 0 {
		return fmt.Errorf("points for user %d would go negative", userID)
	}
	u.Points += delta
	return nil
}

func (d *memData) SetUserStreak(_ context.Context, userID, streak, longest int) error {
	u, ok := d.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.Streak = streak
	if longest > u.LongestStreak {
		u.LongestStreak = longest
	}
	return nil
}

func (d *memData) SetUserAvatar(_ context.Context, userID, avatarID int) error {
	u, ok := d.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	id := avatarID
	u.CurrentAvatarID = &id
	return nil
}

func (d *memData) GetTaskForUpdate(_ context.Context, id int) (*models.Task, error) {
	t, ok := d.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (d *memData) MarkTaskCompleted(_ context.Context, id int) error {
	t, ok := d.tasks[id]
	if !ok || t.IsCompleted {
		return fmt.Errorf("task %d not marked completed", id)
	}
	t.IsCompleted = true
	return nil
}

func (d *memData) DeleteTask(_ context.Context, id int) error {
	delete(d.tasks, id)
	return nil
}

func (d *memData) CountTasks(_ context.Context, userID int) (total, completed int, err error) {
	for _, t := range d.tasks {
		if t.UserID != userID {
			continue
		}
		total++
		if t.IsCompleted {
			completed++
		}
	}
	return total, completed, nil
}

func (d *memData) GetRewardForUpdate(_ context.Context, id int) (*models.Reward, error) {
	r, ok := d.rewards[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (d *memData) DeleteReward(_ context.Context, id int) error {
	delete(d.rewards, id)
	return nil
}

func (d *memData) InsertCompletedTask(_ context.Context, c *models.CompletedTask) error {
	d.seq++
	c.ID = d.seq
	cp := *c
	d.completions[c.ID] = &cp
	return nil
}

func (d *memData) ListCompletions(_ context.Context, userID int) ([]models.CompletedTask, error) {
	var out []models.CompletedTask
	for _, c := range d.completions {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out, nil
}

func (d *memData) InsertRedeemedReward(_ context.Context, rr *models.RedeemedReward) error {
	d.seq++
	rr.ID = d.seq
	cp := *rr
	d.redemptions[rr.ID] = &cp
	return nil
}

func (d *memData) ListAvatars(_ context.Context) ([]models.Avatar, error) {
	var out []models.Avatar
	for _, a := range d.avatars {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StreakRequired == out[j].StreakRequired {
			return out[i].ID < out[j].ID
		}
		return out[i].StreakRequired < out[j].StreakRequired
	})
	return out, nil
}

func (d *memData) GetAvatar(_ context.Context, id int) (*models.Avatar, error) {
	a, ok := d.avatars[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}
