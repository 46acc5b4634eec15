package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taskquest/internal/models"
)

// querier is satisfied by both *sqlx.DB and *sqlx.Tx, so the same query code
// runs inside and outside a transaction.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Postgres implements Store on top of sqlx.
type Postgres struct {
	db *sqlx.DB // nil when this view is transaction-bound
	q  querier
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db, q: db}
}

// Atomic runs fn inside a SQL transaction. Nested calls reuse the open
// transaction.
func (p *Postgres) Atomic(ctx context.Context, fn func(Store) error) error {
	if p.db == nil {
		return fn(p)
	}
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&Postgres{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

const userColumns = `id, email, password_hash, points, streak, longest_streak, current_avatar_id, is_admin, created_at`

func (p *Postgres) GetUser(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := p.q.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) GetUserForUpdate(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := p.q.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) AddUserPoints(ctx context.Context, userID, delta int) error {
	_, err := p.q.ExecContext(ctx, `UPDATE users SET points = points + $1 WHERE id=$2`, delta, userID)
	return err
}

func (p *Postgres) SetUserStreak(ctx context.Context, userID, streak, longest int) error {
	_, err := p.q.ExecContext(ctx,
		`UPDATE users SET streak=$1, longest_streak=GREATEST(longest_streak, $2) WHERE id=$3`,
		streak, longest, userID)
	return err
}

func (p *Postgres) SetUserAvatar(ctx context.Context, userID, avatarID int) error {
	_, err := p.q.ExecContext(ctx, `UPDATE users SET current_avatar_id=$1 WHERE id=$2`, avatarID, userID)
	return err
}

const taskColumns = `id, user_id, title, description, points, due_date, due_time, category, priority, is_completed, google_event_id, created_at`

func (p *Postgres) GetTaskForUpdate(ctx context.Context, id int) (*models.Task, error) {
	var t models.Task
	err := p.q.GetContext(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id=$1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *Postgres) MarkTaskCompleted(ctx context.Context, id int) error {
	res, err := p.q.ExecContext(ctx, `UPDATE tasks SET is_completed=true WHERE id=$1 AND is_completed=false`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %d not marked completed", id)
	}
	return nil
}

func (p *Postgres) DeleteTask(ctx context.Context, id int) error {
	_, err := p.q.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	return err
}

func (p *Postgres) CountTasks(ctx context.Context, userID int) (total, completed int, err error) {
	err = p.q.QueryRowxContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_completed)
		FROM tasks WHERE user_id=$1`, userID).Scan(&total, &completed)
	return total, completed, err
}

const rewardColumns = `id, user_id, title, description, points, icon, color, created_at`

func (p *Postgres) GetRewardForUpdate(ctx context.Context, id int) (*models.Reward, error) {
	var rw models.Reward
	err := p.q.GetContext(ctx, &rw, `SELECT `+rewardColumns+` FROM rewards WHERE id=$1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

func (p *Postgres) DeleteReward(ctx context.Context, id int) error {
	_, err := p.q.ExecContext(ctx, `DELETE FROM rewards WHERE id=$1`, id)
	return err
}

func (p *Postgres) InsertCompletedTask(ctx context.Context, c *models.CompletedTask) error {
	return p.q.QueryRowxContext(ctx, `
		INSERT INTO completed_tasks (user_id, task_id, completed_at, points_earned)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		c.UserID, c.TaskID, c.CompletedAt, c.PointsEarned).Scan(&c.ID)
}

func (p *Postgres) ListCompletions(ctx context.Context, userID int) ([]models.CompletedTask, error) {
	var out []models.CompletedTask
	err := p.q.SelectContext(ctx, &out, `
		SELECT id, user_id, task_id, completed_at, points_earned
		FROM completed_tasks WHERE user_id=$1 ORDER BY completed_at, id`, userID)
	return out, err
}

func (p *Postgres) InsertRedeemedReward(ctx context.Context, rr *models.RedeemedReward) error {
	return p.q.QueryRowxContext(ctx, `
		INSERT INTO redeemed_rewards (user_id, reward_id, points_spent, redeemed_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		rr.UserID, rr.RewardID, rr.PointsSpent, rr.RedeemedAt).Scan(&rr.ID)
}

func (p *Postgres) ListAvatars(ctx context.Context) ([]models.Avatar, error) {
	var out []models.Avatar
	err := p.q.SelectContext(ctx, &out, `
		SELECT id, name, image_url, is_default, streak_required
		FROM avatars ORDER BY streak_required, id`)
	return out, err
}

func (p *Postgres) GetAvatar(ctx context.Context, id int) (*models.Avatar, error) {
	var a models.Avatar
	err := p.q.GetContext(ctx, &a, `SELECT id, name, image_url, is_default, streak_required FROM avatars WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
