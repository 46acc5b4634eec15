package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
    streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    current_avatar_id INTEGER,
    is_admin BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS avatars (
    id SERIAL PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    image_url TEXT NOT NULL,
    is_default BOOLEAN NOT NULL DEFAULT false,
    streak_required INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    points INTEGER NOT NULL CHECK (points BETWEEN 1 AND 100),
    due_date DATE,
    due_time TEXT,
    category TEXT,
    priority TEXT,
    is_completed BOOLEAN NOT NULL DEFAULT false,
    google_event_id TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(user_id, google_event_id)
);

-- Append-only completion log. task_id has no FK on purpose: deleting a task
-- must not erase its history.
CREATE TABLE IF NOT EXISTS completed_tasks (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    task_id INTEGER NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    points_earned INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_completed_tasks_user ON completed_tasks (user_id, completed_at);

CREATE TABLE IF NOT EXISTS rewards (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    points INTEGER NOT NULL CHECK (points > 0),
    icon TEXT,
    color TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Append-only redemption log; reward_id also kept FK-free so reward deletion
-- leaves history intact.
CREATE TABLE IF NOT EXISTS redeemed_rewards (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    reward_id INTEGER NOT NULL,
    points_spent INTEGER NOT NULL,
    redeemed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS task_proofs (
    id UUID PRIMARY KEY,
    completed_task_id INTEGER NOT NULL REFERENCES completed_tasks(id) ON DELETE CASCADE,
    proof_type TEXT NOT NULL CHECK (proof_type IN ('image', 'audio')),
    proof_url TEXT NOT NULL,
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return err
	}
	return seedAvatars(db)
}

func seedAvatars(db *sqlx.DB) error {
	seed := `
INSERT INTO avatars (name, image_url, is_default, streak_required) VALUES
    ('Sprout',  '/avatars/sprout.png',  true,  0),
    ('Seedling','/avatars/seedling.png',true,  0),
    ('Fox',     '/avatars/fox.png',     false, 3),
    ('Owl',     '/avatars/owl.png',     false, 7),
    ('Wolf',    '/avatars/wolf.png',    false, 14),
    ('Dragon',  '/avatars/dragon.png',  false, 30)
ON CONFLICT (name) DO NOTHING;
`
	_, err := db.ExecContext(context.Background(), seed)
	return err
}
