package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// The relational store holds only accounts and progress rows. Generated
// articles and audio live in the filesystem artifact cache.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_accounts",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_learning_progress",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS accounts (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts (email);
`

const migration001Down = `
DROP TABLE IF EXISTS accounts;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS learning_progress (
    user_id UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
    topic TEXT NOT NULL,
    dimension TEXT NOT NULL,
    skill_level TEXT NOT NULL,
    time_spent_seconds INTEGER NOT NULL DEFAULT 0 CHECK (time_spent_seconds >= 0),
    audio_played BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, topic, dimension, skill_level)
);

CREATE INDEX IF NOT EXISTS idx_learning_progress_recent
    ON learning_progress (user_id, completed_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS learning_progress;
`
