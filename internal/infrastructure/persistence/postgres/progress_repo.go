package postgres

import (
	"context"

	"github.com/curiolab/curio-hub/internal/domain/progress"
	"github.com/curiolab/curio-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY
// Implements progress.Repository with a single atomic upsert matching the
// domain merge rules: time spent takes GREATEST, audio_played is sticky via
// OR, completed_at refreshes on every write.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Repository using PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// Upsert inserts or merges a progress update atomically.
// A nil AudioPlayed inserts as FALSE, which the OR leaves unchanged on merge.
func (r *ProgressRepository) Upsert(ctx context.Context, u progress.Update) error {
	if err := u.Validate(); err != nil {
		return err
	}

	played := false
	if u.AudioPlayed != nil {
		played = *u.AudioPlayed
	}

	query := `
		INSERT INTO learning_progress
			(user_id, topic, dimension, skill_level, time_spent_seconds, audio_played, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, topic, dimension, skill_level) DO UPDATE SET
			time_spent_seconds = GREATEST(learning_progress.time_spent_seconds, EXCLUDED.time_spent_seconds),
			audio_played = learning_progress.audio_played OR EXCLUDED.audio_played,
			completed_at = NOW()
	`

	_, err := r.conn.Exec(ctx, query,
		u.UserID, u.Topic, u.Dimension, u.SkillLevel, u.TimeSpentSeconds, played)
	if err != nil {
		return shared.WrapError("progress", "Upsert", shared.ErrServiceUnavailable,
			"failed to upsert progress row", err)
	}

	return nil
}

// ListByUser returns all progress records for a user, most recent first.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]*progress.Record, error) {
	query := `
		SELECT user_id, topic, dimension, skill_level, time_spent_seconds, audio_played, completed_at
		FROM learning_progress
		WHERE user_id = $1
		ORDER BY completed_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, shared.WrapError("progress", "List", shared.ErrServiceUnavailable,
			"failed to query progress rows", err)
	}
	defer rows.Close()

	var records []*progress.Record
	for rows.Next() {
		var rec progress.Record
		if err := rows.Scan(
			&rec.UserID, &rec.Topic, &rec.Dimension, &rec.SkillLevel,
			&rec.TimeSpentSeconds, &rec.AudioPlayed, &rec.CompletedAt,
		); err != nil {
			return nil, shared.WrapError("progress", "List", shared.ErrServiceUnavailable,
				"failed to scan progress row", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
