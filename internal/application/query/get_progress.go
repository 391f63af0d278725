// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/curiolab/curio-hub/internal/domain/progress"
	"github.com/curiolab/curio-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Returns a learner's progress rows, most recent first.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressQuery contains the query input.
type GetProgressQuery struct {
	UserID string
}

// ProgressEntry is one row of the learner's progress.
type ProgressEntry struct {
	Topic            string    `json:"topic"`
	Dimension        string    `json:"dimension"`
	SkillLevel       string    `json:"skill_level"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	AudioPlayed      bool      `json:"audio_played"`
	CompletedAt      time.Time `json:"completed_at"`
}

// GetProgressResult contains the learner's progress rows.
type GetProgressResult struct {
	UserID  string          `json:"user_id"`
	Entries []ProgressEntry `json:"entries"`
}

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	repo progress.Repository
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(repo progress.Repository) *GetProgressHandler {
	return &GetProgressHandler{repo: repo}
}

// Handle executes the query.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*GetProgressResult, error) {
	if q.UserID == "" {
		return nil, shared.WrapError("progress", "List", shared.ErrEmptyValue, "user ID is required", nil)
	}

	records, err := h.repo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_progress: list records: %w", err)
	}

	entries := make([]ProgressEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, ProgressEntry{
			Topic:            r.Topic,
			Dimension:        r.Dimension,
			SkillLevel:       r.SkillLevel,
			TimeSpentSeconds: r.TimeSpentSeconds,
			AudioPlayed:      r.AudioPlayed,
			CompletedAt:      r.CompletedAt,
		})
	}

	return &GetProgressResult{UserID: q.UserID, Entries: entries}, nil
}
