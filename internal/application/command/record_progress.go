package command

import (
	"context"
	"errors"

	"github.com/curiolab/curio-hub/internal/domain/progress"
	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/pkg/logger"
	"github.com/curiolab/curio-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PROGRESS COMMAND
// Idempotent upsert of a learner's progress signal: time spent takes the
// monotonic max, audioPlayed is sticky once true, completedAt refreshes on
// every call. Storage failure is logged and swallowed.
// ══════════════════════════════════════════════════════════════════════════════

// RecordProgressCommand contains a progress signal from the client.
type RecordProgressCommand struct {
	UserID           string
	Topic            string
	Dimension        string
	SkillLevel       string
	TimeSpentSeconds int

	// AudioPlayed is tri-state: nil leaves the stored flag unchanged.
	AudioPlayed *bool
}

// RecordProgressHandler handles the RecordProgressCommand.
type RecordProgressHandler struct {
	repo      progress.Repository
	log       *logger.Logger
	dbRetrier *retry.Retrier
}

// NewRecordProgressHandler creates a new RecordProgressHandler.
func NewRecordProgressHandler(repo progress.Repository, log *logger.Logger) *RecordProgressHandler {
	return &RecordProgressHandler{
		repo:      repo,
		log:       log,
		dbRetrier: retry.DatabaseRetrier(),
	}
}

// Handle executes the record progress command. Validation errors surface to
// the caller; storage errors do not.
func (h *RecordProgressHandler) Handle(ctx context.Context, cmd RecordProgressCommand) error {
	update := progress.Update{
		UserID:           cmd.UserID,
		Topic:            cmd.Topic,
		Dimension:        cmd.Dimension,
		SkillLevel:       cmd.SkillLevel,
		TimeSpentSeconds: cmd.TimeSpentSeconds,
		AudioPlayed:      cmd.AudioPlayed,
	}

	if err := update.Validate(); err != nil {
		return err
	}

	err := h.dbRetrier.Do(ctx, func(ctx context.Context) error {
		if err := h.repo.Upsert(ctx, update); err != nil {
			if shared.IsRetryable(err) {
				return retry.Retryable(err)
			}
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.Warn("progress write failed",
			logger.UserID(cmd.UserID), logger.Topic(cmd.Topic), logger.Err(err))
	}

	return nil
}
