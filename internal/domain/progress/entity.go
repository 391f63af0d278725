// Package progress contains domain entities and merge rules for per-user
// learning progress: monotonic time accumulation and sticky playback flags.
// This is a pure domain layer with zero external dependencies.
package progress

import (
	"time"

	"github.com/curiolab/curio-hub/internal/domain/shared"
)

// Record is one learner's progress on a single (topic, dimension, skill)
// entry. Unique per that tuple plus the user; lifecycle owned by the
// account store, never deleted here.
type Record struct {
	UserID           string
	Topic            string
	Dimension        string
	SkillLevel       string
	TimeSpentSeconds int
	AudioPlayed      bool
	CompletedAt      time.Time
}

// Update carries an incoming progress signal. AudioPlayed is a tri-state:
// nil means "leave unchanged" on merge and false on first insert.
type Update struct {
	UserID           string
	Topic            string
	Dimension        string
	SkillLevel       string
	TimeSpentSeconds int
	AudioPlayed      *bool
}

// Validate checks the update invariants.
func (u Update) Validate() error {
	if u.UserID == "" {
		return shared.WrapError("progress", "Validate", shared.ErrEmptyValue, "user ID is required", nil)
	}
	if u.Topic == "" {
		return shared.WrapError("progress", "Validate", shared.ErrEmptyValue, "topic is required", nil)
	}
	if u.TimeSpentSeconds < 0 {
		return shared.ErrInvalidTimeSpent
	}
	return nil
}

// NewRecord creates the initial record for an update. A nil AudioPlayed
// inserts as false.
func NewRecord(u Update, now time.Time) *Record {
	played := false
	if u.AudioPlayed != nil {
		played = *u.AudioPlayed
	}
	return &Record{
		UserID:           u.UserID,
		Topic:            u.Topic,
		Dimension:        u.Dimension,
		SkillLevel:       u.SkillLevel,
		TimeSpentSeconds: u.TimeSpentSeconds,
		AudioPlayed:      played,
		CompletedAt:      now,
	}
}

// Merge applies an update to an existing record:
// time spent takes the maximum and never decreases, AudioPlayed is sticky
// once true, and CompletedAt refreshes on every merge including pure
// time-tracking calls.
func (r *Record) Merge(u Update, now time.Time) {
	if u.TimeSpentSeconds > r.TimeSpentSeconds {
		r.TimeSpentSeconds = u.TimeSpentSeconds
	}
	if u.AudioPlayed != nil && *u.AudioPlayed {
		r.AudioPlayed = true
	}
	r.CompletedAt = now
}
