package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func baseUpdate() Update {
	return Update{
		UserID:           "user-1",
		Topic:            "dragons",
		Dimension:        "Science",
		SkillLevel:       "Beginner",
		TimeSpentSeconds: 60,
	}
}

func TestUpdate_Validate(t *testing.T) {
	assert.NoError(t, baseUpdate().Validate())

	missing := baseUpdate()
	missing.UserID = ""
	assert.Error(t, missing.Validate())

	noTopic := baseUpdate()
	noTopic.Topic = ""
	assert.Error(t, noTopic.Validate())

	negative := baseUpdate()
	negative.TimeSpentSeconds = -1
	assert.Error(t, negative.Validate())
}

func TestNewRecord_NilAudioPlayedInsertsFalse(t *testing.T) {
	now := time.Now().UTC()
	rec := NewRecord(baseUpdate(), now)

	assert.False(t, rec.AudioPlayed)
	assert.Equal(t, 60, rec.TimeSpentSeconds)
	assert.Equal(t, now, rec.CompletedAt)
}

func TestMerge_TimeSpentIsMonotonicMax(t *testing.T) {
	now := time.Now().UTC()
	rec := NewRecord(baseUpdate(), now)

	higher := baseUpdate()
	higher.TimeSpentSeconds = 120
	rec.Merge(higher, now.Add(time.Minute))
	assert.Equal(t, 120, rec.TimeSpentSeconds)

	// A lower reported time never decreases the stored value.
	lower := baseUpdate()
	lower.TimeSpentSeconds = 30
	rec.Merge(lower, now.Add(2*time.Minute))
	assert.Equal(t, 120, rec.TimeSpentSeconds)
}

func TestMerge_AudioPlayedIsSticky(t *testing.T) {
	now := time.Now().UTC()
	rec := NewRecord(baseUpdate(), now)

	played := baseUpdate()
	played.AudioPlayed = boolPtr(true)
	rec.Merge(played, now)
	assert.True(t, rec.AudioPlayed)

	// Neither an explicit false nor an absent flag clears it.
	unplayed := baseUpdate()
	unplayed.AudioPlayed = boolPtr(false)
	rec.Merge(unplayed, now)
	assert.True(t, rec.AudioPlayed)

	rec.Merge(baseUpdate(), now)
	assert.True(t, rec.AudioPlayed)
}

func TestMerge_CompletedAtRefreshesOnEveryMerge(t *testing.T) {
	start := time.Now().UTC()
	rec := NewRecord(baseUpdate(), start)

	// Even a no-op time update refreshes the activity timestamp.
	later := start.Add(time.Hour)
	zero := baseUpdate()
	zero.TimeSpentSeconds = 0
	rec.Merge(zero, later)

	assert.Equal(t, later, rec.CompletedAt)
	assert.Equal(t, 60, rec.TimeSpentSeconds)
}

func TestMerge_Idempotent(t *testing.T) {
	now := time.Now().UTC()
	rec := NewRecord(baseUpdate(), now)

	update := baseUpdate()
	update.TimeSpentSeconds = 90
	update.AudioPlayed = boolPtr(true)

	rec.Merge(update, now)
	first := *rec

	rec.Merge(update, now)
	assert.Equal(t, first, *rec)
}
