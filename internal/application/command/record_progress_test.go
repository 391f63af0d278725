package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiolab/curio-hub/internal/domain/shared"
)

func progressCommand() RecordProgressCommand {
	return RecordProgressCommand{
		UserID:           "user-1",
		Topic:            "dragons",
		Dimension:        "Science",
		SkillLevel:       "Beginner",
		TimeSpentSeconds: 120,
	}
}

func TestRecordProgress_UpsertsUpdate(t *testing.T) {
	repo := &fakeProgressRepo{}
	h := NewRecordProgressHandler(repo, testLogger())

	played := true
	cmd := progressCommand()
	cmd.AudioPlayed = &played

	err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	require.Equal(t, 1, repo.upsertCount())
	update := repo.lastUpsert()
	assert.Equal(t, "user-1", update.UserID)
	assert.Equal(t, "dragons", update.Topic)
	assert.Equal(t, 120, update.TimeSpentSeconds)
	require.NotNil(t, update.AudioPlayed)
	assert.True(t, *update.AudioPlayed)
}

func TestRecordProgress_ValidationErrorsSurface(t *testing.T) {
	repo := &fakeProgressRepo{}
	h := NewRecordProgressHandler(repo, testLogger())

	noUser := progressCommand()
	noUser.UserID = ""
	err := h.Handle(context.Background(), noUser)
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	negative := progressCommand()
	negative.TimeSpentSeconds = -5
	err = h.Handle(context.Background(), negative)
	assert.ErrorIs(t, err, shared.ErrInvalidTimeSpent)

	assert.Equal(t, 0, repo.upsertCount())
}

func TestRecordProgress_StorageFailureIsSwallowed(t *testing.T) {
	repo := &fakeProgressRepo{upsertErr: errors.New("database down")}
	h := NewRecordProgressHandler(repo, testLogger())

	// The client already moved on; a lost progress beat is not its problem.
	err := h.Handle(context.Background(), progressCommand())

	assert.NoError(t, err)
}

func TestRecordProgress_NilAudioPlayedPassesThrough(t *testing.T) {
	repo := &fakeProgressRepo{}
	h := NewRecordProgressHandler(repo, testLogger())

	err := h.Handle(context.Background(), progressCommand())
	require.NoError(t, err)

	assert.Nil(t, repo.lastUpsert().AudioPlayed)
}
