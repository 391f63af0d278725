package content

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiolab/curio-hub/internal/domain/shared"
)

func TestNewTopicRequest_Valid(t *testing.T) {
	req, err := NewTopicRequest("dragons", "Science", "beginner")
	require.NoError(t, err)

	assert.Equal(t, "dragons", req.Topic)
	assert.Equal(t, "Science", req.Dimension)
	assert.Equal(t, SkillBeginner, req.SkillLevel)
}

func TestNewTopicRequest_TopicTooShort(t *testing.T) {
	for _, topic := range []string{"", "a", "  a  ", " "} {
		_, err := NewTopicRequest(topic, "Science", "beginner")
		assert.ErrorIs(t, err, shared.ErrTopicTooShort, "topic %q", topic)
		assert.True(t, shared.IsValidation(err))
	}
}

func TestNewTopicRequest_InappropriateTopic(t *testing.T) {
	_, err := NewTopicRequest("guns", "Science", "beginner")
	assert.ErrorIs(t, err, shared.ErrTopicNotAppropriate)
	assert.True(t, shared.IsValidation(err))
}

func TestNewTopicRequest_UnknownSkillLevel(t *testing.T) {
	_, err := NewTopicRequest("dragons", "Science", "wizard")
	assert.ErrorIs(t, err, shared.ErrInvalidSkillLevel)
}

func TestNewTopicRequest_SafetyCheckedBeforeSkill(t *testing.T) {
	// A blocked topic is rejected for safety even when the skill label is
	// also invalid.
	_, err := NewTopicRequest("guns", "Science", "wizard")
	assert.ErrorIs(t, err, shared.ErrTopicNotAppropriate)
}

func TestNewContentArtifact_ComputesWordCount(t *testing.T) {
	req, err := NewTopicRequest("dragons", "Science", "beginner")
	require.NoError(t, err)

	body := strings.TrimSpace(strings.Repeat("dragons breathe fire today ", 75))
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	artifact := NewContentArtifact(req, body, created)

	assert.Equal(t, 300, artifact.WordCount)
	assert.Equal(t, created, artifact.CreatedAt)
	assert.Equal(t, body, artifact.Body)
	assert.NotZero(t, artifact.ReadabilityScore)
}

func TestNewContentArtifact_WordCountIgnoresExtraWhitespace(t *testing.T) {
	req, err := NewTopicRequest("dragons", "Science", "beginner")
	require.NoError(t, err)

	artifact := NewContentArtifact(req, "  one   two\nthree\t four  ", time.Now())

	assert.Equal(t, 4, artifact.WordCount)
}

func TestFallbackDimensions_FixedList(t *testing.T) {
	assert.Equal(t, []string{"Science", "History", "Geography", "Culture", "Environment"}, FallbackDimensions)
	assert.Len(t, FallbackDimensions, DimensionCount)
}
