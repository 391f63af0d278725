package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAppropriate_AllowsEducationalTopics(t *testing.T) {
	topics := []string{
		"dragons",
		"Space",
		"ocean animals",
		"How volcanoes work",
		"ancient Egypt",
	}

	for _, topic := range topics {
		assert.True(t, IsAppropriate(topic), "topic %q should pass", topic)
	}
}

func TestIsAppropriate_RejectsBlockedKeywords(t *testing.T) {
	topics := []string{
		"guns",
		"how to build a weapon",
		"Murder mysteries",
		"drugs",
		"  VIOLENCE  ",
	}

	for _, topic := range topics {
		assert.False(t, IsAppropriate(topic), "topic %q should be rejected", topic)
	}
}

func TestIsAppropriate_MatchesSubstrings(t *testing.T) {
	// The gate is a substring match over the lowercased topic, so a blocked
	// keyword embedded in a longer phrase still rejects.
	assert.False(t, IsAppropriate("the history of warfare"))
	assert.False(t, IsAppropriate("Gunsmoke"))
}
