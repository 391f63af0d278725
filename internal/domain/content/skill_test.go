package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSkillLevel_CaseInsensitive(t *testing.T) {
	cases := map[string]SkillLevel{
		"beginner": SkillBeginner,
		"Beginner": SkillBeginner,
		"BEGINNER": SkillBeginner,
		"explorer": SkillExplorer,
		"Explorer": SkillExplorer,
		"  expert": SkillExpert,
		"Expert ":  SkillExpert,
	}

	for label, want := range cases {
		got, ok := ParseSkillLevel(label)
		assert.True(t, ok, "label %q", label)
		assert.Equal(t, want, got)
	}
}

func TestParseSkillLevel_RejectsUnknownLabels(t *testing.T) {
	for _, label := range []string{"", "novice", "intermediate", "expertt"} {
		_, ok := ParseSkillLevel(label)
		assert.False(t, ok, "label %q", label)
	}
}

func TestSkillLevel_IsValid(t *testing.T) {
	for _, s := range AllSkillLevels {
		assert.True(t, s.IsValid())
	}
	assert.False(t, SkillLevel("novice").IsValid())
}

func TestGuidance_TiersDoNotOverlap(t *testing.T) {
	beginner := SkillBeginner.Guidance()
	explorer := SkillExplorer.Guidance()
	expert := SkillExpert.Guidance()

	assert.Equal(t, "200-300 words", beginner.TargetWords)
	assert.Equal(t, "400-500 words", explorer.TargetWords)
	assert.Equal(t, "700-900 words", expert.TargetWords)

	// The Focus/Avoid directives are what keep the tiers from producing
	// the same article at different lengths.
	assert.NotEqual(t, beginner.Focus, explorer.Focus)
	assert.NotEqual(t, explorer.Focus, expert.Focus)
	assert.NotEmpty(t, beginner.Avoid)
	assert.NotEmpty(t, explorer.Avoid)
	assert.NotEmpty(t, expert.Avoid)
}
