package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFleschReadingEase_EmptyText(t *testing.T) {
	assert.Equal(t, 0.0, FleschReadingEase(""))
	assert.Equal(t, 0.0, FleschReadingEase("   \n\t  "))
}

func TestFleschReadingEase_SimplerTextScoresHigher(t *testing.T) {
	simple := "The cat sat. The dog ran. It was fun."
	complex := "The multifaceted implications of interdisciplinary collaboration necessitate comprehensive organizational restructuring throughout contemporary institutions."

	assert.Greater(t, FleschReadingEase(simple), FleschReadingEase(complex))
}

func TestFleschReadingEase_NoTerminalPunctuation(t *testing.T) {
	// Text without sentence punctuation counts as one sentence, not zero.
	score := FleschReadingEase("dragons are amazing creatures")
	assert.NotEqual(t, 0.0, score)
}

func TestCountSentences(t *testing.T) {
	assert.Equal(t, 3, countSentences("One. Two! Three?"))
	// A terminal punctuation run is a single boundary.
	assert.Equal(t, 1, countSentences("Wow!!!"))
	assert.Equal(t, 0, countSentences("no punctuation"))
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":      1,
		"dragon":   2,
		"amazing":  3,
		"the":      1,
		"cake":     1, // silent trailing e
		"a":        1,
		"rhythm":   1,
		"dragon,":  2, // punctuation stripped
	}

	for word, want := range cases {
		assert.Equal(t, want, countSyllables(word), "word %q", word)
	}
}
