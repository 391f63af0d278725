package content

import (
	"strings"
	"unicode"
)

// FleschReadingEase computes the standard Flesch reading-ease score:
//
//	206.835 - 1.015*(words/sentences) - 84.6*(syllables/words)
//
// Higher scores mean easier text. Syllables are estimated with a vowel-group
// heuristic, which matches the standard formula closely enough for
// grade-banded children's articles.
func FleschReadingEase(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordCount := float64(len(words))
	return 206.835 - 1.015*(wordCount/float64(sentences)) - 84.6*(float64(syllables)/wordCount)
}

// countSentences counts terminal punctuation runs as sentence boundaries.
func countSentences(text string) int {
	count := 0
	inTerminal := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inTerminal {
				count++
				inTerminal = true
			}
		default:
			inTerminal = false
		}
	}
	return count
}

// countSyllables estimates syllables in a word by counting vowel groups,
// discounting a trailing silent 'e'. Every word counts as at least one.
func countSyllables(word string) int {
	word = strings.ToLower(word)

	// Strip non-letters (punctuation attached to the word)
	var letters []rune
	for _, r := range word {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	// Silent trailing 'e'
	if len(letters) > 2 && letters[len(letters)-1] == 'e' && !isVowel(letters[len(letters)-2]) {
		count--
	}

	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	default:
		return false
	}
}
