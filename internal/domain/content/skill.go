// Package content contains domain entities and business logic for
// skill-scoped educational articles: safety gating, cache identity,
// skill-level guidance, and readability scoring.
// This is a pure domain layer with zero external dependencies.
package content

import "strings"

// SkillLevel represents one of three fixed content-depth tiers.
type SkillLevel string

const (
	SkillBeginner SkillLevel = "Beginner"
	SkillExplorer SkillLevel = "Explorer"
	SkillExpert   SkillLevel = "Expert"
)

// AllSkillLevels lists every supported skill level.
var AllSkillLevels = []SkillLevel{SkillBeginner, SkillExplorer, SkillExpert}

// IsValid checks if the skill level is one of the three supported tiers.
func (s SkillLevel) IsValid() bool {
	switch s {
	case SkillBeginner, SkillExplorer, SkillExpert:
		return true
	default:
		return false
	}
}

// String returns the canonical label of the skill level.
func (s SkillLevel) String() string {
	return string(s)
}

// ParseSkillLevel parses a label into a SkillLevel, case-insensitively.
// Returns false if the label is not one of the three supported tiers.
func ParseSkillLevel(label string) (SkillLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "beginner":
		return SkillBeginner, true
	case "explorer":
		return SkillExplorer, true
	case "expert":
		return SkillExpert, true
	default:
		return "", false
	}
}

// Guidance holds the per-skill parameters that shape a generation prompt.
// Focus and Avoid are directives that keep the three tiers non-overlapping
// for the same topic and dimension, not merely shorter or longer.
type Guidance struct {
	TargetWords    string
	Vocabulary     string
	SentenceLength string
	Examples       string
	Paragraphs     string
	Focus          string
	Avoid          string
}

// Guidance returns the prompt guidance for the skill level.
// The lookup is exhaustive over the three tiers.
func (s SkillLevel) Guidance() Guidance {
	switch s {
	case SkillExplorer:
		return Guidance{
			TargetWords:    "400-500 words",
			Vocabulary:     "slightly more complex words, medium sentences",
			SentenceLength: "10-15 words per sentence",
			Examples:       "relatable examples with basic science terms",
			Paragraphs:     "3-4 paragraphs",
			Focus:          "how and why things work: causes, effects, and the processes behind them",
			Avoid:          "repeating basic definitions and simple descriptions a beginner article would cover",
		}
	case SkillExpert:
		return Guidance{
			TargetWords:    "700-900 words",
			Vocabulary:     "grade-level vocabulary, varied sentence structures, some advanced terms with explanations",
			SentenceLength: "12-20 words per sentence",
			Examples:       "detailed examples with scientific explanations and real-world connections",
			Paragraphs:     "5-7 well-developed paragraphs with clear section breaks",
			Focus:          "deeper systems and connections: how experts study this, surprising discoveries, and open questions",
			Avoid:          "restating introductory facts or process explanations already covered at lower levels",
		}
	default: // SkillBeginner
		return Guidance{
			TargetWords:    "200-300 words",
			Vocabulary:     "simple words, short sentences",
			SentenceLength: "8-12 words per sentence",
			Examples:       "everyday examples kids can see and touch",
			Paragraphs:     "2-3 short paragraphs",
			Focus:          "what it is and why it is wonderful: concrete, observable things",
			Avoid:          "abstract mechanisms, technical processes, and detailed numbers or dates",
		}
	}
}
