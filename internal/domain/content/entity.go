package content

import (
	"strings"
	"time"

	"github.com/curiolab/curio-hub/internal/domain/shared"
)

// minTopicLen is the minimum trimmed topic length accepted.
const minTopicLen = 2

// TopicRequest identifies one logical piece of content a learner asked for.
type TopicRequest struct {
	Topic      string
	Dimension  string
	SkillLevel SkillLevel
}

// NewTopicRequest validates and builds a topic request. The skill label is
// parsed case-insensitively; topics failing the safety gate are rejected
// with a user-facing validation error.
func NewTopicRequest(topic, dimension, skillLabel string) (TopicRequest, error) {
	if len(strings.TrimSpace(topic)) < minTopicLen {
		return TopicRequest{}, shared.ErrTopicTooShort
	}
	if !IsAppropriate(topic) {
		return TopicRequest{}, shared.ErrTopicNotAppropriate
	}
	skill, ok := ParseSkillLevel(skillLabel)
	if !ok {
		return TopicRequest{}, shared.ErrInvalidSkillLevel
	}
	return TopicRequest{
		Topic:      topic,
		Dimension:  dimension,
		SkillLevel: skill,
	}, nil
}

// Key derives the cache identity for this request.
func (r TopicRequest) Key() CacheKey {
	return DeriveKey(r.Topic, r.Dimension, r.SkillLevel.String())
}

// ContentArtifact is a generated article, immutable once written.
// A later request for the same key is always served the stored value:
// no re-generation, no TTL, no in-place update.
type ContentArtifact struct {
	Topic            string     `json:"topic"`
	Dimension        string     `json:"dimension"`
	SkillLevel       SkillLevel `json:"skill_level"`
	Body             string     `json:"body"`
	WordCount        int        `json:"word_count"`
	ReadabilityScore float64    `json:"readability_score"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewContentArtifact builds an artifact from a generated body, computing
// the word count (whitespace-delimited tokens) and readability score.
func NewContentArtifact(req TopicRequest, body string, createdAt time.Time) *ContentArtifact {
	return &ContentArtifact{
		Topic:            req.Topic,
		Dimension:        req.Dimension,
		SkillLevel:       req.SkillLevel,
		Body:             body,
		WordCount:        len(strings.Fields(body)),
		ReadabilityScore: FleschReadingEase(body),
		CreatedAt:        createdAt,
	}
}

// FallbackDimensions is the fixed dimension list substituted whenever
// dimension generation fails or returns a malformed count.
var FallbackDimensions = []string{"Science", "History", "Geography", "Culture", "Environment"}

// DimensionCount is the exact number of dimensions a topic exploration returns.
const DimensionCount = 5
