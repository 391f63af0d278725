package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/curiolab/curio-hub/internal/domain/content"
	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE DIMENSIONS COMMAND
// Produces exactly 5 educational dimensions for a topic. Never fails outward:
// any provider error or malformed result substitutes the fixed fallback list.
// ══════════════════════════════════════════════════════════════════════════════

const dimensionSystemPrompt = `You are an educational content expert who creates safe, age-appropriate content for children. For the given topic, generate exactly 5 educational dimensions that would be interesting and appropriate for young learners.

SAFETY REQUIREMENTS (CRITICAL):
- Content must be completely safe and appropriate for children ages 8-18
- NO violence, weapons, death, scary content, or disturbing themes
- NO inappropriate, sexual, or mature themes
- NO political controversy or divisive topics
- Focus on educational, positive, and inspiring aspects only
- If topic seems inappropriate, focus on safe educational angles only

CONTENT REQUIREMENTS:
- Return exactly 5 dimensions
- Each dimension should be 1-2 words (like "Science", "History", "Geography")
- Make them relevant to the topic
- Educational and age-appropriate for young learners
- Diverse perspectives on the topic

Return only a simple comma-separated list, nothing else. Example format:
Science, History, Geography, Culture, Environment`

// GenerateDimensionsCommand contains the data to generate dimensions.
type GenerateDimensionsCommand struct {
	// Topic is the free-text topic a learner wants to explore.
	Topic string
}

// Validate validates the command.
func (c GenerateDimensionsCommand) Validate() error {
	if len(strings.TrimSpace(c.Topic)) < 2 {
		return shared.ErrTopicTooShort
	}
	if !content.IsAppropriate(c.Topic) {
		return shared.ErrTopicNotAppropriate
	}
	return nil
}

// GenerateDimensionsResult contains the generated dimensions.
type GenerateDimensionsResult struct {
	Topic      string
	Dimensions []string

	// Fallback reports whether the fixed fallback list was substituted.
	Fallback bool
}

// GenerateDimensionsHandler handles the GenerateDimensionsCommand.
type GenerateDimensionsHandler struct {
	generator TextGenerator
	cache     DimensionCache
	log       *logger.Logger
}

// NewGenerateDimensionsHandler creates a new GenerateDimensionsHandler.
// The cache may be nil, which disables dimension-list reuse.
func NewGenerateDimensionsHandler(generator TextGenerator, cache DimensionCache, log *logger.Logger) *GenerateDimensionsHandler {
	return &GenerateDimensionsHandler{
		generator: generator,
		cache:     cache,
		log:       log,
	}
}

// Handle executes the generate dimensions command.
func (h *GenerateDimensionsHandler) Handle(ctx context.Context, cmd GenerateDimensionsCommand) (*GenerateDimensionsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	topic := strings.TrimSpace(cmd.Topic)

	// Best-effort cache check so repeat topic exploration skips the provider
	if h.cache != nil {
		if cached, err := h.cache.GetDimensions(ctx, topic); err == nil && len(cached) == content.DimensionCount {
			return &GenerateDimensionsResult{Topic: topic, Dimensions: cached}, nil
		}
	}

	dimensions, fallback := h.generate(ctx, topic)

	if h.cache != nil && !fallback {
		if err := h.cache.SetDimensions(ctx, topic, dimensions); err != nil {
			h.log.Warn("dimension cache write failed", logger.Topic(topic), logger.Err(err))
		}
	}

	return &GenerateDimensionsResult{
		Topic:      topic,
		Dimensions: dimensions,
		Fallback:   fallback,
	}, nil
}

// generate invokes the provider and repairs its output. Any failure or a
// label count other than 5 yields the fixed fallback list.
func (h *GenerateDimensionsHandler) generate(ctx context.Context, topic string) ([]string, bool) {
	userPrompt := fmt.Sprintf("Generate 5 educational dimensions for: %s", topic)

	raw, err := h.generator.GenerateText(ctx, dimensionSystemPrompt, userPrompt)
	if err != nil {
		h.log.Warn("dimension generation failed, using fallback",
			logger.Topic(topic), logger.Err(err))
		return fallbackDimensions(), true
	}

	parts := strings.Split(strings.TrimSpace(raw), ",")
	dimensions := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			dimensions = append(dimensions, trimmed)
		}
	}

	if len(dimensions) != content.DimensionCount {
		h.log.Warn("dimension generation returned malformed count, using fallback",
			logger.Topic(topic), logger.Int("count", len(dimensions)))
		return fallbackDimensions(), true
	}

	return dimensions, false
}

func fallbackDimensions() []string {
	out := make([]string, len(content.FallbackDimensions))
	copy(out, content.FallbackDimensions)
	return out
}
