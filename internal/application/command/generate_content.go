package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/curiolab/curio-hub/internal/domain/content"
	"github.com/curiolab/curio-hub/internal/domain/progress"
	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/pkg/logger"
	"github.com/curiolab/curio-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE CONTENT COMMAND
// Serves a skill-scoped article for (topic, dimension, skill level): cache hit
// returns the stored artifact byte-identically with no provider call; a miss
// generates, writes through, and returns. Concurrent identical requests are
// coalesced so at most one provider call and one write occurs per key.
// ══════════════════════════════════════════════════════════════════════════════

const contentSystemPromptFmt = `You are an expert children's educational writer who creates engaging, safe, age-appropriate magazine-style content like National Geographic Kids or Highlights.

CRITICAL SAFETY REQUIREMENTS:
- Content must be 100%% safe and appropriate for children ages 8-18
- NO violence, weapons, death, injury, scary or disturbing content
- NO inappropriate, sexual, or mature themes whatsoever
- NO political controversy, divisive topics, or sensitive current events
- NO graphic descriptions or frightening scenarios
- Focus only on positive, educational, inspiring, and uplifting content
- Use encouraging, wonder-filled language that builds curiosity safely
- If any aspect of the topic could be inappropriate, focus only on safe educational angles

SKILL LEVEL: %s
TOPIC: %s - %s

CONTENT REQUIREMENTS:
- Write EXACTLY %s total words (this is crucial!)
- Create %s with clear section headings
- Structure like a children's magazine article with multiple sections
- Use %s
- Keep sentences to %s
- Use %s

LEVEL SCOPING (CRITICAL FOR NON-OVERLAP):
- Focus on: %s
- Avoid: %s

WRITING STYLE:
- Write like you're talking to curious, intelligent kids
- Use vivid descriptions and imagery that paint pictures in their minds
- Include surprising facts, cool examples, and "wow" moments
- Make complex ideas accessible through analogies kids understand
- Balance education with entertainment - make learning FUN!`

const contentUserPromptFmt = `Write a fascinating magazine article about %s focusing on the %s aspects.

REQUIREMENTS:
- Make it perfect for %s-level readers who are curious about %s
- Focus specifically on %s aspects of %s
- Include multiple sections with clear headings
- Add surprising facts and "did you know?" moments
- Use vivid descriptions that help kids visualize what you're describing
- Include real examples and stories that connect to their world

STRUCTURE YOUR ARTICLE:
1. **Catchy opening** that hooks the reader immediately
2. **Main sections** with subheadings covering different %s aspects of %s
3. **Fun facts section** with amazing details kids will want to share
4. **Inspiring conclusion** that makes them want to learn more`

// GenerateContentCommand contains the data to serve an article.
type GenerateContentCommand struct {
	// UserID identifies the authenticated learner, for progress bookkeeping.
	UserID string

	// Topic is the free-text topic.
	Topic string

	// Dimension is the educational angle, usually one of the generated five.
	Dimension string

	// SkillLevel is the content-depth tier label, parsed case-insensitively.
	SkillLevel string
}

// GenerateContentResult contains the served article.
type GenerateContentResult struct {
	Artifact *content.ContentArtifact

	// Cached reports whether the article was served from the store without
	// a provider call.
	Cached bool
}

// GenerateContentHandler handles the GenerateContentCommand.
type GenerateContentHandler struct {
	generator    TextGenerator
	store        content.Store
	progressRepo progress.Repository
	log          *logger.Logger

	// flights coalesces concurrent generation per cache key.
	flights singleflight.Group

	// dbRetrier retries the best-effort progress write.
	dbRetrier *retry.Retrier

	now func() time.Time
}

// NewGenerateContentHandler creates a new GenerateContentHandler.
// The progress repository may be nil, which disables view bookkeeping.
func NewGenerateContentHandler(
	generator TextGenerator,
	store content.Store,
	progressRepo progress.Repository,
	log *logger.Logger,
) *GenerateContentHandler {
	return &GenerateContentHandler{
		generator:    generator,
		store:        store,
		progressRepo: progressRepo,
		log:          log,
		dbRetrier:    retry.DatabaseRetrier(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes the generate content command.
func (h *GenerateContentHandler) Handle(ctx context.Context, cmd GenerateContentCommand) (*GenerateContentResult, error) {
	req, err := content.NewTopicRequest(cmd.Topic, cmd.Dimension, cmd.SkillLevel)
	if err != nil {
		return nil, err
	}

	key := req.Key()

	type flightResult struct {
		artifact *content.ContentArtifact
		cached   bool
	}

	v, err, _ := h.flights.Do(key.Hash, func() (interface{}, error) {
		// Cache hit: the stored artifact is served as-is, no provider call.
		artifact, err := h.store.LookupText(ctx, key)
		if err == nil {
			return flightResult{artifact: artifact, cached: true}, nil
		}
		if !shared.IsNotFound(err) && !shared.IsCacheUnavailable(err) {
			return flightResult{}, err
		}
		if shared.IsCacheUnavailable(err) {
			h.log.Warn("cache read degraded to miss", logger.CacheKey(key.Slug), logger.Err(err))
		}

		artifact, err = h.generate(ctx, req, key)
		if err != nil {
			return flightResult{}, err
		}
		return flightResult{artifact: artifact, cached: false}, nil
	})
	if err != nil {
		return nil, err
	}

	res := v.(flightResult)

	// View bookkeeping, fire-and-forget relative to the response.
	h.recordView(ctx, cmd.UserID, req)

	return &GenerateContentResult{Artifact: res.artifact, Cached: res.cached}, nil
}

// generate invokes the provider, derives word count and readability, and
// writes the artifact through to the store before returning. A provider
// failure propagates as GenerationFailed because content is the primary
// deliverable; a store write failure is logged and ignored.
func (h *GenerateContentHandler) generate(ctx context.Context, req content.TopicRequest, key content.CacheKey) (*content.ContentArtifact, error) {
	start := h.now()
	g := req.SkillLevel.Guidance()

	systemPrompt := fmt.Sprintf(contentSystemPromptFmt,
		req.SkillLevel, req.Topic, req.Dimension,
		g.TargetWords, g.Paragraphs, g.Vocabulary, g.SentenceLength, g.Examples,
		g.Focus, g.Avoid)

	userPrompt := fmt.Sprintf(contentUserPromptFmt,
		req.Topic, req.Dimension,
		req.SkillLevel, req.Topic,
		req.Dimension, req.Topic,
		req.Dimension, req.Topic)

	body, err := h.generator.GenerateText(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, shared.WrapError("content", "Generate", shared.ErrExternalService,
			"content generation failed", err)
	}

	artifact := content.NewContentArtifact(req, body, h.now())

	if err := h.store.PutText(ctx, key, artifact); err != nil {
		h.log.Warn("cache write failed", logger.CacheKey(key.Slug), logger.Err(err))
	}

	h.log.Info("content generated",
		logger.Topic(req.Topic),
		logger.Dimension(req.Dimension),
		logger.SkillLevel(req.SkillLevel.String()),
		logger.WordCount(artifact.WordCount),
		logger.Latency(h.now().Sub(start)))

	return artifact, nil
}

// recordView upserts a view row for the learner. Storage failure is logged
// and swallowed; it never fails the content response.
func (h *GenerateContentHandler) recordView(ctx context.Context, userID string, req content.TopicRequest) {
	if h.progressRepo == nil || userID == "" {
		return
	}

	update := progress.Update{
		UserID:     userID,
		Topic:      req.Topic,
		Dimension:  req.Dimension,
		SkillLevel: req.SkillLevel.String(),
	}

	err := h.dbRetrier.Do(ctx, func(ctx context.Context) error {
		if err := h.progressRepo.Upsert(ctx, update); err != nil {
			if shared.IsRetryable(err) {
				return retry.Retryable(err)
			}
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.Warn("progress write failed",
			logger.UserID(userID), logger.Topic(req.Topic), logger.Err(err))
	}
}
