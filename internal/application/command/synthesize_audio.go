package command

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/curiolab/curio-hub/internal/domain/content"
	"github.com/curiolab/curio-hub/internal/domain/progress"
	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/pkg/logger"
	"github.com/curiolab/curio-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNTHESIZE AUDIO COMMAND
// Serves narration audio for an article. Source text must already exist:
// synthesis never runs on topic/dimension alone, so narration can never be
// disconnected from what the learner actually read. Playback progress is
// recorded on every successful resolution, including cache hits.
// ══════════════════════════════════════════════════════════════════════════════

// Resolution sources for the audio path.
const (
	ResolvedExact    = "exact"
	ResolvedFallback = "fallback"
)

// SynthesizeAudioCommand contains the data to serve narration audio.
type SynthesizeAudioCommand struct {
	// UserID identifies the authenticated learner, for progress bookkeeping.
	UserID string

	Topic      string
	Dimension  string
	SkillLevel string
}

// SynthesizeAudioResult contains the narration audio.
type SynthesizeAudioResult struct {
	// Audio is the raw MP3 payload.
	Audio []byte

	// ResolvedViaFallback reports that the source text was located through
	// the tolerant any-skill lookup rather than an exact key hit.
	ResolvedViaFallback bool

	// Cached reports whether the audio was served without a synthesis call.
	Cached bool
}

// SynthesizeAudioHandler handles the SynthesizeAudioCommand.
type SynthesizeAudioHandler struct {
	synthesizer  SpeechSynthesizer
	store        content.Store
	progressRepo progress.Repository
	log          *logger.Logger

	// flights coalesces concurrent synthesis per cache key.
	flights singleflight.Group

	synthRetrier *retry.Retrier
	dbRetrier    *retry.Retrier

	now func() time.Time
}

// NewSynthesizeAudioHandler creates a new SynthesizeAudioHandler.
// The progress repository may be nil, which disables playback bookkeeping.
func NewSynthesizeAudioHandler(
	synthesizer SpeechSynthesizer,
	store content.Store,
	progressRepo progress.Repository,
	log *logger.Logger,
) *SynthesizeAudioHandler {
	return &SynthesizeAudioHandler{
		synthesizer:  synthesizer,
		store:        store,
		progressRepo: progressRepo,
		log:          log,
		synthRetrier: retry.SynthesisRetrier(),
		dbRetrier:    retry.DatabaseRetrier(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes the synthesize audio command.
func (h *SynthesizeAudioHandler) Handle(ctx context.Context, cmd SynthesizeAudioCommand) (*SynthesizeAudioResult, error) {
	req, err := content.NewTopicRequest(cmd.Topic, cmd.Dimension, cmd.SkillLevel)
	if err != nil {
		return nil, err
	}

	source, resolvedVia, err := h.resolveSource(ctx, cmd, req)
	if err != nil {
		return nil, err
	}

	key := req.Key()

	type flightResult struct {
		audio  []byte
		cached bool
	}

	v, err, _ := h.flights.Do(key.Hash, func() (interface{}, error) {
		audio, err := h.store.LookupAudio(ctx, key)
		if err == nil {
			return flightResult{audio: audio, cached: true}, nil
		}
		if !shared.IsNotFound(err) && !shared.IsCacheUnavailable(err) {
			return flightResult{}, err
		}

		audio, err = h.synthesize(ctx, key, source)
		if err != nil {
			return flightResult{}, err
		}
		return flightResult{audio: audio, cached: false}, nil
	})
	if err != nil {
		return nil, err
	}

	res := v.(flightResult)

	// Playback, not generation, is the signal being tracked: record it even
	// when the audio came from cache.
	h.recordPlayback(ctx, cmd.UserID, req)

	h.log.Info("audio served",
		logger.Topic(req.Topic),
		logger.Dimension(req.Dimension),
		logger.SkillLevel(req.SkillLevel.String()),
		logger.AudioBytes(len(res.audio)),
		logger.ResolvedVia(resolvedVia),
		logger.Bool("cached", res.cached))

	return &SynthesizeAudioResult{
		Audio:               res.audio,
		ResolvedViaFallback: resolvedVia == ResolvedFallback,
		Cached:              res.cached,
	}, nil
}

// resolveSource locates the article to narrate. Resolution order: the key
// derived from the request's literal skill label, the key for the canonical
// label, then the tolerant any-skill lookup. Nothing resolving surfaces as
// ContentNotFound so the caller can instruct the user to generate text first.
func (h *SynthesizeAudioHandler) resolveSource(ctx context.Context, cmd SynthesizeAudioCommand, req content.TopicRequest) (*content.ContentArtifact, string, error) {
	candidates := []content.CacheKey{
		content.DeriveKey(cmd.Topic, cmd.Dimension, cmd.SkillLevel),
		req.Key(),
	}

	seen := make(map[string]bool, len(candidates))
	for _, key := range candidates {
		if seen[key.Hash] {
			continue
		}
		seen[key.Hash] = true

		artifact, err := h.store.LookupText(ctx, key)
		if err == nil {
			return artifact, ResolvedExact, nil
		}
		if !shared.IsNotFound(err) && !shared.IsCacheUnavailable(err) {
			return nil, "", err
		}
	}

	key := req.Key()
	artifact, err := h.store.FindAnyText(ctx, key.Topic, key.Dimension)
	if err != nil {
		if shared.IsNotFound(err) || shared.IsCacheUnavailable(err) {
			return nil, "", shared.ErrContentNotFound
		}
		return nil, "", err
	}

	h.log.Info("audio source resolved via fallback",
		logger.Topic(req.Topic),
		logger.Dimension(req.Dimension),
		logger.SkillLevel(artifact.SkillLevel.String()))

	return artifact, ResolvedFallback, nil
}

// synthesize cleans the article body, invokes the synthesis capability with
// retries, and caches the audio before returning. A cache write failure is
// logged and ignored.
func (h *SynthesizeAudioHandler) synthesize(ctx context.Context, key content.CacheKey, source *content.ContentArtifact) ([]byte, error) {
	cleaned := content.CleanForNarration(source.Body)

	var audio []byte
	err := h.synthRetrier.Do(ctx, func(ctx context.Context) error {
		out, err := h.synthesizer.Synthesize(ctx, cleaned)
		if err != nil {
			if shared.IsRetryable(err) {
				return retry.Retryable(err)
			}
			return err
		}
		audio = out
		return nil
	})
	if err != nil {
		return nil, shared.WrapError("content", "Synthesize", shared.ErrExternalService,
			"speech synthesis failed", err)
	}

	if err := h.store.PutAudio(ctx, key, audio); err != nil {
		h.log.Warn("audio cache write failed", logger.CacheKey(key.Slug), logger.Err(err))
	}

	return audio, nil
}

// recordPlayback upserts a sticky audioPlayed flag for the learner. Storage
// failure is logged and swallowed; it never fails the audio response.
func (h *SynthesizeAudioHandler) recordPlayback(ctx context.Context, userID string, req content.TopicRequest) {
	if h.progressRepo == nil || userID == "" {
		return
	}

	played := true
	update := progress.Update{
		UserID:      userID,
		Topic:       req.Topic,
		Dimension:   req.Dimension,
		SkillLevel:  req.SkillLevel.String(),
		AudioPlayed: &played,
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
