package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiolab/curio-hub/internal/domain/content"
	"github.com/curiolab/curio-hub/internal/domain/shared"
)

func contentCommand() GenerateContentCommand {
	return GenerateContentCommand{
		UserID:     "user-1",
		Topic:      "dragons",
		Dimension:  "Science",
		SkillLevel: "beginner",
	}
}

func TestGenerateContent_MissGeneratesAndCaches(t *testing.T) {
	gen := &fakeGenerator{fn: func(systemPrompt, userPrompt string) (string, error) {
		assert.Contains(t, systemPrompt, "dragons")
		assert.Contains(t, systemPrompt, "200-300 words")
		assert.Contains(t, userPrompt, "Science")
		return "Dragons are amazing creatures. They appear in many stories.", nil
	}}
	store := newFakeStore()
	repo := &fakeProgressRepo{}
	h := NewGenerateContentHandler(gen, store, repo, testLogger())

	res, err := h.Handle(context.Background(), contentCommand())
	require.NoError(t, err)

	assert.False(t, res.Cached)
	assert.Equal(t, "dragons", res.Artifact.Topic)
	assert.Equal(t, 9, res.Artifact.WordCount)
	assert.Equal(t, 1, gen.callCount())
	assert.Equal(t, 1, store.textCount())
}

func TestGenerateContent_HitServesStoredArtifactVerbatim(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		return "first version of the article", nil
	}}
	store := newFakeStore()
	h := NewGenerateContentHandler(gen, store, nil, testLogger())

	first, err := h.Handle(context.Background(), contentCommand())
	require.NoError(t, err)
	require.False(t, first.Cached)

	// Second request must not reach the provider at all.
	gen.fn = func(_, _ string) (string, error) {
		return "a different article that must never be served", nil
	}

	second, err := h.Handle(context.Background(), contentCommand())
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Artifact.Body, second.Artifact.Body)
	assert.Equal(t, first.Artifact.CreatedAt, second.Artifact.CreatedAt)
	assert.Equal(t, 1, gen.callCount())
}

func TestGenerateContent_SkillLevelsAreSeparateCacheEntries(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		return "an article", nil
	}}
	store := newFakeStore()
	h := NewGenerateContentHandler(gen, store, nil, testLogger())

	beginner := contentCommand()
	expert := contentCommand()
	expert.SkillLevel = "expert"

	_, err := h.Handle(context.Background(), beginner)
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), expert)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.callCount())
	assert.Equal(t, 2, store.textCount())
}

func TestGenerateContent_ValidationErrors(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		t.Fatal("provider must not be called for invalid input")
		return "", nil
	}}
	h := NewGenerateContentHandler(gen, newFakeStore(), nil, testLogger())

	short := contentCommand()
	short.Topic = "a"
	_, err := h.Handle(context.Background(), short)
	assert.ErrorIs(t, err, shared.ErrTopicTooShort)

	blocked := contentCommand()
	blocked.Topic = "guns"
	_, err = h.Handle(context.Background(), blocked)
	assert.ErrorIs(t, err, shared.ErrTopicNotAppropriate)

	badSkill := contentCommand()
	badSkill.SkillLevel = "wizard"
	_, err = h.Handle(context.Background(), badSkill)
	assert.ErrorIs(t, err, shared.ErrInvalidSkillLevel)
}

func TestGenerateContent_ProviderFailureSurfacesAsExternalService(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		return "", shared.ErrProviderUnavailable
	}}
	h := NewGenerateContentHandler(gen, newFakeStore(), nil, testLogger())

	_, err := h.Handle(context.Background(), contentCommand())

	require.Error(t, err)
	assert.True(t, shared.IsExternalService(err))
}

func TestGenerateContent_DegradedCacheReadBecomesMiss(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		return "freshly generated article", nil
	}}
	store := newFakeStore()
	store.lookupTextErr = shared.WrapError("filestore", "LookupText",
		shared.ErrCacheUnavailable, "read failed", errors.New("disk error"))
	h := NewGenerateContentHandler(gen, store, nil, testLogger())

	res, err := h.Handle(context.Background(), contentCommand())

	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, "freshly generated article", res.Artifact.Body)
	assert.Equal(t, 1, gen.callCount())
}

func TestGenerateContent_CacheWriteFailureDoesNotFailResponse(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		return "an article", nil
	}}
	store := newFakeStore()
	store.putTextErr = shared.WrapError("filestore", "PutText",
		shared.ErrCacheUnavailable, "write failed", errors.New("disk full"))
	h := NewGenerateContentHandler(gen, store, nil, testLogger())

	res, err := h.Handle(context.Background(), contentCommand())

	require.NoError(t, err)
	assert.Equal(t, "an article", res.Artifact.Body)
}

func TestGenerateContent_ConcurrentRequestsCoalesce(t *testing.T) {
	release := make(chan struct{})
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		<-release
		return "the single generated article", nil
	}}
	store := newFakeStore()
	h := NewGenerateContentHandler(gen, store, nil, testLogger())

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*GenerateContentResult, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.Handle(context.Background(), contentCommand())
		}(i)
	}

	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "the single generated article", results[i].Artifact.Body)
	}
	assert.Equal(t, 1, gen.callCount())
	assert.Equal(t, 1, store.putTextCalls)
}

func TestGenerateContent_RecordsViewForAuthenticatedUser(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		return "an article", nil
	}}
	repo := &fakeProgressRepo{}
	h := NewGenerateContentHandler(gen, newFakeStore(), repo, testLogger())

	_, err := h.Handle(context.Background(), contentCommand())
	require.NoError(t, err)

	require.Equal(t, 1, repo.upsertCount())
	update := repo.lastUpsert()
	assert.Equal(t, "user-1", update.UserID)
	assert.Equal(t, "dragons", update.Topic)
	assert.Nil(t, update.AudioPlayed)
}

func TestGenerateContent_ProgressWriteFailureIsSwallowed(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		return "an article", nil
	}}
	repo := &fakeProgressRepo{upsertErr: errors.New("database down")}
	h := NewGenerateContentHandler(gen, newFakeStore(), repo, testLogger())

	res, err := h.Handle(context.Background(), contentCommand())

	require.NoError(t, err)
	assert.Equal(t, "an article", res.Artifact.Body)
}

func TestGenerateContent_AnonymousRequestSkipsBookkeeping(t *testing.T) {
	gen := &fakeGenerator{fn: func(_, _ string) (string, error) {
		return "an article", nil
	}}
	repo := &fakeProgressRepo{}
	h := NewGenerateContentHandler(gen, newFakeStore(), repo, testLogger())

	cmd := contentCommand()
	cmd.UserID = ""
	_, err := h.Handle(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, 0, repo.upsertCount())
}

func TestGenerateContent_PromptEmbedsSkillGuidance(t *testing.T) {
	var capturedSystem string
	gen := &fakeGenerator{fn: func(systemPrompt, _ string) (string, error) {
		capturedSystem = systemPrompt
		return "an article", nil
	}}
	h := NewGenerateContentHandler(gen, newFakeStore(), nil, testLogger())

	cmd := contentCommand()
	cmd.SkillLevel = "expert"
	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	g := content.SkillExpert.Guidance()
	assert.Contains(t, capturedSystem, g.TargetWords)
	assert.Contains(t, capturedSystem, g.Focus)
	assert.True(t, strings.Contains(capturedSystem, g.Avoid))
}
