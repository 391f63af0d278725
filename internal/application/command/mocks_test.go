package command

import (
	"context"
	"io"
	"sync"

	"github.com/curiolab/curio-hub/internal/domain/content"
	"github.com/curiolab/curio-hub/internal/domain/progress"
	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
}

// fakeGenerator implements TextGenerator with a programmable response.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	fn    func(systemPrompt, userPrompt string) (string, error)
}

func (f *fakeGenerator) GenerateText(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(systemPrompt, userPrompt)
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSynthesizer implements SpeechSynthesizer with a programmable response.
type fakeSynthesizer struct {
	mu    sync.Mutex
	calls int
	texts []string
	fn    func(text string) ([]byte, error)
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return f.fn(text)
}

func (f *fakeSynthesizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeStore is an in-memory content.Store keyed by cache-key hash, with
// injectable errors per operation.
type fakeStore struct {
	mu    sync.Mutex
	texts map[string]*content.ContentArtifact
	audio map[string][]byte

	lookupTextErr error
	putTextErr    error
	findAnyErr    error

	putTextCalls int
	putAudioErrs error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		texts: make(map[string]*content.ContentArtifact),
		audio: make(map[string][]byte),
	}
}

func (f *fakeStore) LookupText(_ context.Context, key content.CacheKey) (*content.ContentArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupTextErr != nil {
		return nil, f.lookupTextErr
	}
	if a, ok := f.texts[key.Hash]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeStore) PutText(_ context.Context, key content.CacheKey, artifact *content.ContentArtifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putTextCalls++
	if f.putTextErr != nil {
		return f.putTextErr
	}
	f.texts[key.Hash] = artifact
	return nil
}

func (f *fakeStore) LookupAudio(_ context.Context, key content.CacheKey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.audio[key.Hash]; ok {
		return b, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeStore) PutAudio(_ context.Context, key content.CacheKey, audio []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putAudioErrs != nil {
		return f.putAudioErrs
	}
	f.audio[key.Hash] = audio
	return nil
}

func (f *fakeStore) FindAnyText(_ context.Context, topic, dimension string) (*content.ContentArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findAnyErr != nil {
		return nil, f.findAnyErr
	}
	var latest *content.ContentArtifact
	for _, a := range f.texts {
		key := content.DeriveKey(a.Topic, a.Dimension, a.SkillLevel.String())
		if key.Topic != topic || key.Dimension != dimension {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	return latest, nil
}

func (f *fakeStore) Stats(_ context.Context) (content.CacheStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return content.CacheStats{ArtifactCount: len(f.texts)}, nil
}

func (f *fakeStore) textCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

// fakeProgressRepo records upserts and can fail on demand.
type fakeProgressRepo struct {
	mu        sync.Mutex
	upserts   []progress.Update
	upsertErr error
	records   []*progress.Record
}

func (f *fakeProgressRepo) Upsert(_ context.Context, update progress.Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, update)
	return nil
}

func (f *fakeProgressRepo) ListByUser(_ context.Context, _ string) ([]*progress.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, nil
}

func (f *fakeProgressRepo) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func (f *fakeProgressRepo) lastUpsert() progress.Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts[len(f.upserts)-1]
}

// fakeDimensionCache is an in-memory DimensionCache.
type fakeDimensionCache struct {
	mu      sync.Mutex
	entries map[string][]string
	getErr  error
	setErr  error
	sets    int
}

func newFakeDimensionCache() *fakeDimensionCache {
	return &fakeDimensionCache{entries: make(map[string][]string)}
}

func (f *fakeDimensionCache) GetDimensions(_ context.Context, topic string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if dims, ok := f.entries[topic]; ok {
		return dims, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeDimensionCache) SetDimensions(_ context.Context, topic string, dimensions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[topic] = dimensions
	return nil
}
