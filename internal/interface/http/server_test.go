package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiolab/curio-hub/internal/application/command"
	"github.com/curiolab/curio-hub/internal/application/query"
	"github.com/curiolab/curio-hub/internal/infrastructure/persistence/filestore"
	"github.com/curiolab/curio-hub/internal/infrastructure/service"
	"github.com/curiolab/curio-hub/pkg/logger"
)

// stubGenerator returns a fixed article body and dimension list.
type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) GenerateText(_ context.Context, _, _ string) (string, error) {
	return s.text, s.err
}

type stubSynthesizer struct {
	audio []byte
	err   error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return s.audio, s.err
}

// stubVerifier accepts exactly one token.
type stubVerifier struct{}

func (stubVerifier) Verify(token string) (string, string, error) {
	if token == "valid-token" {
		return "user-1", "kid@example.com", nil
	}
	return "", "", errors.New("bad token")
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
}

// newTestServer wires a server against the real filestore and stub providers.
func newTestServer(t *testing.T, gen *stubGenerator, synth *stubSynthesizer, withAuth bool) *Server {
	t.Helper()

	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	log := quietLogger()
	deps := Dependencies{
		GenerateDimensionsHandler: command.NewGenerateDimensionsHandler(gen, nil, log),
		GenerateContentHandler:    command.NewGenerateContentHandler(gen, store, nil, log),
		SynthesizeAudioHandler:    command.NewSynthesizeAudioHandler(synth, store, nil, log),
		GetCacheStatsHandler:      query.NewGetCacheStatsHandler(store),
		ImageCatalog:              service.NewImageCatalog(),
		Logger:                    log,
	}
	if withAuth {
		deps.TokenVerifier = stubVerifier{}
	}

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0 // not under test here
	return NewServer(cfg, deps)
}

func postJSON(t *testing.T, srv *Server, path, token string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDimensionsEndpoint_Public(t *testing.T) {
	gen := &stubGenerator{text: "Science, History, Geography, Culture, Environment"}
	srv := newTestServer(t, gen, &stubSynthesizer{}, true)

	rec := postJSON(t, srv, "/api/v1/dimensions", "", map[string]interface{}{"topic": "dragons"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "dragons", data["topic"])
	assert.Len(t, data["dimensions"], 5)
	assert.Equal(t, false, data["fallback"])
}

func TestDimensionsEndpoint_BlockedTopicIs400(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubSynthesizer{}, true)

	rec := postJSON(t, srv, "/api/v1/dimensions", "", map[string]interface{}{"topic": "guns"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "validation_error", resp.Error.Code)
}

func TestContentEndpoint_RequiresBearerToken(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{text: "article"}, &stubSynthesizer{}, true)

	body := map[string]interface{}{"topic": "dragons", "dimension": "Science", "skill_level": "beginner"}

	rec := postJSON(t, srv, "/api/v1/content", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, srv, "/api/v1/content", "wrong-token", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, srv, "/api/v1/content", "valid-token", body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContentEndpoint_ResponseShape(t *testing.T) {
	gen := &stubGenerator{text: "Dragons are amazing creatures. They appear in many stories."}
	srv := newTestServer(t, gen, &stubSynthesizer{}, true)

	rec := postJSON(t, srv, "/api/v1/content", "valid-token", map[string]interface{}{
		"topic": "dragons", "dimension": "Science", "skill_level": "beginner",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec).Data.(map[string]interface{})

	assert.Equal(t, "dragons", data["topic"])
	assert.Equal(t, gen.text, data["content"])
	assert.Equal(t, float64(9), data["word_count"])
	assert.Equal(t, false, data["cached"])
	assert.NotEmpty(t, data["images"])
	assert.NotNil(t, data["readability_score"])
}

func TestContentEndpoint_SecondRequestIsCached(t *testing.T) {
	gen := &stubGenerator{text: "an article"}
	srv := newTestServer(t, gen, &stubSynthesizer{}, true)

	body := map[string]interface{}{"topic": "dragons", "dimension": "Science", "skill_level": "beginner"}

	first := postJSON(t, srv, "/api/v1/content", "valid-token", body)
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, srv, "/api/v1/content", "valid-token", body)
	require.Equal(t, http.StatusOK, second.Code)

	data := decodeEnvelope(t, second).Data.(map[string]interface{})
	assert.Equal(t, true, data["cached"])
}

func TestContentEndpoint_ProviderFailureIs502(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider exploded")}
	srv := newTestServer(t, gen, &stubSynthesizer{}, true)

	rec := postJSON(t, srv, "/api/v1/content", "valid-token", map[string]interface{}{
		"topic": "dragons", "dimension": "Science", "skill_level": "beginner",
	})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "generation_failed", resp.Error.Code)
	// The upstream detail never reaches the client.
	assert.NotContains(t, resp.Error.Message, "exploded")
}

func TestAudioEndpoint_WithoutSourceTextIs404(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubSynthesizer{audio: []byte("mp3")}, true)

	rec := postJSON(t, srv, "/api/v1/audio", "valid-token", map[string]interface{}{
		"topic": "dragons", "dimension": "Science", "skill_level": "beginner",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "content_not_found", decodeEnvelope(t, rec).Error.Code)
}

func TestAudioEndpoint_ServesRawAudioAfterContent(t *testing.T) {
	gen := &stubGenerator{text: "Dragons are amazing."}
	synth := &stubSynthesizer{audio: []byte{0xFF, 0xFB, 0x01}}
	srv := newTestServer(t, gen, synth, true)

	body := map[string]interface{}{"topic": "dragons", "dimension": "Science", "skill_level": "beginner"}

	rec := postJSON(t, srv, "/api/v1/content", "valid-token", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, srv, "/api/v1/audio", "valid-token", body)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, synth.audio, rec.Body.Bytes())
	assert.Empty(t, rec.Header().Get("X-Resolved-Via-Fallback"))
}

func TestAudioEndpoint_FallbackResolutionSetsHeader(t *testing.T) {
	gen := &stubGenerator{text: "Expert article."}
	synth := &stubSynthesizer{audio: []byte("mp3")}
	srv := newTestServer(t, gen, synth, true)

	// Generate at expert, narrate at beginner.
	rec := postJSON(t, srv, "/api/v1/content", "valid-token", map[string]interface{}{
		"topic": "dragons", "dimension": "Science", "skill_level": "expert",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, srv, "/api/v1/audio", "valid-token", map[string]interface{}{
		"topic": "dragons", "dimension": "Science", "skill_level": "beginner",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Resolved-Via-Fallback"))
}

func TestProgressEndpoints_NotConfiguredIs501(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubSynthesizer{}, true)

	rec := postJSON(t, srv, "/api/v1/progress", "valid-token", map[string]interface{}{
		"topic": "dragons", "dimension": "Science", "skill_level": "beginner", "time_spent_seconds": 60,
	})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestAuthDisabled_ProtectedRoutesPassThrough(t *testing.T) {
	gen := &stubGenerator{text: "an article"}
	srv := newTestServer(t, gen, &stubSynthesizer{}, false)

	rec := postJSON(t, srv, "/api/v1/content", "", map[string]interface{}{
		"topic": "dragons", "dimension": "Science", "skill_level": "beginner",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheStatsEndpoint(t *testing.T) {
	gen := &stubGenerator{text: "an article"}
	srv := newTestServer(t, gen, &stubSynthesizer{}, true)

	rec := postJSON(t, srv, "/api/v1/content", "valid-token", map[string]interface{}{
		"topic": "dragons", "dimension": "Science", "skill_level": "beginner",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	get := httptest.NewRecorder()
	srv.Handler().ServeHTTP(get, req)

	require.Equal(t, http.StatusOK, get.Code)
	data := decodeEnvelope(t, get).Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["artifact_count"])
	assert.Greater(t, data["total_bytes"], float64(0))
}

func TestMalformedJSONIs400(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubSynthesizer{}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dimensions", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubSynthesizer{}, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
