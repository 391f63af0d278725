// Package http implements the REST API for CurioLab.
package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/curiolab/curio-hub/internal/application/command"
	"github.com/curiolab/curio-hub/internal/application/query"
	"github.com/curiolab/curio-hub/internal/infrastructure/service"
	"github.com/curiolab/curio-hub/internal/interface/http/handlers"
)

// articleImageCount is how many curated illustrations accompany an article.
const articleImageCount = 3

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "CurioLab API",
		"version":     "v1",
		"description": "Skill-scoped educational articles with narration audio",
		"endpoints": map[string]string{
			"health":     "/health",
			"dimensions": "/api/v1/dimensions",
			"content":    "/api/v1/content",
			"audio":      "/api/v1/audio",
			"progress":   "/api/v1/progress",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister handles POST /api/v1/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterUserHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration is not configured")
		return
	}

	var req authRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterUserHandler.Handle(r.Context(), command.RegisterUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id": result.UserID,
		"email":   result.Email,
		"token":   result.Token,
	})
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.LoginUserHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Login is not configured")
		return
	}

	var req authRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.LoginUserHandler.Handle(r.Context(), command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": result.UserID,
		"token":   result.Token,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type dimensionsRequest struct {
	Topic string `json:"topic"`
}

// handleGenerateDimensions handles POST /api/v1/dimensions
func (s *Server) handleGenerateDimensions(w http.ResponseWriter, r *http.Request) {
	var req dimensionsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.GenerateDimensionsHandler.Handle(r.Context(), command.GenerateDimensionsCommand{
		Topic: req.Topic,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topic":      result.Topic,
		"dimensions": result.Dimensions,
		"fallback":   result.Fallback,
	})
}

type contentRequest struct {
	Topic      string `json:"topic"`
	Dimension  string `json:"dimension"`
	SkillLevel string `json:"skill_level"`
}

// handleGenerateContent handles POST /api/v1/content
func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.GenerateContentHandler.Handle(r.Context(), command.GenerateContentCommand{
		UserID:     handlers.UserID(r.Context()),
		Topic:      req.Topic,
		Dimension:  req.Dimension,
		SkillLevel: req.SkillLevel,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	artifact := result.Artifact

	var images []service.Image
	if s.deps.ImageCatalog != nil {
		images = s.deps.ImageCatalog.ImagesFor(artifact.Topic, articleImageCount)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topic":             artifact.Topic,
		"dimension":         artifact.Dimension,
		"skill_level":       artifact.SkillLevel,
		"content":           artifact.Body,
		"word_count":        artifact.WordCount,
		"readability_score": artifact.ReadabilityScore,
		"created_at":        artifact.CreatedAt,
		"cached":            result.Cached,
		"images":            images,
	})
}

// handleSynthesizeAudio handles POST /api/v1/audio.
// The response is the raw MP3 payload, not the JSON envelope. When the source
// article was resolved through the any-skill fallback, the
// X-Resolved-Via-Fallback header is set so clients can surface it.
func (s *Server) handleSynthesizeAudio(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.deps.SynthesizeAudioHandler.Handle(r.Context(), command.SynthesizeAudioCommand{
		UserID:     handlers.UserID(r.Context()),
		Topic:      req.Topic,
		Dimension:  req.Dimension,
		SkillLevel: req.SkillLevel,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	if result.ResolvedViaFallback {
		w.Header().Set("X-Resolved-Via-Fallback", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Audio)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type progressRequest struct {
	Topic            string `json:"topic"`
	Dimension        string `json:"dimension"`
	SkillLevel       string `json:"skill_level"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
	AudioPlayed      *bool  `json:"audio_played"`
}

// handleRecordProgress handles POST /api/v1/progress
func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecordProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress tracking is not configured")
		return
	}

	var req progressRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	err := s.deps.RecordProgressHandler.Handle(r.Context(), command.RecordProgressCommand{
		UserID:           handlers.UserID(r.Context()),
		Topic:            req.Topic,
		Dimension:        req.Dimension,
		SkillLevel:       req.SkillLevel,
		TimeSpentSeconds: req.TimeSpentSeconds,
		AudioPlayed:      req.AudioPlayed,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetProgress handles GET /api/v1/progress
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress tracking is not configured")
		return
	}

	result, err := s.deps.GetProgressHandler.Handle(r.Context(), query.GetProgressQuery{
		UserID: handlers.UserID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleCacheStats handles GET /api/v1/cache/stats
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.GetCacheStatsHandler.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DECODING
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON decodes a JSON request body into dst, writing a 400 response and
// returning false on malformed input.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Could not read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return false
	}

	return true
}
