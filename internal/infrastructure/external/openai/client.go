package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/pkg/circuitbreaker"
	"github.com/curiolab/curio-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// OPENAI CLIENT
// HTTP client for the chat-completions (article and dimension text) and
// audio-speech (narration MP3) endpoints. Every call goes through a circuit
// breaker, a retry loop, and a token-bucket rate limiter, in that order.
// ══════════════════════════════════════════════════════════════════════════════

const (
	defaultBaseURL  = "https://api.openai.com/v1"
	defaultModel    = "gpt-4o-mini"
	defaultTTSModel = "tts-1"
	defaultTTSVoice = "nova"

	chatCompletionsPath = "/chat/completions"
	audioSpeechPath     = "/audio/speech"

	// maxErrorBody bounds how much of an error response is read for logging.
	maxErrorBody = 4 << 10
)

// Config contains OpenAI client configuration.
type Config struct {
	// APIKey is the bearer token. Required.
	APIKey string

	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// Model is the chat model used for article and dimension generation.
	Model string

	// TTSModel is the speech synthesis model.
	TTSModel string

	// TTSVoice is the narration voice.
	TTSVoice string

	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration

	// MaxRetries is the number of attempts per call, including the first.
	MaxRetries int

	// RetryBaseDelay is the initial backoff between attempts.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the backoff between attempts.
	RetryMaxDelay time.Duration

	// RateLimit configures the client-side token bucket.
	RateLimit RateLimiterConfig
}

// DefaultConfig returns a Config with sensible defaults. APIKey must still
// be provided.
func DefaultConfig() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		Model:          defaultModel,
		TTSModel:       defaultTTSModel,
		TTSVoice:       defaultTTSVoice,
		RequestTimeout: 60 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 500 * time.Millisecond,
		RetryMaxDelay:  10 * time.Second,
		RateLimit:      DefaultRateLimiterConfig(),
	}
}

// Client calls the OpenAI API. It implements the application layer's
// TextGenerator and SpeechSynthesizer capabilities.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger

	rateLimiter *RateLimiter
	retrier     *retry.Retrier

	// Text generation and speech synthesis fail independently, so each
	// endpoint gets its own breaker.
	textBreaker   *circuitbreaker.CircuitBreaker
	speechBreaker *circuitbreaker.CircuitBreaker
}

// NewClient creates a new OpenAI API client.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.TTSModel == "" {
		config.TTSModel = defaultTTSModel
	}
	if config.TTSVoice == "" {
		config.TTSVoice = defaultTTSVoice
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 60 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = 500 * time.Millisecond
	}
	if config.RetryMaxDelay <= 0 {
		config.RetryMaxDelay = 10 * time.Second
	}
	if config.RateLimit.RequestsPerMinute <= 0 {
		config.RateLimit = DefaultRateLimiterConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	onStateChange := func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed",
			slog.String("breaker", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()))
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		logger:        logger,
		rateLimiter:   NewRateLimiter(config.RateLimit),
		textBreaker:   circuitbreaker.GenerationBreaker(onStateChange),
		speechBreaker: circuitbreaker.SynthesisBreaker(onStateChange),
	}

	c.retrier = retry.New(
		retry.WithMaxAttempts(config.MaxRetries),
		retry.WithInitialDelay(config.RetryBaseDelay),
		retry.WithMaxDelay(config.RetryMaxDelay),
		retry.WithMultiplier(2.0),
		retry.WithJitter(0.2),
		retry.WithRetryIf(isTransient),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn("retrying provider request",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()))
		}),
	)

	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE TYPES
// ══════════════════════════════════════════════════════════════════════════════

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ══════════════════════════════════════════════════════════════════════════════
// TEXT GENERATION
// ══════════════════════════════════════════════════════════════════════════════

// GenerateText sends a system and user prompt to the chat endpoint and
// returns the model's reply text.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()

	var reply string
	err := c.textBreaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			out, err := c.chatCompletion(ctx, systemPrompt, userPrompt)
			if err != nil {
				return err
			}
			reply = out
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return "", shared.WrapError("openai", "GenerateText", shared.ErrServiceUnavailable,
				"generation circuit is open", err)
		}
		return "", err
	}

	c.logger.Debug("chat completion succeeded",
		slog.Int("reply_chars", len(reply)),
		slog.Duration("latency", time.Since(start)))

	return reply, nil
}

func (c *Client) chatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.rateLimiter.Allow(ctx); err != nil {
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			return "", shared.WrapError("openai", "GenerateText", shared.ErrRateLimited,
				"client-side rate limit exhausted", err)
		}
		return "", err
	}

	reqBody := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}

	respBody, err := c.doJSON(ctx, chatCompletionsPath, reqBody)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", shared.WrapError("openai", "GenerateText", shared.ErrInvalidFormat,
			"chat response decode failed", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", shared.ErrProviderInvalidResponse
	}

	return parsed.Choices[0].Message.Content, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SPEECH SYNTHESIS
// ══════════════════════════════════════════════════════════════════════════════

// Synthesize converts narration text to MP3 audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	start := time.Now()

	var audio []byte
	err := c.speechBreaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			out, err := c.speech(ctx, text)
			if err != nil {
				return err
			}
			audio = out
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return nil, shared.WrapError("openai", "Synthesize", shared.ErrServiceUnavailable,
				"synthesis circuit is open", err)
		}
		return nil, err
	}

	c.logger.Debug("speech synthesis succeeded",
		slog.Int("input_chars", len(text)),
		slog.Int("audio_bytes", len(audio)),
		slog.Duration("latency", time.Since(start)))

	return audio, nil
}

func (c *Client) speech(ctx context.Context, text string) ([]byte, error) {
	if err := c.rateLimiter.Allow(ctx); err != nil {
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			return nil, shared.WrapError("openai", "Synthesize", shared.ErrRateLimited,
				"client-side rate limit exhausted", err)
		}
		return nil, err
	}

	reqBody := speechRequest{
		Model:          c.config.TTSModel,
		Input:          text,
		Voice:          c.config.TTSVoice,
		ResponseFormat: "mp3",
	}

	audio, err := c.doJSON(ctx, audioSpeechPath, reqBody)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, shared.ErrProviderInvalidResponse
	}

	return audio, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST EXECUTION
// ══════════════════════════════════════════════════════════════════════════════

// doJSON performs a single POST of the JSON-encoded payload and returns the
// raw response body. Status codes are classified into the shared error
// taxonomy so the retry loop and the application layer can tell transient
// conditions from permanent ones.
func (c *Client) doJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.classifyStatus(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.WrapError("openai", "Request", shared.ErrServiceUnavailable,
			"response read failed", err)
	}

	return body, nil
}

// classifyStatus maps a non-2xx response to the shared error taxonomy.
func (c *Client) classifyStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(body))
	var parsed apiError
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}

	c.logger.Warn("provider request failed",
		slog.Int("status", resp.StatusCode),
		slog.String("message", message))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.rateLimiter.RecordRateLimitHit()
		return shared.WrapError("openai", "Request", shared.ErrRateLimited, message, shared.ErrProviderRateLimited)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return shared.WrapError("openai", "Request", shared.ErrUnauthorized,
			"provider rejected credentials", nil)

	case resp.StatusCode >= 500:
		return shared.WrapError("openai", "Request", shared.ErrServiceUnavailable, message, shared.ErrProviderUnavailable)

	default:
		return shared.WrapError("openai", "Request", shared.ErrExternalService,
			fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, message), nil)
	}
}

// classifyTransportError maps network-level failures. Timeouts and connection
// errors are transient.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return shared.WrapError("openai", "Request", shared.ErrTimeout,
			"provider request timed out", err)
	}

	return shared.WrapError("openai", "Request", shared.ErrServiceUnavailable,
		"provider request failed", err)
}

// isTransient reports whether a request error is worth retrying.
func isTransient(err error) bool {
	return shared.IsRetryable(err) || errors.Is(err, shared.ErrRateLimited)
}
