// Package command contains write operations (CQRS - Commands).
package command

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// CAPABILITY PORTS
// External capabilities the command handlers depend on. Implemented by the
// infrastructure layer (OpenAI client, redis cache, bcrypt, JWT issuer).
// ══════════════════════════════════════════════════════════════════════════════

// TextGenerator is the generative-model capability.
type TextGenerator interface {
	// GenerateText runs one completion with a system instruction and a user
	// prompt, returning the raw generated text.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SpeechSynthesizer is the text-to-speech capability.
type SpeechSynthesizer interface {
	// Synthesize converts cleaned narration text into raw audio bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// DimensionCache caches generated dimension lists per topic, best effort.
// A nil or disabled implementation degrades to always-miss.
type DimensionCache interface {
	// GetDimensions returns the cached labels for a topic, or
	// shared.ErrNotFound on a miss.
	GetDimensions(ctx context.Context, topic string) ([]string, error)

	// SetDimensions stores the labels for a topic.
	SetDimensions(ctx context.Context, topic string, dimensions []string) error
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// TokenIssuer issues signed access tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}
