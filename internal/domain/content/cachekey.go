package content

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxSlugPartLen bounds each slug component so keys stay valid filenames
// on common filesystems even for very long topics.
const maxSlugPartLen = 40

// CacheKey is the stable, collision-resistant identity of one
// (topic, dimension, skill level) artifact pair. Identical semantic inputs
// modulo case and surrounding whitespace always derive the same key.
// The same slug addresses both the text and the audio artifact.
type CacheKey struct {
	Hash string // full sha256 hex digest
	Slug string // filesystem-safe path component

	// Normalized source strings, kept for auditability.
	Topic     string
	Dimension string
	Skill     string
}

// DeriveKey derives the cache identity for a topic, dimension and skill label.
// The skill label is normalized like any other component, so casing variants
// of the same label converge on one key.
func DeriveKey(topic, dimension, skillLabel string) CacheKey {
	normTopic := normalize(topic)
	normDimension := normalize(dimension)
	normSkill := normalize(skillLabel)

	sum := sha256.Sum256([]byte(normTopic + "-" + normDimension + "-" + normSkill))
	hash := hex.EncodeToString(sum[:])

	slug := slugify(normTopic) + "-" + slugify(normDimension) + "-" + slugify(normSkill) + "-" + hash[:8]

	return CacheKey{
		Hash:      hash,
		Slug:      slug,
		Topic:     normTopic,
		Dimension: normDimension,
		Skill:     normSkill,
	}
}

// normalize lower-cases and trims a key component.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// slugify renders a normalized string as a filesystem-safe path component:
// spaces become hyphens, anything outside [a-z0-9-] is dropped, and the
// result is truncated. The hash suffix on the full slug guards against
// collisions introduced by truncation.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	out := b.String()
	if len(out) > maxSlugPartLen {
		out = out[:maxSlugPartLen]
	}
	return out
}
