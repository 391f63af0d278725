package content

import "context"

// CacheStats reports diagnostics about the artifact store.
type CacheStats struct {
	ArtifactCount int   `json:"artifact_count"`
	TotalBytes    int64 `json:"total_bytes"`
}

// Store defines the artifact cache the orchestrator writes through to.
// Implemented by the infrastructure layer; the domain has no knowledge of
// the actual storage mechanism.
//
// Error contract: absent entries surface as shared.ErrNotFound; I/O failures
// and corrupt stored artifacts surface as shared.ErrCacheUnavailable, which
// readers treat as a miss. Caching is an optimization, never a correctness
// dependency.
type Store interface {
	// LookupText returns the stored article for a key.
	LookupText(ctx context.Context, key CacheKey) (*ContentArtifact, error)

	// PutText persists an article. Artifacts are immutable: a second write
	// for the same key is allowed but callers never issue one after a hit.
	PutText(ctx context.Context, key CacheKey, artifact *ContentArtifact) error

	// LookupAudio returns the stored narration bytes for a key.
	LookupAudio(ctx context.Context, key CacheKey) ([]byte, error)

	// PutAudio persists raw narration audio for a key.
	PutAudio(ctx context.Context, key CacheKey, audio []byte) error

	// FindAnyText scans stored articles whose normalized topic and dimension
	// match the given values regardless of skill label, returning the one
	// with the latest CreatedAt. Used only by the audio path as a tolerant
	// fallback.
	FindAnyText(ctx context.Context, topic, dimension string) (*ContentArtifact, error)

	// Stats returns the number of cached articles and their aggregate size.
	Stats(ctx context.Context) (CacheStats, error)
}
