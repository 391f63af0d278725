package progress

import "context"

// Repository defines the interface for progress persistence.
// Implemented by the infrastructure layer with upsert semantics matching
// Record.Merge: max time, sticky playback flag, refreshed CompletedAt.
type Repository interface {
	// Upsert inserts or merges a progress update atomically.
	Upsert(ctx context.Context, update Update) error

	// ListByUser returns all progress records for a user, most recent first.
	ListByUser(ctx context.Context, userID string) ([]*Record, error)
}
