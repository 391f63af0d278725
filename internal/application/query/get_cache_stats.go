package query

import (
	"context"
	"fmt"

	"github.com/curiolab/curio-hub/internal/domain/content"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CACHE STATS QUERY
// Diagnostics: how many articles are cached and their aggregate size.
// ══════════════════════════════════════════════════════════════════════════════

// GetCacheStatsHandler handles cache diagnostics requests.
type GetCacheStatsHandler struct {
	store content.Store
}

// NewGetCacheStatsHandler creates a new GetCacheStatsHandler.
func NewGetCacheStatsHandler(store content.Store) *GetCacheStatsHandler {
	return &GetCacheStatsHandler{store: store}
}

// Handle executes the query.
func (h *GetCacheStatsHandler) Handle(ctx context.Context) (*content.CacheStats, error) {
	stats, err := h.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_cache_stats: %w", err)
	}
	return &stats, nil
}
