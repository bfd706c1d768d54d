// Package contestcache persists per-user contest-history cache entries.
package contestcache

import (
	"context"
	"errors"

	"github.com/okian/leetlens/internal/domain/model"
)

// Sentinel kinds for cache errors.
var (
	ErrNotFound = errors.New("contest cache entry not found")
)

// Store provides the per-user contest-history cache. One entry per user;
// a failed rebuild must never overwrite or delete an existing entry, so
// Put is only called after a successful rebuild.
type Store interface {
	// Get returns the entry for a user or ErrNotFound.
	Get(ctx context.Context, userID string) (*model.ContestCacheEntry, error)

	// Put upserts the entry keyed by its user id.
	Put(ctx context.Context, entry *model.ContestCacheEntry) error
}
