// internal/cache/store.go
package cache

import (
	"context"
	"errors"
	"time"

	"creative-pipeline/internal/models"
)

// ErrNotFound is returned by a DurableStore when no row exists for a
// fingerprint.
var ErrNotFound = errors.New("cache: entry not found")

// DurableStore is the authoritative second tier of the result cache. The
// in-process map in front of it is only a fast-path copy. Absence of a
// configured store degrades the cache to memory-only operation.
type DurableStore interface {
	Get(ctx context.Context, fingerprint string) (*models.CacheEntry, error)
	Put(ctx context.Context, entry *models.CacheEntry) error
	Delete(ctx context.Context, fingerprint string) error
	RecordHit(ctx context.Context, entry *models.CacheEntry) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
