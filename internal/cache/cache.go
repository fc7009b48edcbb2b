// internal/cache/cache.go
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "creative-pipeline/internal/common/errors"
	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/common/metrics"
	"creative-pipeline/internal/models"
)

// Options configure a Cache.
type Options struct {
	TTL               time.Duration
	CostPerGeneration float64
}

// Cache is the dual-tier result cache: an in-process map backed by an
// optional durable store. Only gate-passing results are admitted. There is
// deliberately no cross-request locking around lookup-then-generate;
// identical concurrent requests may both miss and both generate.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*models.CacheEntry

	store  DurableStore // nil means memory-only
	ttl    time.Duration
	cost   float64
	logger logger.Logger
	clock  func() time.Time

	hits   int64
	misses int64
}

// New builds a Cache. store may be nil for memory-only operation.
func New(store DurableStore, opts Options, log logger.Logger) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		entries: make(map[string]*models.CacheEntry),
		store:   store,
		ttl:     ttl,
		cost:    opts.CostPerGeneration,
		logger:  log,
		clock:   time.Now,
	}
}

// Get returns the cached entry for the request, or nil on a miss. An entry
// past its expiry is purged from both tiers and reported as a miss.
func (c *Cache) Get(ctx context.Context, req *models.Request) *models.CacheEntry {
	fp := Fingerprint(req)
	now := c.clock()

	c.mu.RLock()
	entry, ok := c.entries[fp]
	c.mu.RUnlock()

	if ok {
		if entry.Expired(now) {
			c.evict(ctx, fp)
			c.miss()
			return nil
		}
		c.recordHit(ctx, entry, now)
		metrics.CacheHits.WithLabelValues("memory").Inc()
		return entry
	}

	if c.store == nil {
		c.miss()
		return nil
	}

	stored, err := c.store.Get(ctx, fp)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			stdErr := apperrors.NewCacheStoreFailedError("get", err)
			c.logger.Warn(stdErr.Message, map[string]interface{}{
				"fingerprint": fp,
				"code":        string(stdErr.Code),
				"details":     stdErr.Details,
			})
		}
		c.miss()
		return nil
	}

	if stored.Expired(now) {
		c.evict(ctx, fp)
		c.miss()
		return nil
	}

	// Durable hit repopulates the fast tier.
	c.mu.Lock()
	c.entries[fp] = stored
	c.mu.Unlock()

	c.recordHit(ctx, stored, now)
	metrics.CacheHits.WithLabelValues("durable").Inc()
	return stored
}

// Set admits a gate-passing result into both tiers and returns the entry.
// Durable tier failures are logged, never propagated.
func (c *Cache) Set(ctx context.Context, req *models.Request, artifact *models.Artifact, qualityScore float64) *models.CacheEntry {
	now := c.clock()
	entry := &models.CacheEntry{
		Fingerprint:  Fingerprint(req),
		OutputRef:    artifact.OutputRef,
		ModelID:      artifact.ModelID,
		QualityScore: qualityScore,
		CreatedAt:    now,
		ExpiresAt:    now.Add(c.ttl),
	}

	c.mu.Lock()
	c.entries[entry.Fingerprint] = entry
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Put(ctx, entry); err != nil {
			stdErr := apperrors.NewCacheStoreFailedError("put", err)
			c.logger.Warn(stdErr.Message, map[string]interface{}{
				"fingerprint": entry.Fingerprint,
				"code":        string(stdErr.Code),
				"details":     stdErr.Details,
			})
		}
	}

	return entry
}

// Invalidate drops the entry for a request from both tiers.
func (c *Cache) Invalidate(ctx context.Context, req *models.Request) {
	c.evict(ctx, Fingerprint(req))
}

// PurgeExpired removes every expired entry from both tiers and returns how
// many were dropped from the memory tier.
func (c *Cache) PurgeExpired(ctx context.Context) int {
	now := c.clock()

	c.mu.Lock()
	removed := 0
	for fp, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, fp)
			removed++
		}
	}
	c.mu.Unlock()

	if c.store != nil {
		if _, err := c.store.PurgeExpired(ctx, now); err != nil {
			c.logger.Warn("cache durable purge failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return removed
}

// Stats reports advisory cache telemetry. Not used by retry logic.
type Stats struct {
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hitRate"`
	CostSaved float64 `json:"costSaved"`
}

// Stats returns a snapshot of cache telemetry.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var saved float64
	for _, entry := range c.entries {
		saved += entry.CostSaved
	}

	s := Stats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		CostSaved: saved,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *Cache) recordHit(ctx context.Context, entry *models.CacheEntry, now time.Time) {
	c.mu.Lock()
	entry.HitCount++
	entry.CostSaved += c.cost
	entry.LastAccessedAt = now
	c.hits++
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.RecordHit(ctx, entry); err != nil {
			c.logger.Debug("cache hit accounting write failed", map[string]interface{}{
				"fingerprint": entry.Fingerprint,
				"error":       err.Error(),
			})
		}
	}
}

func (c *Cache) evict(ctx context.Context, fp string) {
	c.mu.Lock()
	delete(c.entries, fp)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(ctx, fp); err != nil && !errors.Is(err, ErrNotFound) {
			c.logger.Warn("cache durable delete failed", map[string]interface{}{
				"fingerprint": fp,
				"error":       err.Error(),
			})
		}
	}
}

func (c *Cache) miss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	metrics.CacheMisses.Inc()
}
