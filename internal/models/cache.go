// internal/models/cache.go
package models

import "time"

// CacheEntry is one cached generation result. The in-process map holds a
// copy; the durable store row is authoritative across restarts.
type CacheEntry struct {
	Fingerprint    string    `json:"fingerprint"`
	OutputRef      string    `json:"outputRef"`
	ModelID        string    `json:"modelId"`
	QualityScore   float64   `json:"qualityScore"`
	HitCount       int64     `json:"hitCount"`
	CostSaved      float64   `json:"costSaved"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt,omitempty"`
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
