// Package cache implements the freshness-aware weather cache persisted
// through the durable key-value store
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"weatherdash.app/models"
	"weatherdash.app/storage"
)

// DefaultTTL is the maximum age after which a cached snapshot must not
// be trusted without revalidation
const DefaultTTL = 15 * time.Minute

const keyPrefix = "weather-cache-"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// KeyForCity derives a deterministic cache key from a city name and unit
// system. Names are case/punctuation-folded so that "New York" and
// "  new york  " share an entry. Units are part of the key because
// numeric fields are not convertible post hoc.
func KeyForCity(city string, units models.Units) string {
	slug := strings.ToLower(strings.TrimSpace(city))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "unknown"
	}
	return fmt.Sprintf("%s%s-%s", keyPrefix, slug, units)
}

// KeyForCoords derives a cache key from coordinates rounded to 2 decimal
// degrees so that nearby repeated geolocation reads hit the same entry
func KeyForCoords(lat, lon float64, units models.Units) string {
	return fmt.Sprintf("%s%.2f-%.2f-%s", keyPrefix, lat, lon, units)
}

// FreshnessCache is a read-through accelerator and offline fallback over
// the durable store. Staleness is a read-time judgment: entries are
// never proactively evicted.
type FreshnessCache struct {
	store storage.Store
	ttl   time.Duration
}

func New(store storage.Store, ttl time.Duration) *FreshnessCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FreshnessCache{
		store: store,
		ttl:   ttl,
	}
}

// Get reads a cache entry regardless of freshness; the caller decides
// what a stale entry is worth
func (c *FreshnessCache) Get(key string) (*models.CacheEntry, bool) {
	raw, found, err := c.store.Get(key)
	if err != nil {
		slog.Error("cache read failed", "error", err, "key", key)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		slog.Error("cache entry unmarshal failed", "error", err, "key", key)
		return nil, false
	}

	return &entry, true
}

// Put writes a cache entry, replacing any previous value whole
func (c *FreshnessCache) Put(key string, entry *models.CacheEntry) error {
	if entry == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.store.Set(key, string(data))
}

// IsFresh reports whether a snapshot fetched at the given wall-clock
// time (ms since epoch) is still within the TTL
func (c *FreshnessCache) IsFresh(fetchedAtMs int64) bool {
	if fetchedAtMs <= 0 {
		return false
	}
	age := time.Since(time.UnixMilli(fetchedAtMs))
	return age < c.ttl
}

// TTL returns the configured time-to-live
func (c *FreshnessCache) TTL() time.Duration {
	return c.ttl
}
