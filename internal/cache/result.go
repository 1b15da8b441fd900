// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// result.go provides a Valkey-backed cache for article pipeline results.
// Running a URL through scrape + stock photos + AI rewrite is slow and
// costs API credits, so the finished result is stored keyed by URL and
// subsequent submissions of the same article skip the whole pipeline.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	// resultKeyPrefix is the Valkey key prefix for cached pipeline results.
	resultKeyPrefix = "result:"

	// DefaultResultTTL is how long a pipeline result stays cached.
	DefaultResultTTL = 6 * time.Hour
)

// ResultCache stores finished pipeline results in Valkey, keyed by the
// article URL they were produced from.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a result cache backed by the given Valkey client.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl == 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// URLKey derives a fixed-length cache key from an article URL.
func URLKey(url string) string {
	sum := blake2b.Sum256([]byte(url))
	return hex.EncodeToString(sum[:16])
}

// Get retrieves a cached pipeline result for a URL and unmarshals it into
// dst. Returns false on miss or on a corrupt entry.
func (rc *ResultCache) Get(ctx context.Context, url string, dst any) bool {
	key := resultKeyPrefix + URLKey(url)
	val, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("result cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("result cache corrupt entry", "key", key, "error", err)
		return false
	}
	slog.Debug("result cache hit", "url", url)
	return true
}

// Set stores a pipeline result for a URL with the configured TTL.
func (rc *ResultCache) Set(ctx context.Context, url string, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		slog.Warn("result cache marshal error", "url", url, "error", err)
		return
	}
	if err := rc.client.Set(ctx, resultKeyPrefix+URLKey(url), data, rc.ttl).Err(); err != nil {
		slog.Warn("result cache set error", "url", url, "error", err)
	}
}

// Invalidate removes the cached result for a single URL.
func (rc *ResultCache) Invalidate(ctx context.Context, url string) {
	if err := rc.client.Del(ctx, resultKeyPrefix+URLKey(url)).Err(); err != nil {
		slog.Warn("result cache invalidate error", "url", url, "error", err)
	}
}
