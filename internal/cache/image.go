// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// imageKeyPrefix is the Valkey key prefix for proxied image bodies.
	imageKeyPrefix = "img:"

	// DefaultImageTTL is how long a proxied image body stays cached.
	DefaultImageTTL = 24 * time.Hour
)

// CachedImage is a proxied image body together with its content type.
type CachedImage struct {
	ContentType string
	Body        []byte
}

// ImageCache stores fetched remote image bodies in Valkey so the image
// proxy does not refetch the same background on every render.
type ImageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewImageCache creates an image cache backed by the given Valkey client.
func NewImageCache(client *redis.Client, ttl time.Duration) *ImageCache {
	if ttl == 0 {
		ttl = DefaultImageTTL
	}
	return &ImageCache{client: client, ttl: ttl}
}

// Get retrieves a cached image for a URL. Returns false on miss.
func (ic *ImageCache) Get(ctx context.Context, url string) (CachedImage, bool) {
	key := imageKeyPrefix + URLKey(url)
	vals, err := ic.client.HGetAll(ctx, key).Result()
	if err != nil || len(vals) == 0 {
		if err != nil && err != redis.Nil {
			slog.Warn("image cache get error", "key", key, "error", err)
		}
		return CachedImage{}, false
	}
	body, ok := vals["body"]
	if !ok || body == "" {
		return CachedImage{}, false
	}
	return CachedImage{ContentType: vals["type"], Body: []byte(body)}, true
}

// Set stores an image body for a URL with the configured TTL.
func (ic *ImageCache) Set(ctx context.Context, url string, img CachedImage) {
	key := imageKeyPrefix + URLKey(url)
	pipe := ic.client.TxPipeline()
	pipe.HSet(ctx, key, "type", img.ContentType, "body", img.Body)
	pipe.Expire(ctx, key, ic.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("image cache set error", "key", key, "error", err)
	}
}
