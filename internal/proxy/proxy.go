// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package proxy serves remote card backgrounds from our own origin so
// the stage and the exporter read same-origin pixels. Bodies are cached
// in Valkey; only image content types pass through.
package proxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cardstudio/internal/cache"
)

const (
	// fetchTimeout bounds one upstream image fetch.
	fetchTimeout = 10 * time.Second

	// maxBodyBytes caps a proxied image body.
	maxBodyBytes = 16 << 20
)

// allowedTypes is the content-type allowlist. Anything else upstream
// sends is refused rather than relayed.
var allowedTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/avif":    true,
	"image/svg+xml": false, // scriptable, never relay
}

// Proxy fetches and caches remote images.
type Proxy struct {
	client *http.Client
	images *cache.ImageCache // optional
}

// New creates a proxy. images may be nil to disable caching.
func New(images *cache.ImageCache) *Proxy {
	return &Proxy{
		client: &http.Client{Timeout: fetchTimeout},
		images: images,
	}
}

// ServeHTTP handles GET ?url=... requests.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	img, err := p.Fetch(r.Context(), target.String())
	if err != nil {
		slog.Warn("image proxy fetch failed", "url", target.String(), "error", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Body)
}

// Fetch returns the image at url, from cache when possible.
func (p *Proxy) Fetch(ctx context.Context, rawURL string) (cache.CachedImage, error) {
	if p.images != nil {
		if img, ok := p.images.Get(ctx, rawURL); ok {
			return img, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return cache.CachedImage{}, fmt.Errorf("proxy: bad url: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CardStudio/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return cache.CachedImage{}, fmt.Errorf("proxy: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return cache.CachedImage{}, fmt.Errorf("proxy: upstream status %d", resp.StatusCode)
	}

	ctype := strings.TrimSpace(strings.SplitN(resp.Header.Get("Content-Type"), ";", 2)[0])
	if !allowedTypes[ctype] {
		return cache.CachedImage{}, fmt.Errorf("proxy: refused content type %q", ctype)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return cache.CachedImage{}, fmt.Errorf("proxy: read body: %w", err)
	}

	img := cache.CachedImage{ContentType: ctype, Body: body}
	if p.images != nil {
		p.images.Set(ctx, rawURL, img)
	}
	return img, nil
}
