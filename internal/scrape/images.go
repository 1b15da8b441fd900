// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PlaceholderImage backs any variant that ends up with no usable photo.
const PlaceholderImage = "https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?q=80&w=1080"

// queryLimit keeps stock searches focused: long headlines return noise.
const queryLimit = 50

// ImageSearcher finds candidate background photos for a headline.
type ImageSearcher interface {
	Search(ctx context.Context, query string, count int) ([]string, error)
}

// PexelsClient implements ImageSearcher against the Pexels photo API.
// A client with an empty key is valid and returns no results, which the
// caller backfills with the article image and the placeholder.
type PexelsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewPexelsClient creates a Pexels search client. baseURL is overridable
// for tests; empty means the public API.
func NewPexelsClient(apiKey, baseURL string) *PexelsClient {
	if baseURL == "" {
		baseURL = "https://api.pexels.com/v1"
	}
	return &PexelsClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Search returns up to count portrait photo URLs for query.
func (p *PexelsClient) Search(ctx context.Context, query string, count int) ([]string, error) {
	if p.apiKey == "" {
		return nil, nil
	}

	query = cleanQuery(query)
	u := fmt.Sprintf("%s/search?query=%s&per_page=%d&orientation=portrait",
		p.baseURL, url.QueryEscape(query), count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("pexels request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pexels API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("pexels decode: %w", err)
	}

	var urls []string
	for _, photo := range result.Photos {
		if photo.Src.Large2x != "" {
			urls = append(urls, photo.Src.Large2x)
		}
	}
	return urls, nil
}

// cleanQuery clips a headline to a usable search query, cutting at the
// first colon or pipe (subtitle separators in news headlines).
func cleanQuery(q string) string {
	if i := strings.IndexAny(q, ":|"); i > 0 {
		q = q[:i]
	}
	q = strings.TrimSpace(q)
	if len(q) > queryLimit {
		q = strings.TrimSpace(q[:queryLimit])
	}
	return q
}

type pexelsResponse struct {
	Photos []pexelsPhoto `json:"photos"`
}

type pexelsPhoto struct {
	Src pexelsSrc `json:"src"`
}

type pexelsSrc struct {
	Large2x string `json:"large2x"`
}

// PickVariantImages assigns backgrounds to the three visual variants:
// the article's own image leads, stock photos fill the rest, and every
// slot is distinct from its predecessor where the pool allows. Missing
// material degrades to the placeholder.
func PickVariantImages(articleImage string, stock []string) (a, b, c string) {
	pool := make([]string, 0, len(stock)+1)
	if articleImage != "" {
		pool = append(pool, articleImage)
	}
	for _, s := range stock {
		if s != "" {
			pool = append(pool, s)
		}
	}

	if len(pool) == 0 {
		return PlaceholderImage, PlaceholderImage, PlaceholderImage
	}

	pick := func(i int) string {
		if i < len(pool) {
			return pool[i]
		}
		return pool[len(pool)-1]
	}
	return pick(0), pick(1), pick(2)
}
