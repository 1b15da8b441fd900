// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/webp"
)

// imageWait caps how long a capture waits for one background to load.
// A slow origin degrades that card to the flat fallback background
// instead of stalling the whole export.
const imageWait = 5 * time.Second

// maxImageBytes caps a fetched background body.
const maxImageBytes = 16 << 20

// Fetcher loads card backgrounds for rasterization, from data URIs or
// over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a fetcher with the capture wait cap applied.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: imageWait}}
}

// Fetch resolves a card background to a decoded image.
func (f *Fetcher) Fetch(ctx context.Context, source string) (image.Image, error) {
	if source == "" {
		return nil, fmt.Errorf("export: empty background source")
	}
	if strings.HasPrefix(source, "data:") {
		return decodeDataURI(source)
	}

	ctx, cancel := context.WithTimeout(ctx, imageWait)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("export: bad background url: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export: background fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export: background fetch: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("export: background read: %w", err)
	}
	return decodeImage(data, resp.Header.Get("Content-Type"))
}

// decodeDataURI decodes a base64 data URI background (uploaded photos).
func decodeDataURI(uri string) (image.Image, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("export: malformed data uri")
	}
	meta := uri[5:comma] // after "data:"
	raw := uri[comma+1:]

	var data []byte
	var err error
	if strings.Contains(meta, "base64") {
		data, err = base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("export: data uri decode: %w", err)
		}
	} else {
		data = []byte(raw)
	}
	return decodeImage(data, meta)
}

// decodeImage picks a decoder by content type, with WebP handled by its
// dedicated decoder and everything else by the registered stdlib ones.
func decodeImage(data []byte, contentType string) (image.Image, error) {
	if strings.Contains(contentType, "webp") || bytes.HasPrefix(data, []byte("RIFF")) {
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return nil, fmt.Errorf("export: webp decode: %w", err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("export: image decode: %w", err)
	}
	return img, nil
}
