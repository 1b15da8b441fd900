// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// AltResult is one alternative source suggestion.
type AltResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Alternatives is the fallback payload shown when a scrape fails: the
// query derived from the dead URL plus other places carrying the story.
type Alternatives struct {
	Query   string      `json:"query"`
	Results []AltResult `json:"results"`
}

// AltSearcher finds alternative sources for a failed URL.
type AltSearcher struct {
	baseURL string
	client  *http.Client
}

// NewAltSearcher creates a searcher against the DuckDuckGo HTML
// endpoint. baseURL is overridable for tests.
func NewAltSearcher(baseURL string) *AltSearcher {
	if baseURL == "" {
		baseURL = "https://html.duckduckgo.com/html"
	}
	return &AltSearcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 8 * time.Second},
	}
}

// Search derives a query from the failed URL and returns up to max
// alternative sources. An empty result set is not an error — the UI
// shows "no matches" and offers a manual search link instead.
func (s *AltSearcher) Search(ctx context.Context, failedURL string, max int) (*Alternatives, error) {
	query := QueryFromURL(failedURL)
	alt := &Alternatives{Query: query}
	if query == "" {
		return alt, nil
	}

	u := s.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("alternatives request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CardStudio/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alternatives http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alternatives: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alternatives parse: %w", err)
	}

	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())
		if href != "" && title != "" {
			alt.Results = append(alt.Results, AltResult{
				Title:   title,
				Snippet: snippet,
				URL:     cleanRedirect(href),
			})
		}
		return len(alt.Results) < max
	})

	return alt, nil
}

// cleanRedirect unwraps DuckDuckGo's /l/?uddg= redirect links.
func cleanRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}

// QueryFromURL turns a dead article URL into a search query by reading
// words out of its path slug. Numeric and single-character segments are
// dropped; the host's name is appended for context.
func QueryFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	var words []string
	for _, seg := range strings.Split(u.Path, "/") {
		seg = strings.TrimSuffix(seg, ".html")
		for _, w := range strings.FieldsFunc(seg, func(r rune) bool {
			return r == '-' || r == '_' || r == '.'
		}) {
			if len(w) > 1 && !isNumeric(w) {
				words = append(words, strings.ToLower(w))
			}
		}
	}

	if host := SourceHost(u); host != "" {
		if name, _, ok := strings.Cut(host, "."); ok && name != "" {
			words = append(words, name)
		}
	}

	if len(words) > 10 {
		words = words[:10]
	}
	return strings.Join(words, " ")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
