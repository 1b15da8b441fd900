// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scrape fetches source articles and the imagery around them:
// the article extractor, the stock photo search used to fill the card
// variants, and the alternative-source search offered when a URL cannot
// be scraped.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxBodyBytes caps how much of a page is read. News pages routinely
// exceed this with tracking scripts; the article text never does.
const maxBodyBytes = 4 << 20

// titleLimit / summaryLimit bound what carries forward into card copy.
const (
	titleLimit   = 50
	summaryLimit = 100
)

// Article is the extracted essence of one source page.
type Article struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	TopImage string `json:"top_image"`
	Source   string `json:"source"` // bare host, e.g. "reuters.com"
}

// ShortTitle returns the title clipped to the card copy limit.
func (a Article) ShortTitle() string { return clip(a.Title, titleLimit) }

// Summary returns the leading text clipped to the card copy limit.
func (a Article) Summary() string { return clip(a.Text, summaryLimit) }

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	// Back the cut up so it never splits a multi-byte rune.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}

// Scraper fetches and extracts articles.
type Scraper struct {
	client *http.Client
}

// NewScraper creates a scraper with a bounded request timeout.
func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads and parses the page at rawURL. It fails when the page
// cannot be downloaded or yields no title — both map to the scrape
// failure path of the state machine.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("scrape: invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: request: %w", err)
	}
	// Some publishers 403 the default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CardStudio/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape: download: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("scrape: parse: %w", err)
	}

	art := &Article{
		URL:      rawURL,
		Title:    extractTitle(doc),
		Text:     extractText(doc),
		TopImage: extractTopImage(doc, u),
		Source:   SourceHost(u),
	}

	if art.Title == "" {
		return nil, fmt.Errorf("scrape: no title found at %s", rawURL)
	}
	return art, nil
}

// extractTitle prefers og:title, falling back to <title> and <h1>.
func extractTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(doc.Find("title").First().Text()); v != "" {
		return v
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// extractText concatenates article paragraphs, preferring content inside
// an <article> element when one exists.
func extractText(doc *goquery.Document) string {
	scope := doc.Find("article")
	if scope.Length() == 0 {
		scope = doc.Selection.Find("body")
	}

	var parts []string
	scope.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		t := strings.TrimSpace(sel.Text())
		if len(t) > 40 { // skip bylines, nav crumbs, cookie banners
			parts = append(parts, t)
		}
		return len(parts) < 40
	})
	return strings.Join(parts, "\n")
}

// extractTopImage prefers og:image, then twitter:image, then the first
// sizeable <img>. Relative URLs resolve against the page URL.
func extractTopImage(doc *goquery.Document, base *url.URL) string {
	for _, sel := range []string{`meta[property="og:image"]`, `meta[name="twitter:image"]`} {
		if v, ok := doc.Find(sel).Attr("content"); ok && strings.TrimSpace(v) != "" {
			return resolveURL(base, strings.TrimSpace(v))
		}
	}
	if v, ok := doc.Find("article img, img").First().Attr("src"); ok {
		return resolveURL(base, strings.TrimSpace(v))
	}
	return ""
}

func resolveURL(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// SourceHost reduces a URL to its bare host: no scheme, no www.
func SourceHost(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// SourceTag turns a host into the uppercased pill tag, e.g.
// "reuters.com" → "REUTERS".
func SourceTag(host string) string {
	if host == "" {
		return "NEWS"
	}
	name := host
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	return strings.ToUpper(name)
}
