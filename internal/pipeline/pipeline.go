// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pipeline turns one article URL into finished card content:
// scrape the page, find background photos, rewrite the copy with the
// active AI provider, and assemble the per-variant result. Only the
// scrape is load-bearing; photo search and the AI rewrite degrade
// gracefully to the scraped original.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cardstudio/internal/ai"
	"cardstudio/internal/cache"
	"cardstudio/internal/card"
	"cardstudio/internal/scrape"
)

// stockImageCount is how many candidate photos are requested per run.
const stockImageCount = 3

// Pipeline orchestrates scrape, image search and AI rewrite.
type Pipeline struct {
	scraper *scrape.Scraper
	images  scrape.ImageSearcher
	ai      *ai.Registry
	results *cache.ResultCache // optional
	alts    *scrape.AltSearcher
}

// New creates a pipeline. images, registry, results and alts may each be
// nil; the corresponding stage is skipped.
func New(scraper *scrape.Scraper, images scrape.ImageSearcher, registry *ai.Registry, results *cache.ResultCache, alts *scrape.AltSearcher) *Pipeline {
	return &Pipeline{scraper: scraper, images: images, ai: registry, results: results, alts: alts}
}

// Result is what a successful run produces: content for the store plus
// the scraped article for display and alternative suggestions when the
// source itself was unreachable.
type Result struct {
	Content card.ScrapeResult `json:"content"`
	Article scrape.Article    `json:"article"`
}

// ErrScrape wraps a scrape failure together with alternative article
// suggestions found for the failed URL.
type ErrScrape struct {
	URL          string
	Err          error
	Alternatives *scrape.Alternatives
}

func (e *ErrScrape) Error() string { return fmt.Sprintf("scrape %s: %v", e.URL, e.Err) }

func (e *ErrScrape) Unwrap() error { return e.Err }

// Run executes the full pipeline for one URL. Cached results are
// returned without re-running any stage.
func (p *Pipeline) Run(ctx context.Context, url string) (*Result, error) {
	if p.results != nil {
		var cached Result
		if p.results.Get(ctx, url, &cached) {
			return &cached, nil
		}
	}

	start := time.Now()
	article, err := p.scraper.Fetch(ctx, url)
	if err != nil {
		return nil, &ErrScrape{URL: url, Err: err, Alternatives: p.findAlternatives(ctx, url)}
	}

	stock := p.searchStock(ctx, article.Title)
	imgA, imgB, imgC := scrape.PickVariantImages(article.TopImage, stock)

	content := card.ScrapeResult{
		Source: scrape.SourceTag(article.Source),
		Images: map[card.ID]string{
			card.VariantA: imgA,
			card.VariantB: imgB,
			card.VariantC: imgC,
			card.VariantD: imgA,
		},
		Original: card.VariantCopy{
			Title:    article.ShortTitle(),
			Subtitle: article.Summary(),
		},
	}

	rewrite := p.rewrite(ctx, article)
	if rewrite != nil {
		content.Variants = rewrite.Variants
		content.Caption = ai.CleanCaption(rewrite.Caption)
	}

	result := &Result{Content: content, Article: *article}
	if p.results != nil {
		p.results.Set(ctx, url, result)
	}
	slog.Info("pipeline run complete",
		"url", url,
		"source", article.Source,
		"ai", rewrite != nil,
		"duration", time.Since(start))
	return result, nil
}

// searchStock queries the photo searcher and tolerates failure.
func (p *Pipeline) searchStock(ctx context.Context, title string) []string {
	if p.images == nil {
		return nil
	}
	stock, err := p.images.Search(ctx, title, stockImageCount)
	if err != nil {
		slog.Warn("stock photo search failed", "error", err)
		return nil
	}
	return stock
}

// rewrite asks the active AI provider for variant copy. Any failure,
// including an unparseable response, falls back to the scraped original
// rather than failing the run.
func (p *Pipeline) rewrite(ctx context.Context, article *scrape.Article) *ai.Rewrite {
	if p.ai == nil {
		return nil
	}
	rewrite, err := p.ai.RewriteArticle(ctx, ai.Article{
		Title:  article.Title,
		Text:   article.Text,
		Source: article.Source,
	})
	if err != nil {
		slog.Warn("ai rewrite failed, using scraped copy", "error", err)
		return nil
	}
	return rewrite
}

// findAlternatives looks up replacement articles for a dead URL.
func (p *Pipeline) findAlternatives(ctx context.Context, url string) *scrape.Alternatives {
	if p.alts == nil {
		return nil
	}
	alts, err := p.alts.Search(ctx, url, 5)
	if err != nil {
		slog.Debug("alternative search failed", "error", err)
		return nil
	}
	return alts
}
