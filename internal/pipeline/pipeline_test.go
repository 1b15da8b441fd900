// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cardstudio/internal/card"
	"cardstudio/internal/scrape"
)

const pageHTML = `<!doctype html><html><head>
<meta property="og:title" content="Markets Rally After Rate Decision">
<meta property="og:image" content="https://cdn.example.com/rally.jpg">
</head><body><article>
<p>Stocks climbed broadly on Wednesday after the central bank held rates steady, with technology shares leading the advance.</p>
</article></body></html>`

// stubImages returns a fixed stock list or an error.
type stubImages struct {
	urls []string
	err  error
}

func (s *stubImages) Search(ctx context.Context, query string, count int) ([]string, error) {
	return s.urls, s.err
}

func newTestPipeline(t *testing.T, images scrape.ImageSearcher) *Pipeline {
	t.Helper()
	return New(scrape.NewScraper(2*time.Second), images, nil, nil, nil)
}

func TestRunBuildsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageHTML))
	}))
	defer srv.Close()

	p := newTestPipeline(t, &stubImages{urls: []string{"https://stock/1.jpg", "https://stock/2.jpg"}})
	res, err := p.Run(context.Background(), srv.URL+"/markets/rally")
	if err != nil {
		t.Fatal(err)
	}

	c := res.Content
	// Article image leads; stock photos fill B and C; the caption card
	// shares A's background.
	if c.Images[card.VariantA] != "https://cdn.example.com/rally.jpg" {
		t.Errorf("image A = %q", c.Images[card.VariantA])
	}
	if c.Images[card.VariantB] != "https://stock/1.jpg" || c.Images[card.VariantC] != "https://stock/2.jpg" {
		t.Errorf("stock images: %v", c.Images)
	}
	if c.Images[card.VariantD] != c.Images[card.VariantA] {
		t.Errorf("caption card bg = %q", c.Images[card.VariantD])
	}

	if c.Original.Title != "Markets Rally After Rate Decision" {
		t.Errorf("original title = %q", c.Original.Title)
	}
	// No AI registry configured: no variants, no caption.
	if c.Variants != nil || c.Caption != "" {
		t.Errorf("ai fields populated without a provider: %+v", c)
	}

	if res.Article.Title == "" || res.Article.TopImage == "" {
		t.Errorf("article not carried: %+v", res.Article)
	}
}

func TestRunToleratesStockFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageHTML))
	}))
	defer srv.Close()

	p := newTestPipeline(t, &stubImages{err: errors.New("quota exceeded")})
	res, err := p.Run(context.Background(), srv.URL+"/a")
	if err != nil {
		t.Fatal(err)
	}
	// All three visual slots fall back to the article image.
	for _, id := range []card.ID{card.VariantA, card.VariantB, card.VariantC} {
		if res.Content.Images[id] != "https://cdn.example.com/rally.jpg" {
			t.Errorf("image %s = %q", id, res.Content.Images[id])
		}
	}
}

func TestRunScrapeFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := newTestPipeline(t, nil)
	_, err := p.Run(context.Background(), srv.URL+"/dead")
	if err == nil {
		t.Fatal("dead page should fail the run")
	}
	var se *ErrScrape
	if !errors.As(err, &se) {
		t.Fatalf("error type = %T", err)
	}
	if se.URL != srv.URL+"/dead" {
		t.Errorf("failure url = %q", se.URL)
	}
	// No alt searcher configured: alternatives stay nil, not empty.
	if se.Alternatives != nil {
		t.Errorf("alternatives = %+v", se.Alternatives)
	}
}
