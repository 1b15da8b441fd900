// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// pngBytes is a minimal payload; the proxy relays bodies opaquely and
// never decodes them.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func upstream(t *testing.T, ctype string, status int, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctype != "" {
			w.Header().Set("Content-Type", ctype)
		}
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func proxyGet(t *testing.T, p *Proxy, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy_image?url="+url.QueryEscape(target), nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)
	return rec
}

func TestServeRelaysImage(t *testing.T) {
	srv := upstream(t, "image/png; charset=binary", http.StatusOK, pngBytes)
	p := New(nil)

	rec := proxyGet(t, p, srv.URL+"/photo.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png (parameters stripped)", got)
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "max-age=86400") {
		t.Errorf("Cache-Control = %q, want a day-long max-age", got)
	}
	if rec.Body.String() != string(pngBytes) {
		t.Error("body was not relayed verbatim")
	}
}

func TestServeRejectsBadRequests(t *testing.T) {
	p := New(nil)

	tests := []struct {
		name string
		path string
	}{
		{"missing url", "/api/proxy_image"},
		{"unsupported scheme", "/api/proxy_image?url=" + url.QueryEscape("ftp://example.com/a.png")},
		{"not a url", "/api/proxy_image?url=" + url.QueryEscape("://broken")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			p.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestFetchRefusesNonImageTypes(t *testing.T) {
	tests := []struct {
		name  string
		ctype string
	}{
		{"html", "text/html"},
		{"svg is scriptable", "image/svg+xml"},
		{"no content type", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := upstream(t, tt.ctype, http.StatusOK, []byte("<svg/>"))
			p := New(nil)

			rec := proxyGet(t, p, srv.URL+"/thing")
			if rec.Code != http.StatusBadGateway {
				t.Errorf("status = %d, want 502", rec.Code)
			}
		})
	}
}

func TestFetchUpstreamFailure(t *testing.T) {
	srv := upstream(t, "image/png", http.StatusNotFound, nil)
	p := New(nil)

	rec := proxyGet(t, p, srv.URL+"/gone.png")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}

	srv.Close()
	rec = proxyGet(t, p, srv.URL+"/unreachable.png")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status after close = %d, want 502", rec.Code)
	}
}

func TestFetchDirect(t *testing.T) {
	srv := upstream(t, "image/webp", http.StatusOK, []byte("RIFFxxxxWEBP"))
	p := New(nil)

	img, err := p.Fetch(context.Background(), srv.URL+"/bg.webp")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if img.ContentType != "image/webp" {
		t.Errorf("ContentType = %q, want image/webp", img.ContentType)
	}
	if string(img.Body) != "RIFFxxxxWEBP" {
		t.Error("body mismatch")
	}
}
