package googlenews

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newsflash/newsflash/pkg/provider/search"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>"technology news" - Google News</title>
  <item>
    <title>Chip makers expand fabs - TechDaily</title>
    <link>https://example.com/chips</link>
    <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
    <description>Fab expansion continues worldwide.</description>
  </item>
  <item>
    <title>New battery record - EnergyWire</title>
    <link>https://example.com/battery</link>
    <pubDate>Sun, 23 Aug 2026 08:30:00 GMT</pubDate>
    <description>Lab cell hits new density mark.</description>
  </item>
  <item>
    <title>Third story - Elsewhere</title>
    <link>https://example.com/third</link>
    <pubDate>Sat, 22 Aug 2026 12:00:00 GMT</pubDate>
    <description>More coverage.</description>
  </item>
</channel>
</rss>`

func TestNewsParsesFeed(t *testing.T) {
	var gotQ, gotHL, gotGL, gotCEID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		gotHL = r.URL.Query().Get("hl")
		gotGL = r.URL.Query().Get("gl")
		gotCEID = r.URL.Query().Get("ceid")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML)
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	results, err := p.News(context.Background(), search.Query{Topic: "technology", Language: "hi", MaxResults: 2})
	if err != nil {
		t.Fatalf("News returned error: %v", err)
	}

	if gotQ != "technology news" {
		t.Errorf("q = %q, want %q", gotQ, "technology news")
	}
	if gotHL != "hi-IN" || gotGL != "IN" || gotCEID != "IN:hi" {
		t.Errorf("locale = hl=%q gl=%q ceid=%q, want hi-IN/IN/IN:hi", gotHL, gotGL, gotCEID)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (MaxResults honored)", len(results))
	}
	first := results[0]
	if first.Title != "Chip makers expand fabs" {
		t.Errorf("Title = %q, want publisher suffix stripped", first.Title)
	}
	if first.Source != "TechDaily" {
		t.Errorf("Source = %q, want %q", first.Source, "TechDaily")
	}
	if first.URL != "https://example.com/chips" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Published.IsZero() {
		t.Error("Published is zero, want parsed pubDate")
	}
}

func TestNewsUnknownLanguageFallsBackToEnglishEdition(t *testing.T) {
	var gotHL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHL = r.URL.Query().Get("hl")
		fmt.Fprint(w, feedXML)
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	if _, err := p.News(context.Background(), search.Query{Topic: "sports", Language: "xx"}); err != nil {
		t.Fatalf("News returned error: %v", err)
	}
	if gotHL != "en-US" {
		t.Errorf("hl = %q, want en-US for unsupported language", gotHL)
	}
}

func TestNewsEmptyTopic(t *testing.T) {
	p := New()
	if _, err := p.News(context.Background(), search.Query{Topic: "  "}); err == nil {
		t.Fatal("expected error for empty topic")
	}
}

func TestNewsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	if _, err := p.News(context.Background(), search.Query{Topic: "sports"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
