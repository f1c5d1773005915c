// Package extract fetches article pages and pulls out their readable text.
//
// Extraction is selector-based: unwanted chrome (scripts, navigation,
// footers) is removed, then a list of common article containers is tried in
// order and the first match wins. Pages whose extracted text is too short to
// be an article yield ErrNoContent rather than navigation noise.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned when a page yields no meaningful article text.
var ErrNoContent = errors.New("extract: no meaningful content found")

const (
	defaultTimeout = 10 * time.Second

	// minContentLen is the minimum extracted length considered a real
	// article rather than boilerplate.
	minContentLen = 100

	// minParagraphLen filters out navigation and ad fragments.
	minParagraphLen = 20

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// strippedSelectors are removed from the document before content lookup.
var strippedSelectors = []string{"script", "style", "nav", "header", "footer", "aside"}

// contentSelectors are tried in order; the first match is used as the
// article body.
var contentSelectors = []string{
	"article",
	`[role="main"]`,
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
}

var (
	multiBlank = regexp.MustCompile(`\n\s*\n\s*\n+`)
	runSpaces  = regexp.MustCompile(`[ \t]+`)
)

// Option is a functional option for configuring an Extractor.
type Option func(*Extractor)

// WithTimeout sets the per-request HTTP timeout. Defaults to 10 s.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) {
		e.httpClient = c
	}
}

// Extractor fetches article pages over HTTP and extracts their text.
// It is safe for concurrent use.
type Extractor struct {
	httpClient *http.Client
}

// New creates an Extractor with a browser-like User-Agent and a 10 s timeout.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Article fetches url and returns the cleaned article text, or ErrNoContent
// when the page has nothing article-shaped.
func (e *Extractor) Article(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("extract: create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extract: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extract: GET %s returned status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("extract: parse %s: %w", url, err)
	}
	return fromDocument(doc)
}

// fromDocument extracts article text from an already-parsed document.
func fromDocument(doc *goquery.Document) (string, error) {
	for _, sel := range strippedSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, sel := range contentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			content = s.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	text := formatContent(blockText(content))
	if len([]rune(strings.TrimSpace(text))) <= minContentLen {
		return "", ErrNoContent
	}
	return text, nil
}

// blockText renders the selection's text with block elements separated by
// newlines so that paragraph filtering has boundaries to work with.
func blockText(s *goquery.Selection) string {
	var b strings.Builder
	s.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote").Each(func(_ int, el *goquery.Selection) {
		t := strings.TrimSpace(el.Text())
		if t == "" {
			return
		}
		b.WriteString(t)
		b.WriteString("\n\n")
	})
	if b.Len() > 0 {
		return b.String()
	}
	// No block elements at all; fall back to the raw text.
	return s.Text()
}

// formatContent normalizes whitespace and drops fragments too short to be
// body text.
func formatContent(text string) string {
	text = multiBlank.ReplaceAllString(strings.TrimSpace(text), "\n\n")
	text = runSpaces.ReplaceAllString(text, " ")

	paragraphs := strings.Split(text, "\n\n")
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if len([]rune(p)) < minParagraphLen {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "\n\n")
}
