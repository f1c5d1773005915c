// Package rss provides a search provider that filters a configured set of
// RSS/Atom feeds by topic keywords. It implements the search.Provider
// interface.
//
// Feeds are not queryable like a search engine, so the provider pulls each
// feed and keeps the items whose title or description contains any topic
// keyword. Results are ordered newest first across all feeds.
package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/newsflash/newsflash/pkg/provider/search"
)

// Compile-time interface assertion.
var _ search.Provider = (*Provider)(nil)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 5

	// minKeywordLen skips stop-word-sized tokens when matching titles.
	minKeywordLen = 3
)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTimeout sets the per-feed HTTP timeout. Defaults to 15 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements search.Provider over a fixed list of feed URLs.
// It is safe for concurrent use.
type Provider struct {
	feeds      []string
	httpClient *http.Client
	parser     *gofeed.Parser
}

// New creates a Provider that searches the given feed URLs. At least one
// feed is required.
func New(feeds []string, opts ...Option) (*Provider, error) {
	if len(feeds) == 0 {
		return nil, errors.New("rss: at least one feed URL is required")
	}
	p := &Provider{
		feeds: append([]string(nil), feeds...),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		parser: gofeed.NewParser(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// News implements search.Provider. Feeds that fail to fetch or parse are
// skipped; an error is returned only when every feed fails.
func (p *Provider) News(ctx context.Context, q search.Query) ([]search.Result, error) {
	keywords := strings.Fields(strings.ToLower(strings.TrimSpace(q.Topic)))
	if len(keywords) == 0 {
		return nil, errors.New("rss: topic must not be empty")
	}
	max := q.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}

	var (
		results  []search.Result
		failures []error
	)
	for _, feedURL := range p.feeds {
		feed, err := p.fetch(ctx, feedURL)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		for _, it := range feed.Items {
			if !matchesAnyKeyword(it.Title+" "+it.Description, keywords) {
				continue
			}
			r := search.Result{
				Title:   strings.TrimSpace(it.Title),
				URL:     strings.TrimSpace(it.Link),
				Snippet: strings.TrimSpace(it.Description),
				Source:  strings.TrimSpace(feed.Title),
			}
			if it.PublishedParsed != nil {
				r.Published = *it.PublishedParsed
			} else if it.UpdatedParsed != nil {
				r.Published = *it.UpdatedParsed
			}
			results = append(results, r)
		}
	}

	if len(results) == 0 && len(failures) == len(p.feeds) {
		return nil, fmt.Errorf("rss: all %d feeds failed: %w", len(p.feeds), errors.Join(failures...))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Published.After(results[j].Published)
	})
	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

// fetch pulls and parses a single feed.
func (p *Provider) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rss: create request for %s: %w", feedURL, err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rss: GET %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss: GET %s returned status %d", feedURL, resp.StatusCode)
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rss: parse %s: %w", feedURL, err)
	}
	return feed, nil
}

// matchesAnyKeyword reports whether text contains any keyword of at least
// minKeywordLen runes, case-insensitively.
func matchesAnyKeyword(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		if len([]rune(k)) < minKeywordLen {
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
