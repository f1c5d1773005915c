// Package googlenews provides a search provider backed by the Google News
// RSS search endpoint. It implements the search.Provider interface.
//
// Queries are issued as GET /rss/search requests with the hl/gl/ceid locale
// triple derived from the requested language, and the Atom/RSS response is
// parsed with gofeed.
package googlenews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/newsflash/newsflash/pkg/provider/search"
)

// Compile-time interface assertion.
var _ search.Provider = (*Provider)(nil)

const (
	defaultBaseURL    = "https://news.google.com"
	searchEndpoint    = "/rss/search"
	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 5

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// locale is the hl/gl pair Google News expects for a language edition.
type locale struct {
	hl string
	gl string
}

// locales maps language codes to Google News editions. Unknown languages
// fall back to the US English edition.
var locales = map[string]locale{
	"en": {hl: "en-US", gl: "US"},
	"hi": {hl: "hi-IN", gl: "IN"},
	"mr": {hl: "mr-IN", gl: "IN"},
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTimeout sets the per-request HTTP timeout. Defaults to 15 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithBaseURL overrides the endpoint base URL. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements search.Provider against the Google News RSS search
// endpoint. It is safe for concurrent use.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	parser     *gofeed.Parser
}

// New creates a Provider targeting the public Google News endpoint.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		parser: gofeed.NewParser(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// News implements search.Provider. The topic is searched as "<topic> news"
// in the edition matching q.Language.
func (p *Provider) News(ctx context.Context, q search.Query) ([]search.Result, error) {
	topic := strings.TrimSpace(q.Topic)
	if topic == "" {
		return nil, errors.New("googlenews: topic must not be empty")
	}
	max := q.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}

	loc, ok := locales[strings.ToLower(q.Language)]
	if !ok {
		loc = locales["en"]
	}

	params := url.Values{}
	params.Set("q", topic+" news")
	params.Set("hl", loc.hl)
	params.Set("gl", loc.gl)
	params.Set("ceid", loc.gl+":"+strings.SplitN(loc.hl, "-", 2)[0])

	reqURL := p.baseURL + searchEndpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("googlenews: create search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("googlenews: GET %s: %w", searchEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("googlenews: GET %s returned status %d", searchEndpoint, resp.StatusCode)
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("googlenews: parse feed: %w", err)
	}

	results := make([]search.Result, 0, min(max, len(feed.Items)))
	for _, it := range feed.Items {
		if len(results) >= max {
			break
		}
		results = append(results, toResult(it))
	}
	return results, nil
}

// toResult maps one feed item to a search.Result. Google News item titles
// carry the publisher as a " - Publisher" suffix; when the item has no
// explicit source, the suffix fills it in.
func toResult(it *gofeed.Item) search.Result {
	r := search.Result{
		Title:   strings.TrimSpace(it.Title),
		URL:     strings.TrimSpace(it.Link),
		Snippet: strings.TrimSpace(it.Description),
	}
	if it.PublishedParsed != nil {
		r.Published = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		r.Published = *it.UpdatedParsed
	}
	if len(it.Authors) > 0 {
		r.Source = strings.TrimSpace(it.Authors[0].Name)
	}
	if r.Source == "" {
		if idx := strings.LastIndex(r.Title, " - "); idx > 0 {
			r.Source = strings.TrimSpace(r.Title[idx+3:])
			r.Title = strings.TrimSpace(r.Title[:idx])
		}
	}
	return r
}
