// Package gtrans provides a TTS provider backed by the public Google Translate
// text-to-speech endpoint. It implements the tts.Provider interface.
//
// The endpoint renders at most ~200 characters per call, so longer texts are
// split into chunks on sentence and word boundaries, each chunk synthesised
// with its own GET request, and the resulting MP3 segments concatenated.
// MP3 frames are self-delimiting, so segment concatenation yields a playable
// clip without re-encoding.
//
// Typical usage:
//
//	p := gtrans.New(
//	    gtrans.WithTimeout(15*time.Second),
//	)
//	audio, err := p.Synthesize(ctx, tts.Request{Text: "Hello", SpeechCode: "en"})
package gtrans

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/newsflash/newsflash/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

const (
	defaultBaseURL = "https://translate.google.com"
	ttsEndpoint    = "/translate_tts"
	defaultTimeout = 30 * time.Second

	// maxChunkLen is the longest text fragment sent per request. The endpoint
	// truncates audio beyond roughly 200 characters; 100 leaves headroom for
	// URL encoding of multi-byte scripts.
	maxChunkLen = 100

	// slowSpeed is the ttsspeed query value for reduced-rate speech.
	slowSpeed = "0.3"

	// userAgent mimics a browser; the endpoint rejects obvious bot agents.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithBaseURL overrides the endpoint base URL. Useful for tests and proxies.
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

// Provider implements tts.Provider against the Google Translate TTS endpoint.
// It is safe for concurrent use.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Provider targeting the public Google Translate endpoint.
// Functional options may override the base URL, timeout, or HTTP client.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Synthesize renders req.Text as MP3 audio in the language given by
// req.SpeechCode. Text longer than a single request allows is split into
// chunks and the MP3 segments are concatenated in order.
func (p *Provider) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, errors.New("gtrans: text must not be empty")
	}
	if req.SpeechCode == "" {
		return nil, errors.New("gtrans: speech code must not be empty")
	}

	chunks := splitChunks(text, maxChunkLen)

	var out bytes.Buffer
	for _, chunk := range chunks {
		segment, err := p.fetchChunk(ctx, chunk, req.SpeechCode, req.Slow)
		if err != nil {
			return nil, err
		}
		out.Write(segment)
	}
	return out.Bytes(), nil
}

// fetchChunk performs a single GET /translate_tts call for one text chunk.
func (p *Provider) fetchChunk(ctx context.Context, chunk, speechCode string, slow bool) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("q", chunk)
	params.Set("tl", speechCode)
	if slow {
		params.Set("ttsspeed", slowSpeed)
	}

	reqURL := p.baseURL + ttsEndpoint + "?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("gtrans: create tts request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gtrans: GET %s: %w", ttsEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtrans: GET %s returned status %d", ttsEndpoint, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gtrans: read audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("gtrans: endpoint returned empty audio")
	}
	return audio, nil
}

// splitChunks breaks text into fragments of at most maxLen runes, preferring
// sentence boundaries, then word boundaries, and only splitting mid-word when
// a single word exceeds the limit.
func splitChunks(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= maxLen {
			chunks = append(chunks, strings.TrimSpace(string(runes)))
			break
		}
		window := runes[:maxLen]
		cut := lastBoundary(window)
		if cut <= 0 {
			cut = maxLen
		}
		chunk := strings.TrimSpace(string(runes[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
		for len(runes) > 0 && unicode.IsSpace(runes[0]) {
			runes = runes[1:]
		}
	}
	return chunks
}

// lastBoundary returns the index just past the last sentence terminator in
// window, or past the last whitespace if no terminator exists, or -1.
// Devanagari danda (U+0964) counts as a sentence terminator alongside the
// Latin set.
func lastBoundary(window []rune) int {
	sentence, space := -1, -1
	for i, r := range window {
		switch {
		case r == '.' || r == '!' || r == '?' || r == '।':
			sentence = i + 1
		case unicode.IsSpace(r):
			space = i + 1
		}
	}
	if sentence > 0 {
		return sentence
	}
	return space
}
