// Package news implements topic search, LLM summarization, and sentiment
// classification with language fallback and retry around every provider call.
//
// The pipeline mirrors what a request goes through: search the news provider
// for a topic, optionally enrich thin results with the article extractor,
// then summarize each article with the LLM. Summarization never fails — when
// the model is unreachable, rate limited, or disabled, a deterministic
// summary and neutral sentiment take its place.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/newsflash/newsflash/internal/extract"
	"github.com/newsflash/newsflash/internal/language"
	"github.com/newsflash/newsflash/internal/observe"
	"github.com/newsflash/newsflash/internal/resilience"
	"github.com/newsflash/newsflash/pkg/provider/llm"
	"github.com/newsflash/newsflash/pkg/provider/search"
)

// Field caps applied to provider search results before further processing.
const (
	maxTitleLen  = 500
	maxURLLen    = 1000
	maxBodyLen   = 2000
	maxSourceLen = 200
)

// llmTemperature keeps summaries close to the source text.
const llmTemperature = 0.1

// topicConcurrency bounds parallel topic searches in [Service.SearchTopics].
const topicConcurrency = 4

// Article is one news result with its generated summary.
type Article struct {
	Title     string
	URL       string
	Body      string
	Source    string
	Topic     string
	Published time.Time

	// Summary and Sentiment come from SummarizeWithSentiment; Language is
	// the language the summary was actually produced in after fallback.
	Summary   string
	Sentiment resilience.Sentiment
	Language  string
}

// SummaryResult is the outcome of one summarization, carrying the language
// the summary ended up in.
type SummaryResult struct {
	Summary   string
	Sentiment resilience.Sentiment
	Language  string
}

// Options configures a [Service]. LLM and Extractor are optional; without an
// LLM every summary is deterministic and every sentiment neutral.
type Options struct {
	LLM       llm.Provider
	Search    search.Provider
	Extractor *extract.Extractor

	Catalog  *language.Catalog
	ErrorLog *resilience.ErrorLog
	Retry    resilience.RetryConfig
	Metrics  *observe.Metrics
	Logger   *slog.Logger

	ResultsPerTopic    int
	AISummaryMinLength int
	UseAISummary       bool
	RateLimitDelay     time.Duration

	// LanguageFallbackEnabled and SentimentFallbackEnabled gate the two
	// degradation paths.
	LanguageFallbackEnabled  bool
	SentimentFallbackEnabled bool
}

// Service runs the news pipeline. It is safe for concurrent use.
type Service struct {
	llm       llm.Provider
	search    search.Provider
	extractor *extract.Extractor

	catalog *language.Catalog
	orch    *resilience.Orchestrator
	retryer *resilience.Retryer
	guard   *resilience.SentimentGuard
	errlog  *resilience.ErrorLog
	metrics *observe.Metrics
	logger  *slog.Logger

	resultsPerTopic    int
	aiSummaryMinLength int
	useAISummary       bool
	rateLimitDelay     time.Duration
}

// NewService builds a Service from opts, applying the documented defaults
// for zero-valued tuning fields.
func NewService(opts Options) *Service {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = language.Builtin()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errlog := opts.ErrorLog
	if errlog == nil {
		errlog = resilience.NewErrorLog(logger, true)
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	resultsPerTopic := opts.ResultsPerTopic
	if resultsPerTopic <= 0 {
		resultsPerTopic = 5
	}

	return &Service{
		llm:                opts.LLM,
		search:             opts.Search,
		extractor:          opts.Extractor,
		catalog:            catalog,
		orch:               resilience.NewOrchestrator(catalog, errlog, opts.LanguageFallbackEnabled),
		retryer:            resilience.NewRetryer(opts.Retry, errlog),
		guard:              resilience.NewSentimentGuard(errlog, opts.SentimentFallbackEnabled),
		errlog:             errlog,
		metrics:            metrics,
		logger:             logger,
		resultsPerTopic:    resultsPerTopic,
		aiSummaryMinLength: opts.AISummaryMinLength,
		useAISummary:       opts.UseAISummary,
		rateLimitDelay:     opts.RateLimitDelay,
	}
}

// SummarizeWithSentiment produces a summary and sentiment for articleText in
// the requested language. It never fails: language fallback retries the
// default language, and when the model cannot be reached at all the result
// degrades to a deterministic summary with neutral sentiment. The returned
// Language is the language the summary was actually produced in.
func (s *Service) SummarizeWithSentiment(ctx context.Context, articleText, title, requested string) SummaryResult {
	if s.llm == nil || !s.useAISummary || tooShortForAI(articleText, s.aiSummaryMinLength) {
		res := s.deterministicResult(articleText, requested)
		s.countArticle(ctx, res.Language, "fallback")
		return res
	}

	const op = "generate_summary_with_sentiment"
	start := time.Now()
	result, err := resilience.Run(s.orch, ctx, op, requested, func(ctx context.Context, lang string) (SummaryResult, error) {
		return s.summarizeInLanguage(ctx, articleText, title, lang)
	})
	if err != nil {
		// Final degradation. Rate limits are reported as AI service errors
		// so quota exhaustion stays visible in the logs; everything else
		// charges the language fallback path.
		if resilience.IsRateLimited(err) {
			s.errlog.AIService(op, err, 0)
			s.logger.Warn("rate limit hit, using deterministic summary", "title", truncateRunes(title, 50))
		} else {
			s.errlog.Language(op, requested, err, s.catalog.Default())
		}
		res := s.deterministicResult(articleText, requested)
		s.countArticle(ctx, res.Language, "fallback")
		return res
	}

	s.metrics.SummaryDuration.Record(ctx, time.Since(start).Seconds())
	s.countArticle(ctx, result.Language, "ai")
	return result
}

// Summarize returns only the summary text for articleText in the requested
// language. Convenience wrapper around [Service.SummarizeWithSentiment].
func (s *Service) Summarize(ctx context.Context, articleText, title, requested string) string {
	return s.SummarizeWithSentiment(ctx, articleText, title, requested).Summary
}

// summarizeInLanguage performs one retried LLM round trip for a fixed
// language.
func (s *Service) summarizeInLanguage(ctx context.Context, articleText, title, lang string) (SummaryResult, error) {
	const op = "generate_summary_with_sentiment"

	if err := s.pause(ctx); err != nil {
		return SummaryResult{}, err
	}

	content, err := resilience.RetryWithResult(s.retryer, ctx, op, func(ctx context.Context) (string, error) {
		return s.complete(ctx, summaryPrompt(lang, title, articleText))
	})
	if err != nil {
		return SummaryResult{}, err
	}

	summary, sentiment := parseSummaryAndSentiment(content)
	if summary == "" {
		summary = resilience.DeterministicSummary(articleText, 0)
	}
	s.logger.Info("generated summary and sentiment",
		"language", lang,
		"title", truncateRunes(title, 50),
	)
	return SummaryResult{Summary: summary, Sentiment: sentiment, Language: lang}, nil
}

// AnalyzeSentiment classifies the sentiment of text in the requested
// language. Text too short to carry sentiment is neutral without a provider
// call. Failures degrade to neutral unless sentiment fallback is disabled,
// in which case a *resilience.SentimentAnalysisError is returned.
func (s *Service) AnalyzeSentiment(ctx context.Context, text, requested string) (resilience.Sentiment, error) {
	if resilience.TooShortForSentiment(text) {
		s.logger.Debug("text too short for sentiment analysis, returning neutral")
		return resilience.SentimentNeutral, nil
	}
	if s.llm == nil {
		return resilience.DefaultSentiment, nil
	}

	const op = "analyze_sentiment"
	start := time.Now()
	sentiment, err := s.guard.Classify(ctx, op, func(ctx context.Context) (resilience.Sentiment, error) {
		return resilience.Run(s.orch, ctx, op, requested, func(ctx context.Context, lang string) (resilience.Sentiment, error) {
			if err := s.pause(ctx); err != nil {
				return "", err
			}
			content, err := resilience.RetryWithResult(s.retryer, ctx, op, func(ctx context.Context) (string, error) {
				return s.complete(ctx, summaryPrompt(lang, "Sentiment Analysis", text))
			})
			if err != nil {
				return "", err
			}
			return parseSentiment(content), nil
		})
	})
	if err == nil {
		s.metrics.SentimentDuration.Record(ctx, time.Since(start).Seconds())
	}
	return sentiment, err
}

// SearchNews finds articles for topic in the requested language and
// summarizes each one. Unsupported languages are substituted with the
// default before the search.
func (s *Service) SearchNews(ctx context.Context, topic, requested string) ([]Article, error) {
	lang := s.catalog.FallbackFor(requested)
	if lang != requested {
		s.logger.Info("language not supported for search, using fallback",
			"requested", requested,
			"language", lang,
		)
	}

	start := time.Now()
	results, err := s.search.News(ctx, search.Query{
		Topic:      topic,
		Language:   lang,
		MaxResults: s.resultsPerTopic,
	})
	if err != nil {
		s.metrics.RecordProviderError(ctx, "search", "news")
		return nil, fmt.Errorf("news: search %q: %w", topic, err)
	}
	s.metrics.SearchDuration.Record(ctx, time.Since(start).Seconds())

	articles := make([]Article, 0, len(results))
	for _, r := range results {
		a := Article{
			Title:     truncateRunes(r.Title, maxTitleLen),
			URL:       truncateRunes(r.URL, maxURLLen),
			Body:      truncateRunes(r.Snippet, maxBodyLen),
			Source:    truncateRunes(r.Source, maxSourceLen),
			Topic:     topic,
			Published: r.Published,
		}
		s.enrichBody(ctx, &a)

		res := s.SummarizeWithSentiment(ctx, a.Body, a.Title, lang)
		a.Summary = res.Summary
		a.Sentiment = res.Sentiment
		a.Language = res.Language
		articles = append(articles, a)
	}

	s.logger.Info("found articles for topic",
		"topic", topic,
		"count", len(articles),
		"language", lang,
	)
	return articles, nil
}

// SearchTopics runs SearchNews for several topics concurrently. A topic
// whose search fails contributes an empty slice rather than failing the
// whole batch; the error is logged.
func (s *Service) SearchTopics(ctx context.Context, topics []string, requested string) map[string][]Article {
	var (
		mu  sync.Mutex
		out = make(map[string][]Article, len(topics))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(topicConcurrency)
	for _, topic := range topics {
		g.Go(func() error {
			articles, err := s.SearchNews(ctx, topic, requested)
			if err != nil {
				s.logger.Warn("topic search failed", "topic", topic, "err", err)
				articles = nil
			}
			mu.Lock()
			out[topic] = articles
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines never return errors
	return out
}

// FullArticle fetches and extracts the readable text of an article URL.
// Requires an extractor; returns an error otherwise.
func (s *Service) FullArticle(ctx context.Context, url string) (string, error) {
	if s.extractor == nil {
		return "", fmt.Errorf("news: no article extractor configured")
	}
	return s.extractor.Article(ctx, url)
}

// enrichBody replaces a thin snippet with extracted article text when an
// extractor is available. Extraction failures leave the snippet in place.
func (s *Service) enrichBody(ctx context.Context, a *Article) {
	if s.extractor == nil || a.URL == "" {
		return
	}
	if !tooShortForAI(a.Body, s.aiSummaryMinLength) {
		return
	}
	text, err := s.extractor.Article(ctx, a.URL)
	if err != nil {
		s.logger.Debug("article extraction failed, keeping snippet", "url", a.URL, "err", err)
		return
	}
	a.Body = truncateRunes(text, maxBodyLen)
}

// complete performs one LLM completion and returns the text content.
func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: llmTemperature,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("empty model response")
	}
	return resp.Content, nil
}

// deterministicResult builds the no-LLM result for a text and requested
// language.
func (s *Service) deterministicResult(articleText, requested string) SummaryResult {
	return SummaryResult{
		Summary:   resilience.DeterministicSummary(articleText, 0),
		Sentiment: resilience.DefaultSentiment,
		Language:  s.catalog.FallbackFor(requested),
	}
}

// countArticle records one processed article in the metrics.
func (s *Service) countArticle(ctx context.Context, lang, mode string) {
	s.metrics.ArticlesProcessed.Add(ctx, 1, metric.WithAttributes(
		observe.Attr("language", lang),
		observe.Attr("mode", mode),
	))
}

// pause inserts the configured rate-limit delay, honouring ctx.
func (s *Service) pause(ctx context.Context) error {
	if s.rateLimitDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.rateLimitDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// tooShortForAI reports whether text is below the AI summary threshold.
func tooShortForAI(text string, minLen int) bool {
	return len([]rune(text)) < minLen
}
