// Command newsflash fetches news for a set of topics, summarizes every
// article with sentiment analysis in the requested language, and optionally
// reads the digest aloud through a TTS provider.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/newsflash/newsflash/internal/config"
	"github.com/newsflash/newsflash/internal/extract"
	"github.com/newsflash/newsflash/internal/health"
	"github.com/newsflash/newsflash/internal/news"
	"github.com/newsflash/newsflash/internal/observe"
	"github.com/newsflash/newsflash/internal/resilience"
	"github.com/newsflash/newsflash/internal/speech"
	"github.com/newsflash/newsflash/pkg/provider/llm"
	"github.com/newsflash/newsflash/pkg/provider/llm/anyllm"
	"github.com/newsflash/newsflash/pkg/provider/search"
	"github.com/newsflash/newsflash/pkg/provider/search/googlenews"
	rssfeed "github.com/newsflash/newsflash/pkg/provider/search/rss"
	"github.com/newsflash/newsflash/pkg/provider/tts"
	"github.com/newsflash/newsflash/pkg/provider/tts/gtrans"
	oatts "github.com/newsflash/newsflash/pkg/provider/tts/openai"
)

// version is stamped via -ldflags "-X main.version=…" at release time.
var version = "dev"

// staleClipAge is how long generated audio files are kept before a run
// sweeps them from the output directory.
const staleClipAge = 24 * time.Hour

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	langFlag := flag.String("language", "", "output language code (defaults to the configured default)")
	speak := flag.Bool("speak", false, "synthesize an audio digest per topic")
	flag.Parse()

	topics := flag.Args()
	if len(topics) == 0 {
		fmt.Fprintln(os.Stderr, "usage: newsflash [flags] TOPIC [TOPIC ...]")
		flag.PrintDefaults()
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "newsflash: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "newsflash: %v\n", err)
		}
		return 1
	}

	requested := *langFlag
	if requested == "" {
		requested = cfg.Languages.Default
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("newsflash starting",
		"version", version,
		"config", *configPath,
		"language", requested,
		"topics", topics,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "newsflash",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Instantiate providers ─────────────────────────────────────────────────
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}
	if providers.Search == nil {
		slog.Error("no search provider configured — set providers.search.name")
		return 1
	}

	// ── Services ──────────────────────────────────────────────────────────────
	catalog, err := cfg.Catalog()
	if err != nil {
		slog.Error("invalid language configuration", "err", err)
		return 1
	}

	metrics := observe.DefaultMetrics()
	errlog := resilience.NewErrorLog(logger, *cfg.Resilience.EnableFallbackLogging,
		resilience.WithRecorder(metrics))

	newsSvc := news.NewService(news.Options{
		LLM:       providers.LLM,
		Search:    providers.Search,
		Extractor: extract.New(),
		Catalog:   catalog,
		ErrorLog:  errlog,
		Metrics:   metrics,
		Logger:    logger,
		Retry: resilience.RetryConfig{
			MaxAttempts: cfg.Resilience.MaxRetryAttempts,
			BaseDelay:   cfg.Resilience.RetryBaseDelay,
			FlatBackoff: cfg.Resilience.FlatBackoff,
		},
		ResultsPerTopic:          cfg.News.ResultsPerTopic,
		AISummaryMinLength:       cfg.News.AISummaryMinLength,
		UseAISummary:             *cfg.News.UseAISummary,
		RateLimitDelay:           cfg.News.RateLimitDelay,
		LanguageFallbackEnabled:  *cfg.Resilience.LanguageFallbackEnabled,
		SentimentFallbackEnabled: *cfg.Resilience.SentimentFallbackEnabled,
	})

	var speechSvc *speech.Service
	if *speak {
		if providers.TTS == nil {
			slog.Error("-speak requires a TTS provider — set providers.tts.name")
			return 1
		}
		speechSvc = speech.NewService(speech.Options{
			TTS:                     providers.TTS,
			Catalog:                 catalog,
			ErrorLog:                errlog,
			Metrics:                 metrics,
			Logger:                  logger,
			Slow:                    cfg.Speech.Slow,
			MaxTextLength:           cfg.Speech.MaxTextLength,
			RetryBaseDelay:          cfg.Resilience.RetryBaseDelay,
			LanguageFallbackEnabled: *cfg.Resilience.LanguageFallbackEnabled,
		})
	}

	// ── Observability endpoint (optional) ─────────────────────────────────────
	if addr := cfg.Server.ListenAddr; addr != "" {
		var checkers []health.Checker
		if *speak {
			outDir := cfg.Speech.OutputDir
			if outDir == "" {
				outDir = "."
			}
			checkers = append(checkers, health.Checker{Name: "output_dir", Check: func(context.Context) error {
				return os.MkdirAll(outDir, 0o755)
			}})
		}
		go func() {
			if err := health.New(checkers...).Serve(ctx, addr); err != nil {
				slog.Warn("observability endpoint error", "addr", addr, "err", err)
			}
		}()
		slog.Info("observability endpoint listening", "addr", addr)
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg, requested, topics, *speak)

	// ── Digest ────────────────────────────────────────────────────────────────
	results := newsSvc.SearchTopics(ctx, topics, requested)
	if ctx.Err() != nil {
		slog.Info("interrupted")
		return 1
	}

	for _, topic := range topics {
		printTopicDigest(topic, results[topic])
	}

	if speechSvc != nil {
		if code := speakDigest(ctx, cfg, speechSvc, topics, results, requested); code != 0 {
			return code
		}
	}

	slog.Info("done")
	return 0
}

// ── Digest output ───────────────────────────────────────────────────────────

func printTopicDigest(topic string, articles []news.Article) {
	fmt.Printf("\n=== %s ===\n", topic)
	if len(articles) == 0 {
		fmt.Println("  (no articles found)")
		return
	}
	for i, a := range articles {
		fmt.Printf("\n%d. %s\n", i+1, a.Title)
		if a.Source != "" {
			fmt.Printf("   source: %s", a.Source)
			if !a.Published.IsZero() {
				fmt.Printf(" (%s)", a.Published.Format("2006-01-02 15:04"))
			}
			fmt.Println()
		}
		if a.URL != "" {
			fmt.Printf("   url: %s\n", a.URL)
		}
		fmt.Printf("   sentiment: %s [%s]\n", a.Sentiment, a.Language)
		fmt.Printf("   %s\n", a.Summary)
	}
}

// speakDigest synthesizes one audio clip per topic from the article
// summaries and writes it to the configured output directory.
func speakDigest(ctx context.Context, cfg *config.Config, svc *speech.Service, topics []string, results map[string][]news.Article, requested string) int {
	outDir := cfg.Speech.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := speech.RemoveStaleClips(outDir, staleClipAge, slog.Default()); err != nil {
		slog.Warn("stale clip cleanup failed", "err", err)
	}

	for _, topic := range topics {
		articles := results[topic]
		if len(articles) == 0 {
			continue
		}
		clip, err := svc.Synthesize(ctx, digestText(topic, articles), requested)
		if err != nil {
			slog.Error("speech synthesis failed", "topic", topic, "err", err)
			return 1
		}
		path, err := svc.WriteClip(outDir, clip)
		if err != nil {
			slog.Error("failed to write audio clip", "topic", topic, "err", err)
			return 1
		}
		fmt.Printf("\naudio digest for %q written to %s [%s]\n", topic, path, clip.Language)
	}
	return 0
}

// digestText flattens a topic's articles into a single narration script.
func digestText(topic string, articles []news.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "News about %s. ", topic)
	for _, a := range articles {
		b.WriteString(a.Title)
		b.WriteString(". ")
		b.WriteString(a.Summary)
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// builtinProviders maps provider category names to the implementations that
// ship with newsflash. Used for startup logging.
var builtinProviders = map[string][]string{
	"llm":    {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"tts":    {"openai", "gtrans"},
	"search": {"googlenews", "rss"},
}

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry (or, for search, the full
// config) and constructs the appropriate provider.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────
	// openai, anthropic, gemini, deepseek, mistral, groq, llamacpp, llamafile
	// all share the same pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			p, err := anyllm.New(providerName, entry.Model, opts...)
			if err != nil {
				return nil, err
			}
			return p, nil
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		p, err := anyllm.New("ollama", entry.Model, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("openai", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []oatts.Option
		if entry.BaseURL != "" {
			opts = append(opts, oatts.WithBaseURL(entry.BaseURL))
		}
		if voice := optString(entry.Options, "voice"); voice != "" {
			opts = append(opts, oatts.WithVoice(voice))
		}
		return oatts.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterTTS("gtrans", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []gtrans.Option
		if entry.BaseURL != "" {
			opts = append(opts, gtrans.WithBaseURL(entry.BaseURL))
		}
		return gtrans.New(opts...), nil
	})

	// ── Search ────────────────────────────────────────────────────────────────

	reg.RegisterSearch("googlenews", func(cfg *config.Config) (search.Provider, error) {
		var opts []googlenews.Option
		if entry := cfg.Providers.Search; entry.BaseURL != "" {
			opts = append(opts, googlenews.WithBaseURL(entry.BaseURL))
		}
		return googlenews.New(opts...), nil
	})

	reg.RegisterSearch("rss", func(cfg *config.Config) (search.Provider, error) {
		return rssfeed.New(cfg.News.Feeds)
	})

	// Debug log of all registered providers.
	for kind, names := range builtinProviders {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// providerSet holds the instantiated providers named in the configuration.
type providerSet struct {
	LLM    llm.Provider
	TTS    tts.Provider
	Search search.Provider
}

// buildProviders instantiates all providers named in cfg using the registry.
func buildProviders(cfg *config.Config, reg *config.Registry) (*providerSet, error) {
	ps := &providerSet{}

	if name := cfg.Providers.LLM.Name; name != "" {
		p, err := reg.CreateLLM(cfg.Providers.LLM)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not yet implemented — skipping", "kind", "llm", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", name, err)
		} else {
			ps.LLM = p
			slog.Info("provider created", "kind", "llm", "name", name)
		}
	}

	if name := cfg.Providers.TTS.Name; name != "" {
		p, err := reg.CreateTTS(cfg.Providers.TTS)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not yet implemented — skipping", "kind", "tts", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create tts provider %q: %w", name, err)
		} else {
			ps.TTS = p
			slog.Info("provider created", "kind", "tts", "name", name)
		}
	}

	if name := cfg.Providers.Search.Name; name != "" {
		p, err := reg.CreateSearch(cfg)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not yet implemented — skipping", "kind", "search", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create search provider %q: %w", name, err)
		} else {
			ps.Search = p
			slog.Info("provider created", "kind", "search", "name", name)
		}
	}

	return ps, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, requested string, topics []string, speak bool) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        newsflash — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("TTS", cfg.Providers.TTS.Name, cfg.Providers.TTS.Model)
	printProvider("Search", cfg.Providers.Search.Name, "")
	fmt.Printf("║  Language        : %-19s ║\n", requested)
	fmt.Printf("║  Topics          : %-19d ║\n", len(topics))
	if speak {
		fmt.Printf("║  Speech          : %-19s ║\n", "enabled")
	} else {
		fmt.Printf("║  Speech          : %-19s ║\n", "(disabled)")
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
