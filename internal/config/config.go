// Package config provides the configuration schema, loader, and provider
// registry for the newsflash assistant.
package config

import (
	"time"

	"github.com/newsflash/newsflash/internal/language"
)

// LogLevel controls log verbosity for the newsflash CLI.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for newsflash.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Languages  LanguagesConfig  `yaml:"languages"`
	News       NewsConfig       `yaml:"news"`
	Speech     SpeechConfig     `yaml:"speech"`
	Resilience ResilienceConfig `yaml:"resilience"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// ListenAddr, when set, serves /healthz, /readyz, and /metrics on this
	// address for the duration of a run (e.g. ":9090"). Empty disables the
	// endpoint.
	ListenAddr string `yaml:"listen_addr"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the [Registry].
type ProvidersConfig struct {
	LLM    ProviderEntry `yaml:"llm"`
	TTS    ProviderEntry `yaml:"tts"`
	Search ProviderEntry `yaml:"search"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "gemini", "gtrans").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gemini-2.0-flash").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// LanguagesConfig selects the default output language and, optionally,
// overrides the built-in language catalog.
type LanguagesConfig struct {
	// Default is the language every fallback chain ends in. Defaults to "en".
	Default string `yaml:"default"`

	// Catalog replaces the built-in language set when non-empty. Each entry
	// must carry a unique code, and Default must appear among the entries.
	Catalog []language.Descriptor `yaml:"catalog"`
}

// NewsConfig tunes news search and summarization.
type NewsConfig struct {
	// ResultsPerTopic bounds the number of articles fetched per topic.
	// Defaults to 5.
	ResultsPerTopic int `yaml:"results_per_topic"`

	// AISummaryMinLength is the minimum article length (in runes) worth
	// an LLM round trip; shorter articles get a deterministic summary.
	// Defaults to 150.
	AISummaryMinLength int `yaml:"ai_summary_min_length"`

	// UseAISummary disables LLM summarization entirely when false.
	// Defaults to true.
	UseAISummary *bool `yaml:"use_ai_summary"`

	// RateLimitDelay is the pause inserted between per-article LLM calls.
	// Defaults to 2 s.
	RateLimitDelay time.Duration `yaml:"rate_limit_delay"`

	// Feeds lists RSS feed URLs for the "rss" search provider.
	Feeds []string `yaml:"feeds"`
}

// SpeechConfig tunes speech synthesis.
type SpeechConfig struct {
	// Slow requests reduced speaking rate where the TTS backend supports it.
	Slow bool `yaml:"slow"`

	// MaxTextLength truncates synthesis input beyond this many runes.
	// Defaults to 5000.
	MaxTextLength int `yaml:"max_text_length"`

	// OutputDir is where generated audio files are written. Defaults to
	// the current directory.
	OutputDir string `yaml:"output_dir"`
}

// ResilienceConfig tunes retry and fallback behaviour for provider calls.
type ResilienceConfig struct {
	// MaxRetryAttempts bounds retries per operation. Defaults to 3.
	MaxRetryAttempts int `yaml:"max_retry_attempts"`

	// RetryBaseDelay is the first backoff delay; later attempts double it.
	// Defaults to 1 s.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// FlatBackoff disables exponential growth, sleeping RetryBaseDelay
	// between every attempt.
	FlatBackoff bool `yaml:"flat_backoff"`

	// EnableFallbackLogging controls whether fallback events are logged.
	// Defaults to true.
	EnableFallbackLogging *bool `yaml:"enable_fallback_logging"`

	// SentimentFallbackEnabled degrades sentiment failures to neutral
	// instead of failing the request. Defaults to true.
	SentimentFallbackEnabled *bool `yaml:"sentiment_fallback_enabled"`

	// LanguageFallbackEnabled retries failed operations in the default
	// language. Defaults to true.
	LanguageFallbackEnabled *bool `yaml:"language_fallback_enabled"`
}

// Default values applied by [ApplyDefaults].
const (
	DefaultResultsPerTopic    = 5
	DefaultAISummaryMinLength = 150
	DefaultRateLimitDelay     = 2 * time.Second
	DefaultMaxTextLength      = 5000
	DefaultMaxRetryAttempts   = 3
	DefaultRetryBaseDelay     = time.Second
)

// ApplyDefaults fills zero-valued fields with their documented defaults.
// Boolean toggles use *bool so that an absent key and an explicit false
// remain distinguishable.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Languages.Default == "" {
		cfg.Languages.Default = language.DefaultCode
	}
	if cfg.News.ResultsPerTopic == 0 {
		cfg.News.ResultsPerTopic = DefaultResultsPerTopic
	}
	if cfg.News.AISummaryMinLength == 0 {
		cfg.News.AISummaryMinLength = DefaultAISummaryMinLength
	}
	if cfg.News.RateLimitDelay == 0 {
		cfg.News.RateLimitDelay = DefaultRateLimitDelay
	}
	if cfg.Speech.MaxTextLength == 0 {
		cfg.Speech.MaxTextLength = DefaultMaxTextLength
	}
	if cfg.Resilience.MaxRetryAttempts == 0 {
		cfg.Resilience.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if cfg.Resilience.RetryBaseDelay == 0 {
		cfg.Resilience.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.News.UseAISummary == nil {
		cfg.News.UseAISummary = boolPtr(true)
	}
	if cfg.Resilience.EnableFallbackLogging == nil {
		cfg.Resilience.EnableFallbackLogging = boolPtr(true)
	}
	if cfg.Resilience.SentimentFallbackEnabled == nil {
		cfg.Resilience.SentimentFallbackEnabled = boolPtr(true)
	}
	if cfg.Resilience.LanguageFallbackEnabled == nil {
		cfg.Resilience.LanguageFallbackEnabled = boolPtr(true)
	}
}

func boolPtr(b bool) *bool { return &b }
