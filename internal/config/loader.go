package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/newsflash/newsflash/internal/language"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":    {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"tts":    {"openai", "gtrans"},
	"search": {"googlenews", "rss"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("search", cfg.Providers.Search.Name)

	if cfg.Providers.LLM.Name == "" {
		slog.Warn("no LLM provider configured; summaries will be deterministic and sentiment will default to neutral")
	}

	// Languages: the catalog must build and the default must be a member.
	if _, err := cfg.Catalog(); err != nil {
		errs = append(errs, fmt.Errorf("languages: %w", err))
	}

	// News
	if cfg.News.ResultsPerTopic < 0 {
		errs = append(errs, fmt.Errorf("news.results_per_topic %d must not be negative", cfg.News.ResultsPerTopic))
	}
	if cfg.News.RateLimitDelay < 0 {
		errs = append(errs, fmt.Errorf("news.rate_limit_delay %s must not be negative", cfg.News.RateLimitDelay))
	}
	if cfg.Providers.Search.Name == "rss" && len(cfg.News.Feeds) == 0 {
		errs = append(errs, errors.New("news.feeds is required when providers.search.name is \"rss\""))
	}

	// Speech
	if cfg.Speech.MaxTextLength < 0 {
		errs = append(errs, fmt.Errorf("speech.max_text_length %d must not be negative", cfg.Speech.MaxTextLength))
	}

	// Resilience
	if cfg.Resilience.MaxRetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("resilience.max_retry_attempts %d must be at least 1", cfg.Resilience.MaxRetryAttempts))
	}
	if cfg.Resilience.RetryBaseDelay < 0 {
		errs = append(errs, fmt.Errorf("resilience.retry_base_delay %s must not be negative", cfg.Resilience.RetryBaseDelay))
	}

	return errors.Join(errs...)
}

// Catalog builds the language catalog described by cfg.Languages, using the
// built-in set when no custom catalog is configured.
func (cfg *Config) Catalog() (*language.Catalog, error) {
	if len(cfg.Languages.Catalog) == 0 {
		if cfg.Languages.Default != "" && cfg.Languages.Default != language.DefaultCode {
			// A custom default needs a catalog that contains it; the
			// built-in set only supports "en" as default.
			return language.New(cfg.Languages.Default, language.BuiltinDescriptors())
		}
		return language.Builtin(), nil
	}
	return language.New(cfg.Languages.Default, cfg.Languages.Catalog)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
