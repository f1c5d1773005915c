package resilience

import (
	"context"
	"log/slog"

	"github.com/newsflash/newsflash/internal/language"
)

// Orchestrator drives a language-sensitive unit of work through its fallback
// chain: the requested language first (when supported), then the catalog
// default. The first success wins; exhausting the chain yields a
// [*LanguageError], the one path where the orchestrator does not degrade.
//
// Safe for concurrent use; chains are built per call.
type Orchestrator struct {
	catalog *language.Catalog
	log     *ErrorLog

	// fallbackEnabled gates the second, default-language attempt made by
	// [Orchestrator.Wrap]. Chain-driven Run is unaffected: its chain already
	// encodes the fallback.
	fallbackEnabled bool
}

// NewOrchestrator creates an [Orchestrator] over catalog. fallbackEnabled
// corresponds to the language_fallback_enabled configuration option.
func NewOrchestrator(catalog *language.Catalog, log *ErrorLog, fallbackEnabled bool) *Orchestrator {
	return &Orchestrator{catalog: catalog, log: log, fallbackEnabled: fallbackEnabled}
}

// ChainFor builds the ordered language chain for requested: a supported
// non-default language yields [requested, default]; anything else yields
// [default]. The chain never contains duplicates and always ends in the
// default.
func (o *Orchestrator) ChainFor(requested string) []string {
	def := o.catalog.Default()
	if o.catalog.IsSupported(requested) {
		if normalized := o.catalog.FallbackFor(requested); normalized != def {
			return []string{normalized, def}
		}
	}
	return []string{def}
}

// Run executes fn for each language in requested's fallback chain, returning
// the first success. Each failure is logged against op and the candidate
// language; when the final candidate fails the last error is wrapped in a
// [*LanguageError].
func Run[R any](o *Orchestrator, ctx context.Context, op, requested string, fn func(ctx context.Context, lang string) (R, error)) (R, error) {
	var zero R
	chain := o.ChainFor(requested)

	for i, lang := range chain {
		result, err := fn(ctx, lang)
		if err == nil {
			return result, nil
		}

		last := i == len(chain)-1
		if last {
			o.log.Language(op, lang, err, "")
			return zero, &LanguageError{Op: op, Language: lang, Err: err}
		}
		o.log.Language(op, lang, err, chain[i+1])
	}

	// Unreachable: ChainFor always returns at least the default language.
	return zero, &LanguageError{Op: op, Language: o.catalog.Default()}
}

// Wrap adapts a language-sensitive unit of work so that (a) the language it
// receives is always a supported one — unsupported inputs are substituted
// with the catalog default before the first call — and (b) a failure in a
// non-default language is retried once against the default before giving
// up. This coarse boundary fallback applies to any operation taking a
// language, including non-text ones.
func (o *Orchestrator) Wrap(op string, fn func(ctx context.Context, lang string) error) func(ctx context.Context, lang string) error {
	return func(ctx context.Context, lang string) error {
		target := o.catalog.FallbackFor(lang)
		if target != lang {
			slog.Info("language fallback", "operation", op, "from", lang, "to", target)
		}

		err := fn(ctx, target)
		if err == nil {
			return nil
		}

		def := o.catalog.Default()
		if target == def || !o.fallbackEnabled {
			o.log.Language(op, target, err, "")
			return &LanguageError{Op: op, Language: target, Err: err}
		}

		o.log.Language(op, target, err, def)
		if err := fn(ctx, def); err != nil {
			o.log.Language(op, def, err, "")
			return &LanguageError{Op: op, Language: def, Err: err}
		}
		return nil
	}
}
