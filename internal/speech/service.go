// Package speech turns summaries into audio clips with language fallback and
// retry around the TTS provider.
//
// Input text is cleaned before synthesis: markdown markers and URLs are
// stripped, whitespace is collapsed, and anything beyond the configured
// length is truncated with a spoken notice. Failures in a non-default
// language are retried against the default language before giving up.
package speech

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/newsflash/newsflash/internal/language"
	"github.com/newsflash/newsflash/internal/observe"
	"github.com/newsflash/newsflash/internal/resilience"
	"github.com/newsflash/newsflash/pkg/provider/tts"
)

// DefaultMaxTextLength bounds synthesis input in runes.
const DefaultMaxTextLength = 5000

// truncationNotice is appended to over-long text so listeners know the clip
// is incomplete.
const truncationNotice = "... Text truncated for audio generation."

// ttsMaxAttempts keeps TTS retries short; a stuck synthesis call should not
// hold a whole digest hostage.
const ttsMaxAttempts = 2

var (
	urlPattern = regexp.MustCompile(`https?://\S+`)
	spaceRuns  = regexp.MustCompile(`\s+`)

	// oddChars matches characters that trip up TTS backends. Letters, digits,
	// combining marks (Devanagari matras), and basic punctuation survive.
	oddChars = regexp.MustCompile(`[^\p{L}\p{N}\p{M}\s.,!?;:()\-।]`)
)

// Clip is one synthesized audio artifact.
type Clip struct {
	// Audio is the encoded clip (MP3 for the bundled providers).
	Audio []byte

	// Language is the language the clip was actually synthesized in.
	Language string

	// Filename is a collision-resistant suggested name, e.g.
	// "tts_hi_3fa94c21.mp3".
	Filename string
}

// Options configures a [Service].
type Options struct {
	TTS tts.Provider

	Catalog  *language.Catalog
	ErrorLog *resilience.ErrorLog
	Metrics  *observe.Metrics
	Logger   *slog.Logger

	// Slow requests reduced speaking rate where the backend supports it.
	Slow bool

	// MaxTextLength bounds input length in runes; 0 means
	// DefaultMaxTextLength.
	MaxTextLength int

	// RetryBaseDelay is the backoff delay between TTS attempts; 0 means the
	// resilience default.
	RetryBaseDelay time.Duration

	// LanguageFallbackEnabled retries a failed synthesis in the default
	// language.
	LanguageFallbackEnabled bool
}

// Service synthesizes speech clips. It is safe for concurrent use.
type Service struct {
	tts     tts.Provider
	catalog *language.Catalog
	orch    *resilience.Orchestrator
	retryer *resilience.Retryer
	errlog  *resilience.ErrorLog
	metrics *observe.Metrics
	logger  *slog.Logger

	slow          bool
	maxTextLength int
}

// NewService builds a Service from opts.
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
	maxLen := opts.MaxTextLength
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLength
	}

	return &Service{
		tts:     opts.TTS,
		catalog: catalog,
		orch:    resilience.NewOrchestrator(catalog, errlog, opts.LanguageFallbackEnabled),
		retryer: resilience.NewRetryer(resilience.RetryConfig{
			MaxAttempts: ttsMaxAttempts,
			BaseDelay:   opts.RetryBaseDelay,
		}, errlog),
		errlog:        errlog,
		metrics:       metrics,
		logger:        logger,
		slow:          opts.Slow,
		maxTextLength: maxLen,
	}
}

// Synthesize renders text as an audio clip in the requested language. The
// text is cleaned and bounded first; an unsupported language is substituted
// with the default, and a failure in a supported non-default language is
// retried against the default. The returned clip names the language the
// audio was actually produced in.
//
// Empty text (after cleaning) and exhausted fallback chains both return a
// *resilience.TTSError.
func (s *Service) Synthesize(ctx context.Context, text, requested string) (*Clip, error) {
	const op = "text_to_speech"

	clean := CleanText(text)
	if clean == "" {
		err := &resilience.TTSError{Op: op, Language: requested, Err: fmt.Errorf("no speakable text")}
		s.errlog.TTS(op, requested, err, "")
		return nil, err
	}
	if runes := []rune(clean); len(runes) > s.maxTextLength {
		clean = string(runes[:s.maxTextLength]) + truncationNotice
	}

	start := time.Now()
	clip, err := resilience.Run(s.orch, ctx, op, requested, func(ctx context.Context, lang string) (*Clip, error) {
		audio, err := resilience.RetryWithResult(s.retryer, ctx, op, func(ctx context.Context) ([]byte, error) {
			return s.tts.Synthesize(ctx, tts.Request{
				Text:       clean,
				SpeechCode: s.catalog.SpeechCodeFor(lang),
				Slow:       s.slow,
			})
		})
		if err != nil {
			return nil, err
		}
		return &Clip{
			Audio:    audio,
			Language: lang,
			Filename: clipFilename(lang),
		}, nil
	})
	if err != nil {
		s.metrics.RecordProviderError(ctx, "tts", op)
		s.errlog.TTS(op, requested, err, "")
		return nil, &resilience.TTSError{Op: op, Language: requested, Err: err}
	}

	s.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
	s.logger.Info("generated speech clip",
		"language", clip.Language,
		"bytes", len(clip.Audio),
		"text_length", len([]rune(clean)),
	)
	return clip, nil
}

// WriteClip stores a clip under dir using its suggested filename and returns
// the full path. The directory is created when missing.
func (s *Service) WriteClip(dir string, clip *Clip) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("speech: create audio dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, clip.Filename)
	if err := os.WriteFile(path, clip.Audio, 0o644); err != nil {
		return "", fmt.Errorf("speech: write %s: %w", path, err)
	}
	return path, nil
}

// RemoveStaleClips deletes tts_*.mp3 files under dir older than maxAge.
// Missing directories are not an error.
func RemoveStaleClips(dir string, maxAge time.Duration, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("speech: read audio dir %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "tts_") || !strings.HasSuffix(name, ".mp3") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err == nil && logger != nil {
			logger.Debug("removed stale speech clip", "file", name)
		}
	}
	return nil
}

// CleanText prepares text for synthesis: markdown emphasis markers and URLs
// are removed, characters outside letters/digits/marks/punctuation become
// spaces, and whitespace collapses to single spaces.
func CleanText(text string) string {
	r := strings.NewReplacer("**", "", "*", "", "_", "")
	text = r.Replace(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = oddChars.ReplaceAllString(text, " ")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// clipFilename builds a unique name like "tts_en_3fa94c21.mp3".
func clipFilename(lang string) string {
	var b [4]byte
	rand.Read(b[:]) //nolint:errcheck // crypto/rand never fails on supported platforms
	return fmt.Sprintf("tts_%s_%s.mp3", lang, hex.EncodeToString(b[:]))
}
