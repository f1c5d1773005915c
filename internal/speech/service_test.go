package speech

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/newsflash/newsflash/internal/resilience"
	"github.com/newsflash/newsflash/pkg/provider/tts"
	ttsmock "github.com/newsflash/newsflash/pkg/provider/tts/mock"
)

func newTestService(t *testing.T, p tts.Provider, opts Options) *Service {
	t.Helper()
	opts.TTS = p
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.RetryBaseDelay == 0 {
		opts.RetryBaseDelay = time.Millisecond
	}
	return NewService(opts)
}

func TestSynthesize_Success(t *testing.T) {
	mock := &ttsmock.Provider{SynthesizeAudio: []byte("mp3")}
	s := newTestService(t, mock, Options{LanguageFallbackEnabled: true, Slow: true})

	clip, err := s.Synthesize(context.Background(), "A short news summary to speak.", "hi")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(clip.Audio) != "mp3" {
		t.Errorf("Audio = %q", clip.Audio)
	}
	if clip.Language != "hi" {
		t.Errorf("Language = %q, want hi", clip.Language)
	}
	if !regexp.MustCompile(`^tts_hi_[0-9a-f]{8}\.mp3$`).MatchString(clip.Filename) {
		t.Errorf("Filename = %q, want tts_hi_<8 hex>.mp3", clip.Filename)
	}

	call := mock.Calls()[0]
	if call.Req.SpeechCode != "hi" {
		t.Errorf("SpeechCode = %q, want hi", call.Req.SpeechCode)
	}
	if !call.Req.Slow {
		t.Error("Slow flag not propagated")
	}
}

func TestSynthesize_UnsupportedLanguageUsesDefault(t *testing.T) {
	mock := &ttsmock.Provider{SynthesizeAudio: []byte("x")}
	s := newTestService(t, mock, Options{LanguageFallbackEnabled: true})

	clip, err := s.Synthesize(context.Background(), "Some text to speak aloud.", "xx")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if clip.Language != "en" {
		t.Errorf("Language = %q, want en", clip.Language)
	}
}

func TestSynthesize_FallsBackToDefaultOnFailure(t *testing.T) {
	mock := &ttsmock.Provider{
		SynthesizeFunc: func(ctx context.Context, req tts.Request) ([]byte, error) {
			if req.SpeechCode == "mr" {
				return nil, errors.New("404 voice not found")
			}
			return []byte("en-audio"), nil
		},
	}
	s := newTestService(t, mock, Options{LanguageFallbackEnabled: true})

	clip, err := s.Synthesize(context.Background(), "Fallback test sentence.", "mr")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if clip.Language != "en" {
		t.Errorf("Language = %q, want en after fallback", clip.Language)
	}
}

func TestSynthesize_ExhaustionReturnsTTSError(t *testing.T) {
	mock := &ttsmock.Provider{SynthesizeErr: errors.New("503 service unavailable")}
	s := newTestService(t, mock, Options{LanguageFallbackEnabled: true})

	_, err := s.Synthesize(context.Background(), "Doomed sentence.", "hi")
	var terr *resilience.TTSError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *TTSError", err)
	}
	if terr.Language != "hi" {
		t.Errorf("TTSError.Language = %q, want the requested language", terr.Language)
	}
}

func TestSynthesize_EmptyTextFails(t *testing.T) {
	mock := &ttsmock.Provider{SynthesizeAudio: []byte("x")}
	s := newTestService(t, mock, Options{})

	_, err := s.Synthesize(context.Background(), "**__**  https://example.com/only-a-url  ", "en")
	var terr *resilience.TTSError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *TTSError for unspeakable text", err)
	}
	if len(mock.Calls()) != 0 {
		t.Errorf("provider called %d times for empty text, want 0", len(mock.Calls()))
	}
}

func TestSynthesize_TruncatesLongText(t *testing.T) {
	mock := &ttsmock.Provider{SynthesizeAudio: []byte("x")}
	s := newTestService(t, mock, Options{MaxTextLength: 40})

	long := strings.Repeat("word ", 30)
	if _, err := s.Synthesize(context.Background(), long, "en"); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	sent := mock.Calls()[0].Req.Text
	if !strings.HasSuffix(sent, truncationNotice) {
		t.Errorf("truncated text missing notice: %q", sent)
	}
	if len([]rune(sent)) != 40+len([]rune(truncationNotice)) {
		t.Errorf("sent %d runes, want %d plus notice", len([]rune(sent)), 40)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markdown stripped",
			in:   "This is **bold** and *italic* and _underlined_.",
			want: "This is bold and italic and underlined.",
		},
		{
			name: "urls removed",
			in:   "Read more at https://example.com/story?id=1 today.",
			want: "Read more at today.",
		},
		{
			name: "whitespace collapsed",
			in:   "line one\n\n  line two\t\tend",
			want: "line one line two end",
		},
		{
			name: "devanagari preserved",
			in:   "यह एक परीक्षण है।",
			want: "यह एक परीक्षण है।",
		},
		{
			name: "odd characters spaced out",
			in:   "Stocks up 5% — great news™",
			want: "Stocks up 5 great news",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteClipAndRemoveStale(t *testing.T) {
	dir := t.TempDir()
	s := newTestService(t, &ttsmock.Provider{SynthesizeAudio: []byte("audio")}, Options{})

	clip := &Clip{Audio: []byte("audio"), Language: "en", Filename: "tts_en_deadbeef.mp3"}
	path, err := s.WriteClip(dir, clip)
	if err != nil {
		t.Fatalf("WriteClip returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "audio" {
		t.Fatalf("written clip unreadable: %v", err)
	}

	// Age the file past the cutoff and sweep.
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if err := RemoveStaleClips(dir, 24*time.Hour, nil); err != nil {
		t.Fatalf("RemoveStaleClips returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale clip not removed")
	}

	// Missing directory is fine.
	if err := RemoveStaleClips(filepath.Join(dir, "missing"), time.Hour, nil); err != nil {
		t.Errorf("RemoveStaleClips on missing dir: %v", err)
	}
}
