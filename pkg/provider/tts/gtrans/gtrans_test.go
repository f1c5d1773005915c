package gtrans

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/newsflash/newsflash/pkg/provider/tts"
)

func TestSynthesizeSingleChunk(t *testing.T) {
	var gotQuery, gotLang, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLang = r.URL.Query().Get("tl")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("MP3DATA"))
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	audio, err := p.Synthesize(context.Background(), tts.Request{Text: "Hello world.", SpeechCode: "en"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(audio) != "MP3DATA" {
		t.Errorf("audio = %q, want %q", audio, "MP3DATA")
	}
	if gotQuery != "Hello world." {
		t.Errorf("q = %q, want %q", gotQuery, "Hello world.")
	}
	if gotLang != "en" {
		t.Errorf("tl = %q, want %q", gotLang, "en")
	}
	if gotUA == "" || strings.Contains(strings.ToLower(gotUA), "go-http-client") {
		t.Errorf("User-Agent = %q, want a browser-like agent", gotUA)
	}
}

func TestSynthesizeConcatenatesChunks(t *testing.T) {
	var chunks []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunks = append(chunks, r.URL.Query().Get("q"))
		w.Write([]byte("X"))
	}))
	defer srv.Close()

	// Two sentences, each under the limit but together over it.
	long := strings.Repeat("abcde ", 12) + "end. " + strings.Repeat("fghij ", 12) + "done."
	p := New(WithBaseURL(srv.URL))
	audio, err := p.Synthesize(context.Background(), tts.Request{Text: long, SpeechCode: "en"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunk requests, got %d", len(chunks))
	}
	if len(audio) != len(chunks) {
		t.Errorf("audio length = %d, want %d (one byte per chunk)", len(audio), len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > maxChunkLen {
			t.Errorf("chunk %d is %d runes, exceeds %d", i, len([]rune(c)), maxChunkLen)
		}
	}
}

func TestSynthesizeSlowSpeed(t *testing.T) {
	var gotSpeed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSpeed = r.URL.Query().Get("ttsspeed")
		w.Write([]byte("X"))
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	if _, err := p.Synthesize(context.Background(), tts.Request{Text: "hi", SpeechCode: "en", Slow: true}); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if gotSpeed != slowSpeed {
		t.Errorf("ttsspeed = %q, want %q", gotSpeed, slowSpeed)
	}
}

func TestSynthesizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := New(WithBaseURL(srv.URL))
	if _, err := p.Synthesize(context.Background(), tts.Request{Text: "hi", SpeechCode: "en"}); err == nil {
		t.Fatal("expected error for non-200 response, got nil")
	} else if !strings.Contains(err.Error(), "429") {
		t.Errorf("error %q does not carry the status code", err)
	}
}

func TestSynthesizeEmptyInputs(t *testing.T) {
	p := New()
	if _, err := p.Synthesize(context.Background(), tts.Request{Text: "", SpeechCode: "en"}); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := p.Synthesize(context.Background(), tts.Request{Text: "hi", SpeechCode: ""}); err == nil {
		t.Error("expected error for empty speech code")
	}
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{
			name:   "short text passes through",
			text:   "hello",
			maxLen: 10,
			want:   []string{"hello"},
		},
		{
			name:   "splits on sentence boundary",
			text:   "One two. Three four five six.",
			maxLen: 12,
			want:   []string{"One two.", "Three four", "five six."},
		},
		{
			name:   "splits on danda",
			text:   "यह एक वाक्य है। दूसरा वाक्य यहाँ है।",
			maxLen: 20,
			want:   []string{"यह एक वाक्य है।", "दूसरा वाक्य यहाँ है।"},
		},
		{
			name:   "hard split when no boundary",
			text:   "aaaaaaaaaaaa",
			maxLen: 5,
			want:   []string{"aaaaa", "aaaaa", "aa"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitChunks(tt.text, tt.maxLen)
			if len(got) != len(tt.want) {
				t.Fatalf("splitChunks(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
