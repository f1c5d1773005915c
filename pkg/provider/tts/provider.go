// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., the Google Translate
// TTS endpoint or the OpenAI speech API) and presents a uniform one-shot
// interface: text in, encoded audio bytes out. Streaming synthesis is out of
// scope — news summaries are short and rendered as whole clips.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Request carries one synthesis call's parameters.
type Request struct {
	// Text is the cleaned, bounded text to speak.
	Text string

	// SpeechCode is the backend language/voice code (e.g., "en", "hi").
	SpeechCode string

	// Slow requests a reduced speaking rate where the backend supports it.
	Slow bool
}

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Synthesize renders req.Text as encoded audio (MP3 unless the
	// implementation documents otherwise) and returns the full clip.
	//
	// Returns an error if the backend rejects the request, the language is
	// unavailable, or ctx is cancelled. An empty clip with a nil error is
	// invalid; implementations must return an error instead.
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}
