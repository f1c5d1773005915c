// Package mock provides a test double for the tts.Provider interface.
//
// Use Provider to return canned audio (or errors) and to verify what text and
// speech codes a consumer passes to its TTS backend.
//
// Example:
//
//	p := &mock.Provider{SynthesizeAudio: []byte("mp3-bytes")}
//	audio, err := p.Synthesize(ctx, tts.Request{Text: "hello", SpeechCode: "en"})
package mock

import (
	"context"
	"sync"

	"github.com/newsflash/newsflash/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	// Ctx is the context passed to Synthesize.
	Ctx context.Context
	// Req is the request passed to Synthesize.
	Req tts.Request
}

// Provider is a mock implementation of tts.Provider. The zero value is usable;
// it returns nil audio and a nil error.
type Provider struct {
	mu sync.Mutex

	// SynthesizeFunc, if non-nil, handles calls entirely. The canned fields
	// below are ignored when it is set.
	SynthesizeFunc func(ctx context.Context, req tts.Request) ([]byte, error)

	// SynthesizeAudio is returned by Synthesize when SynthesizeFunc is nil.
	SynthesizeAudio []byte

	// SynthesizeErr, if non-nil, is returned as the error from Synthesize.
	SynthesizeErr error

	// SynthesizeCalls records every call to Synthesize in order.
	SynthesizeCalls []SynthesizeCall
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	p.mu.Lock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Ctx: ctx, Req: req})
	fn := p.SynthesizeFunc
	audio, err := p.SynthesizeAudio, p.SynthesizeErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return audio, nil
}

// Calls returns a snapshot of the recorded Synthesize calls.
func (p *Provider) Calls() []SynthesizeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SynthesizeCall, len(p.SynthesizeCalls))
	copy(out, p.SynthesizeCalls)
	return out
}
