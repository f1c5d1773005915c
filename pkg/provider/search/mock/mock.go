// Package mock provides a test double for the search.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/newsflash/newsflash/pkg/provider/search"
)

// Compile-time interface assertion.
var _ search.Provider = (*Provider)(nil)

// NewsCall records a single invocation of News.
type NewsCall struct {
	// Ctx is the context passed to News.
	Ctx context.Context
	// Query is the query passed to News.
	Query search.Query
}

// Provider is a mock implementation of search.Provider. The zero value is
// usable; it returns no results and a nil error.
type Provider struct {
	mu sync.Mutex

	// NewsFunc, if non-nil, handles calls entirely. The canned fields below
	// are ignored when it is set.
	NewsFunc func(ctx context.Context, q search.Query) ([]search.Result, error)

	// NewsResults is returned by News when NewsFunc is nil.
	NewsResults []search.Result

	// NewsErr, if non-nil, is returned as the error from News.
	NewsErr error

	// NewsCalls records every call to News in order.
	NewsCalls []NewsCall
}

// News implements search.Provider.
func (p *Provider) News(ctx context.Context, q search.Query) ([]search.Result, error) {
	p.mu.Lock()
	p.NewsCalls = append(p.NewsCalls, NewsCall{Ctx: ctx, Query: q})
	fn := p.NewsFunc
	results, err := p.NewsResults, p.NewsErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Calls returns a snapshot of the recorded News calls.
func (p *Provider) Calls() []NewsCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]NewsCall, len(p.NewsCalls))
	copy(out, p.NewsCalls)
	return out
}
