// Package search defines the Provider interface for news search backends.
//
// A search provider answers a topic query with a ranked list of article
// results. Backends differ in how the query is evaluated: the Google News
// provider issues a remote search, while the RSS provider filters a fixed
// feed set locally. Both return the same Result shape.
//
// Implementations must be safe for concurrent use.
package search

import (
	"context"
	"time"
)

// Result is one article returned by a search.
type Result struct {
	// Title is the article headline.
	Title string

	// URL links to the full article.
	URL string

	// Snippet is the teaser or description text, possibly empty.
	Snippet string

	// Source names the publisher, possibly empty.
	Source string

	// Published is the publication time; zero when the backend omits it.
	Published time.Time
}

// Query describes one news search.
type Query struct {
	// Topic is the subject to search for (e.g., "technology").
	Topic string

	// Language is the result language code (e.g., "en", "hi", "mr").
	// Backends that cannot filter by language may ignore it.
	Language string

	// MaxResults bounds the number of results; 0 means the backend default.
	MaxResults int
}

// Provider is the abstraction over any news search backend.
type Provider interface {
	// News returns up to q.MaxResults articles matching q.Topic, newest
	// first where the backend supports ordering. An empty slice with a nil
	// error means the search succeeded but found nothing.
	News(ctx context.Context, q Query) ([]Result, error)
}
