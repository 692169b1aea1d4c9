package prodcrawl

import "context"

// Fetcher retrieves HTML from URLs. The engine owns exactly one
// Fetcher per crawl session; its connection pool is reused across
// nodes, never forked per node.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation. Transport
	// failures and non-2xx statuses return EFETCH errors.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases transport resources.
	Close() error
}
