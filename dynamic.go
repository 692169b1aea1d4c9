package prodcrawl

import "context"

// DynamicLoader exhausts dynamic-loading UI on a page and returns the
// links it reveals. Implementations own a single browser-automation
// session reused across nodes: dynamic-content state (scroll position,
// expanded panels) is inherently single-session.
//
// Returned links are raw candidates; the engine runs them through the
// same admission pipeline (domain check, dedup, scoring) as ordinary
// children.
type DynamicLoader interface {
	// Exhaust activates the detected trigger control until it stops
	// producing new content or a per-handler ceiling is hit. target is
	// the candidate the detection call identified as the control.
	// A wait condition that never satisfies aborts this one handler
	// with whatever links were already revealed, not the crawl.
	Exhaust(ctx context.Context, pageURL string, trigger TriggerType, target LinkInfo) ([]LinkInfo, error)

	// ExhaustScroll scrolls to the bottom repeatedly until the page
	// height stops growing or a scroll ceiling is hit. Called
	// unconditionally on every qualifying page regardless of the
	// detection verdict.
	ExhaustScroll(ctx context.Context, pageURL string) ([]LinkInfo, error)

	// Close releases browser resources.
	Close() error
}
