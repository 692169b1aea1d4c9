package prodcrawl

import "context"

// TriggerType is the category of dynamic-loading UI control.
type TriggerType string

// Trigger types recognized by the dynamic-content subsystem.
// InfiniteScroll is never returned by detection; structural detection
// is unreliable for scroll-triggered loading, so the engine checks it
// unconditionally on every qualifying page.
const (
	TriggerNone           TriggerType = ""
	TriggerPagination     TriggerType = "Pagination"
	TriggerLoadMore       TriggerType = "Load More"
	TriggerInfiniteScroll TriggerType = "Infinite Scroll"
	TriggerTabs           TriggerType = "Tabs"
	TriggerAccordions     TriggerType = "Accordions"
	TriggerExpanders      TriggerType = "Expanders"
)

// Detection is the result of a dynamic-loading detection call.
// ID is the candidate id of the triggering element, or -1 when no
// dynamic-loading control was found among the candidates.
type Detection struct {
	ID      int         `json:"id"`
	Trigger TriggerType `json:"triggerType,omitempty"`
}

// None reports whether no dynamic-loading control was detected.
func (d Detection) None() bool {
	return d.ID < 0 || d.Trigger == TriggerNone
}

// Scorer is the AI scoring gateway: the capability set the exploration
// engine needs from an AI provider. One implementing variant exists
// per provider (gemini/, anthropic/, openai/); selection is a pure
// configuration concern at session construction. A failing provider is
// never silently swapped for another mid-crawl.
//
// All requests are issued behind one fixed role instruction (the
// architect-looking-for-product-pages persona) so scoring stays
// consistent across candidates in a batch.
type Scorer interface {
	// ScoreLinks scores a batch of candidate links from 0 to 10 for
	// how likely each leads to a product description page. The result
	// always has exactly one entry per candidate, in candidate order:
	// implementations tolerate positional and id-correlated responses,
	// pad missing ids with score 0, and ignore extras. Only transport
	// or authentication failures surface as errors (EAIPROVIDER).
	ScoreLinks(ctx context.Context, nodeCtx NodeContext, candidates []LinkInfo) ([]LinkScore, error)

	// DetectDynamicLoading asks whether the page's UI exposes a
	// dynamic-loading control among the given candidates. A Detection
	// with ID -1 means none was found.
	DetectDynamicLoading(ctx context.Context, nodeCtx NodeContext, candidates []LinkInfo) (Detection, error)

	// ConfirmProduct asks whether a fetched page is itself a product
	// description page. Returns the product name, or "" when the page
	// is not a product page.
	ConfirmProduct(ctx context.Context, page PageContent) (string, error)
}
