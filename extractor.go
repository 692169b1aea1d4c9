package prodcrawl

// PageInfo is the parsed view of a fetched page: the context used for
// scoring prompts plus the candidate links found on the page.
// Candidate IDs are not assigned here; the engine numbers each scoring
// batch sequentially.
type PageInfo struct {
	Title       string
	Description string
	Links       []LinkInfo
}

// PageExtractor turns raw HTML into a PageInfo. Implementations
// resolve relative hrefs against baseURL, skip non-HTTP links
// (javascript:, mailto:, ...) and capture anchor text and surrounding
// markup for each candidate.
type PageExtractor interface {
	ExtractPage(html string, baseURL string) (*PageInfo, error)
}

// ExtractedContent is the main content of a page as identified by a
// content extractor, before markdown conversion.
type ExtractedContent struct {
	Title       string
	Description string
	ContentHTML string
}

// ContentExtractor extracts a page's main content, used to build
// product-page confirmation prompts.
type ContentExtractor interface {
	Extract(html string) (*ExtractedContent, error)
}

// Converter transforms HTML into Markdown.
type Converter interface {
	Convert(html string) (string, error)
}
