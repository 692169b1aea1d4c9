package mock

import "github.com/fwojciec/prodcrawl"

var _ prodcrawl.PageExtractor = (*PageExtractor)(nil)

// PageExtractor is a mock implementation of prodcrawl.PageExtractor.
type PageExtractor struct {
	ExtractPageFn func(html string, baseURL string) (*prodcrawl.PageInfo, error)
}

func (e *PageExtractor) ExtractPage(html string, baseURL string) (*prodcrawl.PageInfo, error) {
	return e.ExtractPageFn(html, baseURL)
}

var _ prodcrawl.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of prodcrawl.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*prodcrawl.ExtractedContent, error)
}

func (e *ContentExtractor) Extract(html string) (*prodcrawl.ExtractedContent, error) {
	return e.ExtractFn(html)
}

var _ prodcrawl.Converter = (*Converter)(nil)

// Converter is a mock implementation of prodcrawl.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
