// Package goquery implements page parsing with PuerkitoBio/goquery:
// scoring context (title, description) and candidate link extraction.
package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/prodcrawl"
	"golang.org/x/net/html"
)

// TagContext is capped at this many bytes; enough markup for the
// scoring prompt without bloating it.
const maxTagContext = 240

// Ensure Extractor implements prodcrawl.PageExtractor at compile time.
var _ prodcrawl.PageExtractor = (*Extractor)(nil)

// Extractor parses fetched HTML into scoring context and candidate
// links.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPage parses HTML and returns the page's scoring context plus
// its candidate links. Relative hrefs are resolved against baseURL;
// non-HTTP links, self-references, and per-page duplicates are
// dropped. Candidates keep document order; ids are assigned later by
// the engine when the scoring batch is assembled.
func (e *Extractor) ExtractPage(rawHTML string, baseURL string) (*prodcrawl.PageInfo, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, prodcrawl.Errorf(prodcrawl.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, prodcrawl.Errorf(prodcrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	info := &prodcrawl.PageInfo{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		Description: metaDescription(doc),
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}
		if isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}

		info.Links = append(info.Links, prodcrawl.LinkInfo{
			RelativePath: relativePath(resolved),
			AbsoluteURL:  resolved,
			AnchorText:   strings.TrimSpace(sel.Text()),
			TagContext:   tagContext(sel),
		})
	})

	return info, nil
}

func metaDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	return ""
}

// tagContext renders the anchor's own markup as a hint for the
// scoring prompt (class names and data attributes often reveal
// product cards, pagination controls, and the like).
func tagContext(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, sel.Nodes[0]); err != nil {
		return ""
	}
	ctx := strings.Join(strings.Fields(buf.String()), " ")
	if len(ctx) > maxTagContext {
		ctx = ctx[:maxTagContext]
	}
	return ctx
}

// resolveURL resolves a relative URL against a base URL. Returns empty
// string for unparseable hrefs and self-referential links (anchor-only
// links pointing back at the same page). Fragments are stripped and
// trailing path slashes trimmed, the same form node URLs are indexed
// under, so an href of "/" on the homepage matches the page itself.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.Path = strings.TrimSuffix(resolved.Path, "/")

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	baseNoFragment.Path = strings.TrimSuffix(baseNoFragment.Path, "/")
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// relativePath returns the path (plus query) portion of an absolute
// URL, the form candidate links are presented in to the scorer.
func relativePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be
// skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
