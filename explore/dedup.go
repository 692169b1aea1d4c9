package explore

import (
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/prodcrawl"
)

// Tracking query parameters stripped during URL normalization.
var trackingParams = map[string]bool{
	"gclid":   true,
	"fbclid":  true,
	"msclkid": true,
	"ref":     true,
}

// Dedupe removes duplicate products by normalized-URL equality,
// keeping the first-seen entry. Product names are cleaned (trimmed,
// whitespace collapsed) in the returned slice; input order is
// preserved otherwise.
func Dedupe(products []prodcrawl.Product) []prodcrawl.Product {
	seen := make(map[uint64]struct{}, len(products))
	out := make([]prodcrawl.Product, 0, len(products))
	for _, p := range products {
		key := xxhash.Sum64String(NormalizeURL(p.URL))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, prodcrawl.Product{
			ProductName: NormalizeName(p.ProductName),
			URL:         p.URL,
		})
	}
	return out
}

// NormalizeURL canonicalizes a product URL for duplicate comparison:
// lowercased scheme and host, fragment and tracking parameters
// (utm_*, gclid, fbclid, msclkid, ref) stripped, trailing slash
// trimmed. Unparseable URLs are returned trimmed but otherwise as-is.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSpace(rawURL)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for param := range q {
			if trackingParams[strings.ToLower(param)] || strings.HasPrefix(strings.ToLower(param), "utm_") {
				q.Del(param)
			}
		}
		u.RawQuery = q.Encode()
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// NormalizeName trims a product name and collapses runs of whitespace
// into single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
