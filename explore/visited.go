package explore

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// Visited is the global set of discovered URLs. A Bloom filter serves
// as a cheap negative pre-check; the exact map behind it settles the
// false positives, so the dedup invariant (one node, one scoring call
// per URL) holds exactly. URL fragments are stripped before testing -
// URLs differing only by fragment are duplicates.
type Visited struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// NewVisited creates a Visited set sized for n expected URLs with the
// given Bloom false positive rate.
func NewVisited(n uint, fpRate float64) *Visited {
	return &Visited{
		filter: bloom.NewWithEstimates(n, fpRate),
		exact:  make(map[string]struct{}, 64),
	}
}

// Add records a URL as discovered. Returns false if it was already
// present.
func (v *Visited) Add(rawURL string) bool {
	key := stripFragment(rawURL)
	if v.Seen(key) {
		return false
	}
	v.filter.AddString(key)
	v.exact[key] = struct{}{}
	return true
}

// Seen reports whether the URL has been discovered before.
func (v *Visited) Seen(rawURL string) bool {
	key := stripFragment(rawURL)
	if !v.filter.TestString(key) {
		return false
	}
	_, ok := v.exact[key]
	return ok
}

// Len returns the number of discovered URLs.
func (v *Visited) Len() int {
	return len(v.exact)
}

func stripFragment(rawURL string) string {
	if idx := strings.Index(rawURL, "#"); idx != -1 {
		return rawURL[:idx]
	}
	return rawURL
}
