package explore_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fwojciec/prodcrawl/explore"
)

func TestVisited_Add_rejects_duplicates(t *testing.T) {
	t.Parallel()

	v := explore.NewVisited(1000, 0.01)

	assert.True(t, v.Add("https://example.com/a"))
	assert.False(t, v.Add("https://example.com/a"))
	assert.Equal(t, 1, v.Len())
}

func TestVisited_treats_fragment_variants_as_one_URL(t *testing.T) {
	t.Parallel()

	v := explore.NewVisited(1000, 0.01)

	assert.True(t, v.Add("https://example.com/page#section-1"))
	assert.True(t, v.Seen("https://example.com/page"))
	assert.True(t, v.Seen("https://example.com/page#section-2"))
	assert.False(t, v.Add("https://example.com/page#top"))
	assert.Equal(t, 1, v.Len())
}

func TestVisited_Seen_is_exact_despite_bloom_false_positives(t *testing.T) {
	t.Parallel()

	// An aggressively undersized filter makes false positives likely;
	// the exact set behind it must still answer correctly.
	v := explore.NewVisited(2, 0.5)

	for i := 0; i < 200; i++ {
		v.Add(fmt.Sprintf("https://example.com/page-%d", i))
	}

	for i := 0; i < 200; i++ {
		assert.True(t, v.Seen(fmt.Sprintf("https://example.com/page-%d", i)))
	}
	for i := 200; i < 400; i++ {
		assert.False(t, v.Seen(fmt.Sprintf("https://example.com/page-%d", i)))
	}
	assert.Equal(t, 200, v.Len())
}
