package prodcrawl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/prodcrawl"
)

func TestNewTree_normalizes_root_URL_and_domain(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://Example.COM/")
	require.NoError(t, err)

	assert.Equal(t, "https://Example.COM", tree.Root.URL, "trailing slash should be trimmed")
	assert.Equal(t, "example.com", tree.Domain, "domain should be lowercased")
	assert.Equal(t, prodcrawl.NeutralScore, tree.Root.OwnScore)
	assert.Equal(t, prodcrawl.StateUnexplored, tree.Root.State)
	assert.Equal(t, 1, tree.Len())
}

func TestNewTree_rejects_URL_without_hostname(t *testing.T) {
	t.Parallel()

	_, err := prodcrawl.NewTree("/relative/path")
	require.Error(t, err)
	assert.Equal(t, prodcrawl.EINVALID, prodcrawl.ErrorCode(err))
}

func TestTree_InScope_matches_hostnames_exactly(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://shop.example.com")
	require.NoError(t, err)

	assert.True(t, tree.InScope("https://shop.example.com/products"))
	assert.True(t, tree.InScope("https://SHOP.EXAMPLE.COM/products"), "hostname comparison is case-insensitive")
	assert.False(t, tree.InScope("https://example.com/products"), "parent domain is out of scope")
	assert.False(t, tree.InScope("https://cdn.shop.example.com/img"), "subdomain is out of scope")
	assert.False(t, tree.InScope("/products"), "empty hostname never matches")
	assert.False(t, tree.InScope("mailto:sales@shop.example.com"))
}

func TestTree_AddChild_returns_existing_node_for_known_URL(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://example.com")
	require.NoError(t, err)

	a, created := tree.AddChild(tree.Root, "https://example.com/a", 6.0)
	require.True(t, created)
	assert.Equal(t, 1, a.Depth)
	assert.Equal(t, 6.0, a.OwnScore)

	// The same URL encountered under a different parent must not
	// create a second node.
	b, created := tree.AddChild(a, "https://example.com/a", 2.0)
	assert.False(t, created)
	assert.Same(t, a, b)
	assert.Equal(t, 6.0, b.OwnScore, "existing node keeps its original score")
	assert.Equal(t, 2, tree.Len())
}

func TestWebsiteNode_AverageAncestralScore_excludes_root(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://example.com")
	require.NoError(t, err)

	n1, _ := tree.AddChild(tree.Root, "https://example.com/a", 8.0)
	n2, _ := tree.AddChild(n1, "https://example.com/a/b", 4.0)
	n3, _ := tree.AddChild(n2, "https://example.com/a/b/c", 6.0)

	// (8 + 4 + 6) / 3: the root's neutral score is not part of the
	// average.
	assert.InDelta(t, 6.0, n3.AverageAncestralScore(), 1e-9)
	assert.InDelta(t, 6.0, n2.AverageAncestralScore(), 1e-9)
	assert.InDelta(t, 8.0, n1.AverageAncestralScore(), 1e-9)
}

func TestWebsiteNode_AverageAncestralScore_of_root_is_own_score(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://example.com")
	require.NoError(t, err)

	assert.Equal(t, prodcrawl.NeutralScore, tree.Root.AverageAncestralScore())
}

func TestTree_MarkCompleteAndPropagate_completes_explored_ancestors(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://example.com")
	require.NoError(t, err)

	a, _ := tree.AddChild(tree.Root, "https://example.com/a", 5.0)
	b, _ := tree.AddChild(a, "https://example.com/a/b", 5.0)
	c, _ := tree.AddChild(a, "https://example.com/a/c", 5.0)

	tree.Root.State = prodcrawl.StateExplored
	a.State = prodcrawl.StateExplored

	tree.MarkCompleteAndPropagate(b)
	assert.Equal(t, prodcrawl.StateCompletelyExplored, b.State)
	assert.Equal(t, prodcrawl.StateExplored, a.State, "sibling c is still incomplete")

	tree.MarkCompleteAndPropagate(c)
	assert.Equal(t, prodcrawl.StateCompletelyExplored, a.State)
	assert.Equal(t, prodcrawl.StateCompletelyExplored, tree.Root.State)
}

func TestTree_MarkCompleteAndPropagate_stops_at_unexplored_ancestor(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://example.com")
	require.NoError(t, err)

	// The parent is still being processed: its scoring pass (or a
	// dynamic-content pass) may yet add more children, so completing
	// its only known child must not complete the parent.
	a, _ := tree.AddChild(tree.Root, "https://example.com/a", 5.0)
	b, _ := tree.AddChild(a, "https://example.com/a/b", 5.0)

	tree.MarkCompleteAndPropagate(b)

	assert.Equal(t, prodcrawl.StateCompletelyExplored, b.State)
	assert.Equal(t, prodcrawl.StateUnexplored, a.State)
	assert.Equal(t, prodcrawl.StateUnexplored, tree.Root.State)
}

func TestTree_MarkCompleteAndPropagate_stops_at_already_complete_ancestor(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://example.com")
	require.NoError(t, err)

	a, _ := tree.AddChild(tree.Root, "https://example.com/a", 5.0)
	b, _ := tree.AddChild(a, "https://example.com/a/b", 5.0)

	a.State = prodcrawl.StateCompletelyExplored

	// Re-propagation through an already complete ancestor is a no-op;
	// states never move backward.
	tree.MarkCompleteAndPropagate(b)
	assert.Equal(t, prodcrawl.StateCompletelyExplored, a.State)
	assert.Equal(t, prodcrawl.StateUnexplored, tree.Root.State)
}

func TestTree_Lookup_finds_admitted_nodes(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://example.com")
	require.NoError(t, err)

	a, _ := tree.AddChild(tree.Root, "https://example.com/a", 5.0)

	got, ok := tree.Lookup("https://example.com/a")
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = tree.Lookup("https://example.com/missing")
	assert.False(t, ok)
}

func TestTree_Render_marks_products(t *testing.T) {
	t.Parallel()

	tree, err := prodcrawl.NewTree("https://example.com")
	require.NoError(t, err)

	p, _ := tree.AddChild(tree.Root, "https://example.com/widget", 9.5)
	p.ProductName = "Widget"

	out := tree.Render()
	assert.Contains(t, out, "https://example.com [unexplored]")
	assert.Contains(t, out, "(product: Widget)")
}
