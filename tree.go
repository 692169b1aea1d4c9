package prodcrawl

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Tree is the website exploration tree. It owns the global URL index
// that makes the tree acyclic by construction: a URL is admitted as a
// node exactly once, no matter how many pages link to it. The tree is
// mutated only by the engine's single logical thread.
type Tree struct {
	Root   *WebsiteNode
	Domain string // normalized target hostname

	index map[string]*WebsiteNode
}

// NewTree creates a tree rooted at baseURL. The base URL must have a
// parseable, non-empty hostname; that hostname becomes the crawl's
// domain scope.
func NewTree(baseURL string) (*Tree, error) {
	host, err := hostOf(baseURL)
	if err != nil {
		return nil, err
	}
	root := &WebsiteNode{
		URL:      strings.TrimSuffix(baseURL, "/"),
		OwnScore: NeutralScore,
	}
	t := &Tree{
		Root:   root,
		Domain: host,
		index:  map[string]*WebsiteNode{root.URL: root},
	}
	return t, nil
}

// Lookup returns the node for a URL, if one has been admitted.
func (t *Tree) Lookup(rawURL string) (*WebsiteNode, bool) {
	n, ok := t.index[rawURL]
	return n, ok
}

// Len returns the total number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.index)
}

// InScope reports whether a URL belongs to the crawl's domain scope.
// Two URLs are in the same scope iff their normalized hostnames are
// exactly equal. URLs with an empty or unparseable hostname are always
// out of scope; an empty host never wildcard-matches.
func (t *Tree) InScope(rawURL string) bool {
	host, err := hostOf(rawURL)
	if err != nil {
		return false
	}
	return host == t.Domain
}

// AddChild admits url as a new child of parent with the given own
// score. If the URL is already present anywhere in the tree, the
// existing node is returned and created is false: repeated encounters
// never create a duplicate node.
func (t *Tree) AddChild(parent *WebsiteNode, rawURL string, score float64) (node *WebsiteNode, created bool) {
	if existing, ok := t.index[rawURL]; ok {
		return existing, false
	}
	node = &WebsiteNode{
		URL:      rawURL,
		Parent:   parent,
		Depth:    parent.Depth + 1,
		OwnScore: score,
	}
	parent.Children = append(parent.Children, node)
	t.index[rawURL] = node
	return node, true
}

// MarkCompleteAndPropagate sets n to CompletelyExplored and walks
// upward, re-evaluating each ancestor's completion condition. An
// ancestor completes only once it has been explored and all of its
// children are complete; the walk stops at the first ancestor that is
// not yet fully complete. States never move backward.
func (t *Tree) MarkCompleteAndPropagate(n *WebsiteNode) {
	n.State = StateCompletelyExplored
	for p := n.Parent; p != nil; p = p.Parent {
		if p.State != StateExplored {
			// Either still being processed (children may yet be
			// added) or already complete.
			return
		}
		if !allChildrenComplete(p) {
			return
		}
		p.State = StateCompletelyExplored
	}
}

func allChildrenComplete(n *WebsiteNode) bool {
	for _, c := range n.Children {
		if c.State != StateCompletelyExplored {
			return false
		}
	}
	return true
}

// Render returns an ASCII rendering of the exploration tree with
// per-node state markers and explored/total child counts.
func (t *Tree) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]\n", t.Root.URL, t.Root.State)
	renderChildren(&sb, t.Root, "")
	return sb.String()
}

func renderChildren(sb *strings.Builder, n *WebsiteNode, prefix string) {
	children := make([]*WebsiteNode, len(n.Children))
	copy(children, n.Children)
	sort.Slice(children, func(i, j int) bool { return children[i].URL < children[j].URL })

	for i, c := range children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		complete := 0
		for _, gc := range c.Children {
			if gc.State == StateCompletelyExplored {
				complete++
			}
		}
		label := c.URL
		if c.IsProduct() {
			label = fmt.Sprintf("%s (product: %s)", c.URL, c.ProductName)
		}
		fmt.Fprintf(sb, "%s%s%s [%s] [%d/%d complete]\n", prefix, connector, label, c.State, complete, len(c.Children))
		renderChildren(sb, c, childPrefix)
	}
}

// hostOf extracts the normalized hostname from a URL. An empty or
// unparseable hostname is an error, never a wildcard.
func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EINVALID, "unparseable URL %q: %v", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", Errorf(EINVALID, "URL %q has no hostname", rawURL)
	}
	return host, nil
}
