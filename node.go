package prodcrawl

// NodeState is the lifecycle state of a WebsiteNode. Transitions are
// monotonic: Unexplored -> Explored -> CompletelyExplored.
type NodeState int

// Node lifecycle states.
const (
	StateUnexplored NodeState = iota
	StateExplored
	StateCompletelyExplored
)

// String returns a human-readable state name.
func (s NodeState) String() string {
	switch s {
	case StateUnexplored:
		return "unexplored"
	case StateExplored:
		return "explored"
	case StateCompletelyExplored:
		return "completely_explored"
	default:
		return "unknown"
	}
}

// NeutralScore is the own-score assigned to the root node. The root is
// never scored by anyone's parent, so it carries a neutral baseline.
const NeutralScore = 5.0

// WebsiteNode is one discovered URL and its position in the
// exploration tree. Parent is a non-owning back-reference; Children are
// owned exclusively by this node. Nodes are never deleted: the tree is
// the authoritative record of exploration.
type WebsiteNode struct {
	URL         string
	Parent      *WebsiteNode
	Children    []*WebsiteNode
	Depth       int
	OwnScore    float64 // score received from the parent's scoring pass
	State       NodeState
	Title       string // cached for scoring prompts
	Description string // cached for scoring prompts
	ProductName string // set only for confirmed product pages
}

// AverageAncestralScore returns the arithmetic mean of OwnScore over
// this node and its non-root ancestors. The root contributes as a
// fixed neutral baseline rather than a scored entry: a chain
// root -> n1 -> n2 -> n3 with own scores r1, r2, r3 averages
// (r1+r2+r3)/3. For the root itself the score is its own (neutral)
// score. This rewards paths that have been consistently promising,
// not just locally promising.
func (n *WebsiteNode) AverageAncestralScore() float64 {
	var sum float64
	var count int
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		sum += cur.OwnScore
		count++
	}
	if count == 0 {
		return n.OwnScore
	}
	return sum / float64(count)
}

// IsProduct reports whether this node is a confirmed product page.
func (n *WebsiteNode) IsProduct() bool {
	return n.ProductName != ""
}

// LinkInfo is an ephemeral candidate link extracted from a page.
// ID is the candidate's position within the current scoring batch and
// is used to correlate the AI response back to candidates.
type LinkInfo struct {
	ID           int
	RelativePath string
	AbsoluteURL  string
	AnchorText   string
	TagContext   string // surrounding markup hint for the scoring prompt
}

// LinkScore is one scored candidate as returned by the AI gateway.
// Score is in [0,10]; ProductName is populated only when Score > 9.
type LinkScore struct {
	ID          int     `json:"id"`
	Score       float64 `json:"score"`
	ProductName string  `json:"productName,omitempty"`
}

// NodeContext is the page context sent alongside a candidate batch so
// scoring stays grounded in where the candidates were found.
type NodeContext struct {
	URL         string
	Title       string
	Description string
}

// PageContent is the extracted content of a single page, used for
// product-page confirmation prompts.
type PageContent struct {
	URL         string
	Title       string
	Description string
	Markdown    string // main content converted to markdown
}
