// Package explore implements the AI-guided priority exploration
// engine: the OpenSet scheduler, the node-processing loop, fetch
// retry, the politeness limiter, and the result deduplication pass.
package explore

import (
	"container/heap"

	"github.com/fwojciec/prodcrawl"
)

// OpenSet is the priority queue of not-yet-fully-explored nodes: a
// max-heap keyed by ancestral average score. Entries invalidated by
// out-of-band completion (ancestor propagation) are not removed
// eagerly; PopMax discards them lazily, avoiding O(n) heap-wide
// removal. Equal keys pop in insertion order.
//
// The OpenSet has a single writer (the engine) and needs no locking.
type OpenSet struct {
	queue  *nodeHeap
	member map[*prodcrawl.WebsiteNode]struct{}
	seq    uint64
}

// NewOpenSet creates an empty OpenSet.
func NewOpenSet() *OpenSet {
	h := &nodeHeap{}
	heap.Init(h)
	return &OpenSet{
		queue:  h,
		member: make(map[*prodcrawl.WebsiteNode]struct{}),
	}
}

// Insert adds an unexplored node, keyed by its ancestral average score
// at insertion time. Ancestor scores never change once set, so the key
// stays valid for the entry's lifetime. Nodes already queued or past
// the Unexplored state are refused.
func (s *OpenSet) Insert(n *prodcrawl.WebsiteNode) bool {
	if n.State != prodcrawl.StateUnexplored {
		return false
	}
	if _, ok := s.member[n]; ok {
		return false
	}
	s.member[n] = struct{}{}
	s.seq++
	heap.Push(s.queue, entry{node: n, key: n.AverageAncestralScore(), seq: s.seq})
	return true
}

// PopMax returns the live node with the highest key. Entries whose
// node has since become CompletelyExplored are discarded and the next
// entry tried. The bool result is false when the set is exhausted,
// which ends the crawl.
func (s *OpenSet) PopMax() (*prodcrawl.WebsiteNode, bool) {
	for s.queue.Len() > 0 {
		e, _ := heap.Pop(s.queue).(entry)
		delete(s.member, e.node)
		if e.node.State == prodcrawl.StateCompletelyExplored {
			continue
		}
		return e.node, true
	}
	return nil, false
}

// Len returns the number of queued entries, including any not yet
// discarded by lazy invalidation.
func (s *OpenSet) Len() int {
	return s.queue.Len()
}

type entry struct {
	node *prodcrawl.WebsiteNode
	key  float64
	seq  uint64
}

// nodeHeap implements heap.Interface as a max-heap over entries with
// FIFO ordering among equal keys.
type nodeHeap []entry

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key > h[j].key
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	e, _ := x.(entry)
	*h = append(*h, e)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
