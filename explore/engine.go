package explore

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/prodcrawl"
)

// Visited-set sizing for the Bloom pre-check.
const (
	visitedExpectedURLs      = 10000
	visitedFalsePositiveRate = 0.01
)

// Engine drives the AI-guided exploration loop. It is intentionally
// sequential: the next node to visit is only knowable after the
// current node's results (and any dynamic-content exhaustion) have
// updated scheduler state, so no two iterations ever overlap. All
// shared state (tree, scheduler, visited set, product accumulator) has
// the engine as its single writer.
type Engine struct {
	Tree      *prodcrawl.Tree
	Fetcher   prodcrawl.Fetcher
	Extractor prodcrawl.PageExtractor
	Scorer    prodcrawl.Scorer

	// Dynamic enables the dynamic-content subsystem when non-nil.
	Dynamic prodcrawl.DynamicLoader

	// Content and Converter enable product-page confirmation for
	// candidates that score above the product threshold without a
	// product name. Both must be set for confirmation to run.
	Content   prodcrawl.ContentExtractor
	Converter prodcrawl.Converter

	Limiter     *Limiter
	Logger      *slog.Logger
	MaxPages    int
	RetryDelays []time.Duration
}

// Result carries the raw (pre-dedup) and final (post-dedup) reports of
// one crawl.
type Result struct {
	Raw   prodcrawl.Report
	Final prodcrawl.Report
}

// Scoring policy thresholds: below skipThreshold a candidate is never
// visited; above productThreshold it is recorded as a product page.
const (
	skipThreshold    = 1.0
	productThreshold = 9.0
)

// run-scoped mutable crawl state, separate from the Engine's wiring so
// Run stays reentrant for fresh sessions.
type session struct {
	openSet        *OpenSet
	visited        *Visited
	products       []prodcrawl.Product
	pagesProcessed int
}

// Run executes the exploration loop until the OpenSet empties or the
// page budget is exhausted, then runs the deduplication pass.
//
// Node-local failures (fetch exhaustion, automation timeouts) are
// recovered; an AI provider failure aborts the crawl and is returned
// alongside the partial result so the caller can still write the raw
// output accumulated so far.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	logger := e.logger()

	s := &session{
		openSet: NewOpenSet(),
		visited: NewVisited(visitedExpectedURLs, visitedFalsePositiveRate),
	}
	s.visited.Add(e.Tree.Root.URL)
	s.openSet.Insert(e.Tree.Root)

	logger.Info("starting crawl",
		"base_url", e.Tree.Root.URL,
		"domain", e.Tree.Domain,
		"max_pages", e.MaxPages,
		"dynamic_loading", e.Dynamic != nil,
	)

	var runErr error
	for s.pagesProcessed < e.MaxPages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		node, ok := s.openSet.PopMax()
		if !ok {
			break
		}

		if err := e.processNode(ctx, s, node); err != nil {
			runErr = err
			break
		}
		s.pagesProcessed++

		logger.Info("progress",
			"pages_processed", s.pagesProcessed,
			"products_found", len(s.products),
			"queued", s.openSet.Len(),
		)

		if e.Limiter != nil {
			if err := e.Limiter.Wait(ctx); err != nil {
				runErr = err
				break
			}
		}
	}

	res := e.buildResult(s)
	logger.Info("crawl finished",
		"pages_processed", res.Raw.PagesProcessed,
		"total_nodes", res.Raw.TotalNodes,
		"products_raw", len(res.Raw.Products),
		"products_final", len(res.Final.Products),
	)
	return res, runErr
}

// processNode is one iteration of the driving loop: fetch, parse,
// score, apply policy, exhaust dynamic content, update completion.
func (e *Engine) processNode(ctx context.Context, s *session, node *prodcrawl.WebsiteNode) error {
	logger := e.logger().With("url", node.URL)
	logger.Debug("processing node", "depth", node.Depth, "key", node.AverageAncestralScore())

	html, err := e.fetchPage(ctx, node.URL)
	if err != nil {
		// Dead end: the node completes with zero children and the
		// crawl moves on.
		logger.Warn("fetch failed after retries, marking dead end", "error", err)
		node.State = prodcrawl.StateExplored
		e.Tree.MarkCompleteAndPropagate(node)
		return nil
	}

	page, err := e.Extractor.ExtractPage(html, node.URL)
	if err != nil {
		logger.Warn("page parse failed, marking dead end", "error", err)
		node.State = prodcrawl.StateExplored
		e.Tree.MarkCompleteAndPropagate(node)
		return nil
	}
	node.Title = page.Title
	node.Description = page.Description

	candidates := e.admitCandidates(s, page.Links)
	nodeCtx := prodcrawl.NodeContext{URL: node.URL, Title: node.Title, Description: node.Description}

	var sawProduct bool
	if len(candidates) > 0 {
		scores, err := e.Scorer.ScoreLinks(ctx, nodeCtx, candidates)
		if err != nil {
			// AI availability is a precondition: degraded scoring
			// would corrupt exploration priority, so fail fast.
			return prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "scoring %s: %s", node.URL, err)
		}
		sawProduct = e.applyScores(ctx, s, node, candidates, scores)
	} else {
		logger.Debug("no eligible candidate links")
	}

	if sawProduct && e.Dynamic != nil {
		if err := e.exhaustDynamic(ctx, s, node, nodeCtx, candidates); err != nil {
			return err
		}
	}

	node.State = prodcrawl.StateExplored
	if len(node.Children) == 0 || allChildrenComplete(node) {
		e.Tree.MarkCompleteAndPropagate(node)
	}
	return nil
}

func allChildrenComplete(n *prodcrawl.WebsiteNode) bool {
	for _, c := range n.Children {
		if c.State != prodcrawl.StateCompletelyExplored {
			return false
		}
	}
	return true
}

// admitCandidates runs raw links through the admission pipeline:
// domain scope, validity, global dedup. Survivors are recorded in the
// visited set and renumbered with batch-sequential ids. Dynamic and
// static links share this path; there is no separate admission route.
func (e *Engine) admitCandidates(s *session, links []prodcrawl.LinkInfo) []prodcrawl.LinkInfo {
	var admitted []prodcrawl.LinkInfo
	for _, link := range links {
		if link.AbsoluteURL == "" {
			continue
		}
		if _, err := url.Parse(link.AbsoluteURL); err != nil {
			continue
		}
		if !e.Tree.InScope(link.AbsoluteURL) {
			continue
		}
		if s.visited.Seen(link.AbsoluteURL) {
			continue
		}
		s.visited.Add(link.AbsoluteURL)
		link.ID = len(admitted)
		admitted = append(admitted, link)
	}
	return admitted
}

// applyScores applies the scoring policy per candidate and reports
// whether the batch contained a product-grade score. Scores arrive in
// candidate order (the gateway guarantees one entry per candidate).
func (e *Engine) applyScores(ctx context.Context, s *session, parent *prodcrawl.WebsiteNode, candidates []prodcrawl.LinkInfo, scores []prodcrawl.LinkScore) bool {
	logger := e.logger().With("url", parent.URL)

	var sawProduct bool
	var skipped, products, queued int
	for i, link := range candidates {
		sc := scores[i]

		child, created := e.Tree.AddChild(parent, link.AbsoluteURL, sc.Score)
		if !created {
			// Already in the tree via another parent path; never
			// re-scored, never duplicated.
			continue
		}

		switch {
		case sc.Score < skipThreshold:
			skipped++
			e.Tree.MarkCompleteAndPropagate(child)

		case sc.Score > productThreshold:
			products++
			sawProduct = true
			name := sc.ProductName
			if name == "" {
				name = e.confirmUnnamed(ctx, link)
			}
			if name != "" {
				child.ProductName = name
				s.products = append(s.products, prodcrawl.Product{ProductName: name, URL: link.AbsoluteURL})
				logger.Info("product found", "product", name, "product_url", link.AbsoluteURL, "score", sc.Score)
			} else {
				logger.Info("high score without product name", "product_url", link.AbsoluteURL, "score", sc.Score)
			}
			e.Tree.MarkCompleteAndPropagate(child)

		default:
			queued++
			s.openSet.Insert(child)
		}
	}
	logger.Debug("batch scored", "skipped", skipped, "products", products, "queued", queued)
	return sawProduct
}

// exhaustDynamic runs the dynamic-content subsystem against a
// qualifying node. Newly revealed links go back through the same
// admission and scoring policy as ordinary children. Handler failures
// (automation timeouts) abandon that handler only; detection transport
// failures are AI failures and abort the crawl.
func (e *Engine) exhaustDynamic(ctx context.Context, s *session, node *prodcrawl.WebsiteNode, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) error {
	logger := e.logger().With("url", node.URL)

	detection, err := e.Scorer.DetectDynamicLoading(ctx, nodeCtx, candidates)
	if err != nil {
		return prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "dynamic-loading detection for %s: %s", node.URL, err)
	}

	var revealed []prodcrawl.LinkInfo
	if !detection.None() {
		if target, ok := candidateByID(candidates, detection.ID); ok {
			logger.Info("dynamic loading detected", "trigger", detection.Trigger, "target", target.AbsoluteURL)
			links, err := e.Dynamic.Exhaust(ctx, node.URL, detection.Trigger, target)
			if err != nil {
				logger.Warn("dynamic handler aborted, keeping partial links", "trigger", detection.Trigger, "revealed", len(links), "error", err)
			}
			revealed = append(revealed, links...)
		} else {
			logger.Warn("detection returned unknown candidate id", "id", detection.ID)
		}
	}

	// Structural detection is unreliable for scroll-triggered loading,
	// so infinite scroll runs on every qualifying node.
	links, err := e.Dynamic.ExhaustScroll(ctx, node.URL)
	if err != nil {
		logger.Warn("infinite scroll aborted, keeping partial links", "revealed", len(links), "error", err)
	}
	revealed = append(revealed, links...)

	admitted := e.admitCandidates(s, revealed)
	if len(admitted) == 0 {
		return nil
	}
	logger.Info("dynamic loading revealed links", "raw", len(revealed), "admitted", len(admitted))

	scores, err := e.Scorer.ScoreLinks(ctx, nodeCtx, admitted)
	if err != nil {
		return prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "scoring dynamic links of %s: %s", node.URL, err)
	}
	e.applyScores(ctx, s, node, admitted, scores)
	return nil
}

// confirmUnnamed resolves a product-grade candidate that arrived
// without a product name: the page itself is fetched, its main content
// extracted and converted to markdown, and the scorer asked whether it
// is a product page. Any failure along the way degrades to "unnamed",
// never to a crawl error.
func (e *Engine) confirmUnnamed(ctx context.Context, link prodcrawl.LinkInfo) string {
	if e.Content == nil || e.Converter == nil {
		return ""
	}
	logger := e.logger().With("product_url", link.AbsoluteURL)

	html, err := e.Fetcher.Fetch(ctx, link.AbsoluteURL)
	if err != nil {
		logger.Warn("confirmation fetch failed", "error", err)
		return ""
	}
	extracted, err := e.Content.Extract(html)
	if err != nil {
		logger.Warn("confirmation content extraction failed", "error", err)
		return ""
	}
	markdown, err := e.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		logger.Warn("confirmation markdown conversion failed", "error", err)
		return ""
	}

	name, err := e.Scorer.ConfirmProduct(ctx, prodcrawl.PageContent{
		URL:         link.AbsoluteURL,
		Title:       extracted.Title,
		Description: extracted.Description,
		Markdown:    markdown,
	})
	if err != nil {
		logger.Warn("product confirmation failed", "error", err)
		return ""
	}
	return name
}

func (e *Engine) fetchPage(ctx context.Context, url string) (string, error) {
	delays := e.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	logger := e.logger()
	return fetchWithRetry(ctx, url, e.Fetcher.Fetch, delays, func(attempt int, err error) {
		logger.Warn("retrying fetch", "url", url, "attempt", attempt, "error", err)
	})
}

func (e *Engine) buildResult(s *session) *Result {
	raw := prodcrawl.Report{
		Products:       append(make([]prodcrawl.Product, 0, len(s.products)), s.products...),
		PagesProcessed: s.pagesProcessed,
		TotalNodes:     e.Tree.Len(),
		BaseURL:        e.Tree.Root.URL,
		Domain:         e.Tree.Domain,
	}
	final := raw
	final.Products = Dedupe(s.products)
	return &Result{Raw: raw, Final: final}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func candidateByID(candidates []prodcrawl.LinkInfo, id int) (prodcrawl.LinkInfo, bool) {
	for _, c := range candidates {
		if c.ID == id {
			return c, true
		}
	}
	return prodcrawl.LinkInfo{}, false
}
