package rod

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/fwojciec/prodcrawl"
)

// Iteration ceilings guard against infinite pagination chains and
// load-more buttons that never exhaust.
const (
	maxPaginationPages = 10
	maxLoadMoreClicks  = 20
	maxScrollRounds    = 10
)

// Default timing for handler interactions.
const (
	DefaultSettleDelay    = 2 * time.Second
	DefaultHandlerTimeout = 60 * time.Second
	defaultFindTimeout    = 3 * time.Second
)

// Loader discovers links hidden behind dynamic-content triggers by
// driving a real browser. Each Exhaust call opens a fresh page, runs
// one trigger handler to exhaustion and reports only the links that
// were not present in the initial render.
type Loader struct {
	manager        *BrowserManager
	extractor      prodcrawl.PageExtractor
	logger         *slog.Logger
	settleDelay    time.Duration
	handlerTimeout time.Duration
	findTimeout    time.Duration
}

var _ prodcrawl.DynamicLoader = (*Loader)(nil)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger for handler diagnostics.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithSettleDelay sets how long handlers wait for content to render
// after an interaction.
func WithSettleDelay(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.settleDelay = d
	}
}

// WithHandlerTimeout bounds the total time a single trigger handler
// may run before it is abandoned with the links gathered so far.
func WithHandlerTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.handlerTimeout = d
	}
}

// NewLoader creates a Loader backed by the given browser manager. The
// extractor parses rendered HTML into links using the same rules as
// static extraction, so dynamically revealed links enter the pipeline
// in the same shape as static ones.
func NewLoader(manager *BrowserManager, extractor prodcrawl.PageExtractor, opts ...LoaderOption) *Loader {
	l := &Loader{
		manager:        manager,
		extractor:      extractor,
		logger:         slog.New(slog.DiscardHandler),
		settleDelay:    DefaultSettleDelay,
		handlerTimeout: DefaultHandlerTimeout,
		findTimeout:    defaultFindTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Exhaust runs the handler for the detected trigger against pageURL
// and returns links that were not present before interaction. On
// timeout or a mid-handler failure it returns the links gathered so
// far together with the error, so partial discoveries are kept.
func (l *Loader) Exhaust(ctx context.Context, pageURL string, trigger prodcrawl.TriggerType, target prodcrawl.LinkInfo) ([]prodcrawl.LinkInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, l.handlerTimeout)
	defer cancel()

	page, err := l.openPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()
	defer l.manager.IncrementPageCount()

	seen, err := l.snapshot(page, pageURL)
	if err != nil {
		return nil, err
	}

	switch trigger {
	case prodcrawl.TriggerPagination:
		return l.paginate(page, pageURL, target, seen)
	case prodcrawl.TriggerLoadMore:
		return l.clickUntilExhausted(page, pageURL, target, seen)
	case prodcrawl.TriggerTabs, prodcrawl.TriggerAccordions, prodcrawl.TriggerExpanders:
		return l.activateOnce(page, pageURL, target, seen)
	default:
		return nil, prodcrawl.Errorf(prodcrawl.EINVALID, "unsupported dynamic trigger %q", trigger)
	}
}

// ExhaustScroll scrolls pageURL to the bottom repeatedly until the
// page height stops growing, then returns the links revealed by
// scrolling. It runs on every page regardless of AI detection because
// infinite scroll leaves no reliable DOM marker.
func (l *Loader) ExhaustScroll(ctx context.Context, pageURL string) ([]prodcrawl.LinkInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, l.handlerTimeout)
	defer cancel()

	page, err := l.openPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()
	defer l.manager.IncrementPageCount()

	seen, err := l.snapshot(page, pageURL)
	if err != nil {
		return nil, err
	}

	var revealed []prodcrawl.LinkInfo
	prevHeight, err := l.pageHeight(page)
	if err != nil {
		return nil, err
	}

	for round := 0; round < maxScrollRounds; round++ {
		if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			return revealed, fmt.Errorf("scrolling page: %w", err)
		}
		l.settle(ctx)

		height, err := l.pageHeight(page)
		if err != nil {
			return revealed, err
		}
		if height == prevHeight {
			break
		}
		prevHeight = height

		fresh, err := l.collectNew(page, pageURL, seen)
		if err != nil {
			return revealed, err
		}
		revealed = append(revealed, fresh...)
	}

	l.logger.Debug("infinite scroll exhausted", "url", pageURL, "links", len(revealed))
	return revealed, nil
}

// Close releases the underlying browser.
func (l *Loader) Close() error {
	return l.manager.Close()
}

// paginate follows next-page controls up to maxPaginationPages,
// collecting links from every page visited. It stops when the control
// disappears or two consecutive pages render identical content.
func (l *Loader) paginate(page *rod.Page, pageURL string, target prodcrawl.LinkInfo, seen map[string]struct{}) ([]prodcrawl.LinkInfo, error) {
	var revealed []prodcrawl.LinkInfo
	prevHash, err := l.contentHash(page)
	if err != nil {
		return nil, err
	}

	for n := 0; n < maxPaginationPages; n++ {
		el, err := l.findTarget(page, target)
		if err != nil {
			break
		}
		if err := l.clickAndSettle(page, el); err != nil {
			return revealed, fmt.Errorf("pagination click: %w", err)
		}
		if err := page.WaitLoad(); err != nil {
			return revealed, fmt.Errorf("pagination wait: %w", err)
		}

		hash, err := l.contentHash(page)
		if err != nil {
			return revealed, err
		}
		if hash == prevHash {
			break
		}
		prevHash = hash

		fresh, err := l.collectNew(page, pageURL, seen)
		if err != nil {
			return revealed, err
		}
		revealed = append(revealed, fresh...)
	}

	l.logger.Debug("pagination exhausted", "url", pageURL, "links", len(revealed))
	return revealed, nil
}

// clickUntilExhausted clicks a load-more control until it disappears,
// the content stops changing or maxLoadMoreClicks is reached.
func (l *Loader) clickUntilExhausted(page *rod.Page, pageURL string, target prodcrawl.LinkInfo, seen map[string]struct{}) ([]prodcrawl.LinkInfo, error) {
	var revealed []prodcrawl.LinkInfo
	prevHash, err := l.contentHash(page)
	if err != nil {
		return nil, err
	}

	for n := 0; n < maxLoadMoreClicks; n++ {
		el, err := l.findTarget(page, target)
		if err != nil {
			break
		}
		if visible, err := el.Visible(); err != nil || !visible {
			break
		}
		if err := l.clickAndSettle(page, el); err != nil {
			return revealed, fmt.Errorf("load more click: %w", err)
		}

		hash, err := l.contentHash(page)
		if err != nil {
			return revealed, err
		}
		if hash == prevHash {
			break
		}
		prevHash = hash

		fresh, err := l.collectNew(page, pageURL, seen)
		if err != nil {
			return revealed, err
		}
		revealed = append(revealed, fresh...)
	}

	l.logger.Debug("load more exhausted", "url", pageURL, "links", len(revealed))
	return revealed, nil
}

// activateOnce clicks a tab, accordion or expander control a single
// time and collects the links it reveals.
func (l *Loader) activateOnce(page *rod.Page, pageURL string, target prodcrawl.LinkInfo, seen map[string]struct{}) ([]prodcrawl.LinkInfo, error) {
	el, err := l.findTarget(page, target)
	if err != nil {
		return nil, fmt.Errorf("locating trigger element: %w", err)
	}
	if err := l.clickAndSettle(page, el); err != nil {
		return nil, fmt.Errorf("activating trigger: %w", err)
	}

	revealed, err := l.collectNew(page, pageURL, seen)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("trigger activated", "url", pageURL, "links", len(revealed))
	return revealed, nil
}

// openPage navigates to pageURL and waits for the initial load.
func (l *Loader) openPage(ctx context.Context, pageURL string) (*rod.Page, error) {
	browser := l.manager.Browser()

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, prodcrawl.Errorf(prodcrawl.EFETCH, "opening page %s: %v", pageURL, err)
	}
	page = page.Context(ctx)

	if err := page.WaitLoad(); err != nil {
		page.Close()
		return nil, prodcrawl.Errorf(prodcrawl.EFETCH, "loading page %s: %v", pageURL, err)
	}
	l.settle(ctx)

	return page, nil
}

// findTarget locates the trigger element identified by the AI. It
// tries progressively looser strategies: exact anchor text, the full
// href, then individual href path segments.
func (l *Loader) findTarget(page *rod.Page, target prodcrawl.LinkInfo) (*rod.Element, error) {
	if text := strings.TrimSpace(target.AnchorText); text != "" {
		pattern := "/" + regexp.QuoteMeta(text) + "/i"
		if el, err := page.Timeout(l.findTimeout).ElementR("a, button", pattern); err == nil {
			return el, nil
		}
	}

	if path := hrefPath(target.RelativePath); path != "" {
		sel := fmt.Sprintf(`a[href*=%q]`, path)
		if el, err := page.Timeout(l.findTimeout).Element(sel); err == nil {
			return el, nil
		}

		for _, seg := range strings.Split(path, "/") {
			if len(seg) <= 3 {
				continue
			}
			sel := fmt.Sprintf(`a[href*=%q]`, seg)
			if el, err := page.Timeout(l.findTimeout).Element(sel); err == nil {
				return el, nil
			}
		}
	}

	return nil, fmt.Errorf("trigger element not found for %q", target.AnchorText)
}

// clickAndSettle scrolls the element into view, clicks it and waits
// for revealed content to render.
func (l *Loader) clickAndSettle(page *rod.Page, el *rod.Element) error {
	if err := el.ScrollIntoView(); err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	l.settle(page.GetContext())
	return nil
}

// snapshot records the links present before any interaction so that
// collectNew can report only revealed links.
func (l *Loader) snapshot(page *rod.Page, pageURL string) (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	if _, err := l.collectNew(page, pageURL, seen); err != nil {
		return nil, err
	}
	return seen, nil
}

// collectNew extracts links from the current render and returns those
// not already in seen, updating seen as it goes.
func (l *Loader) collectNew(page *rod.Page, pageURL string, seen map[string]struct{}) ([]prodcrawl.LinkInfo, error) {
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("reading page HTML: %w", err)
	}

	info, err := l.extractor.ExtractPage(html, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extracting links: %w", err)
	}

	var fresh []prodcrawl.LinkInfo
	for _, link := range info.Links {
		if _, ok := seen[link.AbsoluteURL]; ok {
			continue
		}
		seen[link.AbsoluteURL] = struct{}{}
		fresh = append(fresh, link)
	}
	return fresh, nil
}

// hrefPath strips the query string from a relative path so href
// substring matches are not defeated by volatile query parameters.
func hrefPath(relativePath string) string {
	path := relativePath
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.Trim(path, "/")
}

// contentHash fingerprints the rendered page for no-change detection.
func (l *Loader) contentHash(page *rod.Page) (uint64, error) {
	html, err := page.HTML()
	if err != nil {
		return 0, fmt.Errorf("reading page HTML: %w", err)
	}
	return xxhash.Sum64String(html), nil
}

// pageHeight returns the current scroll height of the document.
func (l *Loader) pageHeight(page *rod.Page) (int, error) {
	res, err := page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, fmt.Errorf("reading page height: %w", err)
	}
	return res.Value.Int(), nil
}

// settle waits for dynamically loaded content to render, respecting
// context cancellation.
func (l *Loader) settle(ctx context.Context) {
	select {
	case <-time.After(l.settleDelay):
	case <-ctx.Done():
	}
}
