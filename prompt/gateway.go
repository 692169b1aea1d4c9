package prompt

import (
	"context"
	"log/slog"

	"github.com/fwojciec/prodcrawl"
)

// GenerateFunc is the transport a provider contributes: send one
// user prompt under the fixed system persona, return the raw text
// reply. Transport and auth failures must return EAIPROVIDER errors.
type GenerateFunc func(ctx context.Context, userPrompt string) (string, error)

// A malformed scoring reply is re-requested this many times before
// degrading to default scores.
const maxParseAttempts = 3

// Score runs the scoring exchange for one candidate batch. Transport
// errors propagate (the crawl fails fast on provider loss); malformed
// replies are retried and ultimately degrade to score-0 defaults with
// a warning, so a bad reply never blocks the batch.
func Score(ctx context.Context, gen GenerateFunc, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo, logger *slog.Logger) ([]prodcrawl.LinkScore, error) {
	userPrompt := BuildScorePrompt(nodeCtx, candidates)

	var lastErr error
	for attempt := 1; attempt <= maxParseAttempts; attempt++ {
		reply, err := gen(ctx, userPrompt)
		if err != nil {
			return nil, err
		}

		scores, padded, err := ParseScores(reply, len(candidates))
		if err != nil {
			lastErr = err
			logger.Warn("unparseable scoring reply", "attempt", attempt, "error", err)
			continue
		}
		if padded > 0 {
			logger.Warn("scoring reply incomplete, padded with defaults", "padded", padded, "batch", len(candidates))
		}
		return scores, nil
	}

	logger.Warn("scoring degraded to default scores", "batch", len(candidates), "error", lastErr)
	scores := make([]prodcrawl.LinkScore, len(candidates))
	for i := range scores {
		scores[i] = prodcrawl.LinkScore{ID: i}
	}
	return scores, nil
}

// Detect runs the dynamic-loading detection exchange. Unusable replies
// degrade to "none found"; only transport errors propagate.
func Detect(ctx context.Context, gen GenerateFunc, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo, logger *slog.Logger) (prodcrawl.Detection, error) {
	reply, err := gen(ctx, BuildDetectPrompt(nodeCtx, candidates))
	if err != nil {
		return prodcrawl.Detection{ID: -1}, err
	}
	d := ParseDetection(reply)
	if d.None() {
		logger.Debug("no dynamic-loading control detected")
	}
	return d, nil
}

// Confirm runs the product-page confirmation exchange. Unusable
// replies degrade to "not a product page".
func Confirm(ctx context.Context, gen GenerateFunc, page prodcrawl.PageContent, logger *slog.Logger) (string, error) {
	reply, err := gen(ctx, BuildConfirmPrompt(page))
	if err != nil {
		return "", err
	}
	return ParseConfirmation(reply), nil
}
