// Package slog provides logging decorators for prodcrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/prodcrawl"
)

// Ensure LoggingScorer implements prodcrawl.Scorer.
var _ prodcrawl.Scorer = (*LoggingScorer)(nil)

// LoggingScorer wraps a Scorer with per-call logging.
type LoggingScorer struct {
	next   prodcrawl.Scorer
	logger *slog.Logger
}

// NewLoggingScorer creates a new LoggingScorer.
func NewLoggingScorer(next prodcrawl.Scorer, logger *slog.Logger) *LoggingScorer {
	return &LoggingScorer{next: next, logger: logger}
}

// ScoreLinks logs the batch size and timing and delegates to the
// wrapped scorer.
func (s *LoggingScorer) ScoreLinks(ctx context.Context, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) (scores []prodcrawl.LinkScore, err error) {
	defer func(begin time.Time) {
		s.logger.Info("score links",
			"url", nodeCtx.URL,
			"candidates", len(candidates),
			"scores", len(scores),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ScoreLinks(ctx, nodeCtx, candidates)
}

// DetectDynamicLoading logs the detection outcome and delegates to the
// wrapped scorer.
func (s *LoggingScorer) DetectDynamicLoading(ctx context.Context, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) (detection prodcrawl.Detection, err error) {
	defer func(begin time.Time) {
		s.logger.Info("detect dynamic loading",
			"url", nodeCtx.URL,
			"candidates", len(candidates),
			"trigger", string(detection.Trigger),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DetectDynamicLoading(ctx, nodeCtx, candidates)
}

// ConfirmProduct logs the confirmation outcome and delegates to the
// wrapped scorer.
func (s *LoggingScorer) ConfirmProduct(ctx context.Context, page prodcrawl.PageContent) (name string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("confirm product",
			"url", page.URL,
			"product", name,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ConfirmProduct(ctx, page)
}
