package mock

import (
	"context"

	"github.com/fwojciec/prodcrawl"
)

var _ prodcrawl.Scorer = (*Scorer)(nil)

// Scorer is a mock implementation of prodcrawl.Scorer.
type Scorer struct {
	ScoreLinksFn           func(ctx context.Context, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) ([]prodcrawl.LinkScore, error)
	DetectDynamicLoadingFn func(ctx context.Context, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) (prodcrawl.Detection, error)
	ConfirmProductFn       func(ctx context.Context, page prodcrawl.PageContent) (string, error)
}

func (s *Scorer) ScoreLinks(ctx context.Context, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) ([]prodcrawl.LinkScore, error) {
	return s.ScoreLinksFn(ctx, nodeCtx, candidates)
}

func (s *Scorer) DetectDynamicLoading(ctx context.Context, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) (prodcrawl.Detection, error) {
	if s.DetectDynamicLoadingFn == nil {
		return prodcrawl.Detection{ID: -1}, nil
	}
	return s.DetectDynamicLoadingFn(ctx, nodeCtx, candidates)
}

func (s *Scorer) ConfirmProduct(ctx context.Context, page prodcrawl.PageContent) (string, error) {
	if s.ConfirmProductFn == nil {
		return "", nil
	}
	return s.ConfirmProductFn(ctx, page)
}
