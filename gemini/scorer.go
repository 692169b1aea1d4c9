// Package gemini implements the AI scoring gateway using Google
// Gemini via the genai SDK.
package gemini

import (
	"context"
	"log/slog"

	"github.com/fwojciec/prodcrawl"
	"github.com/fwojciec/prodcrawl/prompt"
	"google.golang.org/genai"
)

// DefaultModel is used when no model override is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Scorer implements prodcrawl.Scorer at compile time.
var _ prodcrawl.Scorer = (*Scorer)(nil)

// Scorer implements prodcrawl.Scorer using Google Gemini.
type Scorer struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(s *Scorer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithLogger sets the logger for response-degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// NewScorer creates a new Scorer backed by the given genai client.
func NewScorer(client *genai.Client, opts ...Option) *Scorer {
	s := &Scorer{
		client: client,
		model:  DefaultModel,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreLinks scores a candidate batch.
func (s *Scorer) ScoreLinks(ctx context.Context, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) ([]prodcrawl.LinkScore, error) {
	return prompt.Score(ctx, s.generate, nodeCtx, candidates, s.logger)
}

// DetectDynamicLoading asks whether the page exposes a dynamic-loading
// control among the candidates.
func (s *Scorer) DetectDynamicLoading(ctx context.Context, nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) (prodcrawl.Detection, error) {
	return prompt.Detect(ctx, s.generate, nodeCtx, candidates, s.logger)
}

// ConfirmProduct asks whether a fetched page is itself a product page.
func (s *Scorer) ConfirmProduct(ctx context.Context, page prodcrawl.PageContent) (string, error) {
	return prompt.Confirm(ctx, s.generate, page, s.logger)
}

func (s *Scorer) generate(ctx context.Context, userPrompt string) (string, error) {
	temp := float32(0.2)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.SystemPrompt}},
		},
		Temperature: &temp,
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: userPrompt}},
		}},
		config,
	)
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "gemini call failed: %v", err)
	}
	if result == nil {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "gemini returned nil result")
	}

	return result.Text(), nil
}
