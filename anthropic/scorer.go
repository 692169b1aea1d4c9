// Package anthropic implements the AI scoring gateway using the
// Anthropic Messages HTTP API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/prodcrawl"
	"github.com/fwojciec/prodcrawl/prompt"
)

// DefaultModel is used when no model override is configured.
const DefaultModel = "claude-sonnet-4-5"

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 4000
	callTimeout    = 60 * time.Second
)

// Ensure Scorer implements prodcrawl.Scorer at compile time.
var _ prodcrawl.Scorer = (*Scorer)(nil)

// Scorer implements prodcrawl.Scorer using the Anthropic Messages API.
type Scorer struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
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

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(s *Scorer) {
		s.baseURL = u
	}
}

// WithLogger sets the logger for response-degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// NewScorer creates a new Scorer authenticated with apiKey.
func NewScorer(apiKey string, opts ...Option) *Scorer {
	s := &Scorer{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: callTimeout},
		logger:  slog.New(slog.DiscardHandler),
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

// Wire shapes for the Messages API.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

func (s *Scorer) generate(ctx context.Context, userPrompt string) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     s.model,
		MaxTokens: maxTokens,
		System:    prompt.SystemPrompt,
		Messages:  []message{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EINTERNAL, "encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EINTERNAL, "creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "anthropic call failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "reading anthropic response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "anthropic HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "decoding anthropic response: %v", err)
	}
	if len(parsed.Content) == 0 {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "anthropic returned empty content")
	}

	return parsed.Content[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
