// Package openai implements the AI scoring gateway using the OpenAI
// chat-completions HTTP API.
package openai

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
const DefaultModel = "gpt-4o-mini"

const (
	defaultBaseURL = "https://api.openai.com"
	maxTokens      = 4000
	callTimeout    = 60 * time.Second
)

// Ensure Scorer implements prodcrawl.Scorer at compile time.
var _ prodcrawl.Scorer = (*Scorer)(nil)

// Scorer implements prodcrawl.Scorer using OpenAI chat completions.
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

// Wire shapes for the chat-completions API.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatChoice struct {
	Message message `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

func (s *Scorer) generate(ctx context.Context, userPrompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []message{
			{Role: "system", Content: prompt.SystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EINTERNAL, "encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EINTERNAL, "creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "openai call failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "reading openai response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "openai HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "decoding openai response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", prodcrawl.Errorf(prodcrawl.EAIPROVIDER, "openai returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
