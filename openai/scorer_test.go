package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/prodcrawl"
	"github.com/fwojciec/prodcrawl/openai"
)

func chatReply(t *testing.T, text string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": text}},
			},
		})
		require.NoError(t, err)
	}
}

func TestScorer_ScoreLinks_sends_chat_completion_request(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		chatReply(t, `[{"id": 0, "score": 6.0}]`)(w, r)
	}))
	defer srv.Close()

	s := openai.NewScorer("test-key", openai.WithBaseURL(srv.URL))
	scores, err := s.ScoreLinks(context.Background(), prodcrawl.NodeContext{Title: "Home"},
		[]prodcrawl.LinkInfo{{ID: 0, RelativePath: "/products", AnchorText: "Products"}})
	require.NoError(t, err)

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, openai.DefaultModel, gotBody["model"])

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2, "system persona plus user prompt")

	require.Len(t, scores, 1)
	assert.Equal(t, 6.0, scores[0].Score)
}

func TestScorer_ScoreLinks_maps_HTTP_errors_to_EAIPROVIDER(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_api_key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := openai.NewScorer("bad-key", openai.WithBaseURL(srv.URL))
	_, err := s.ScoreLinks(context.Background(), prodcrawl.NodeContext{},
		[]prodcrawl.LinkInfo{{ID: 0, RelativePath: "/a"}})
	require.Error(t, err)
	assert.Equal(t, prodcrawl.EAIPROVIDER, prodcrawl.ErrorCode(err))
}

func TestScorer_ConfirmProduct_returns_product_name(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(chatReply(t, `{"isProductPage": true, "productName": "Widget"}`))
	defer srv.Close()

	s := openai.NewScorer("test-key", openai.WithBaseURL(srv.URL))
	name, err := s.ConfirmProduct(context.Background(), prodcrawl.PageContent{URL: "https://example.com/widget"})
	require.NoError(t, err)
	assert.Equal(t, "Widget", name)
}

func TestScorer_DetectDynamicLoading_degrades_empty_choices_to_error(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	s := openai.NewScorer("test-key", openai.WithBaseURL(srv.URL))
	_, err := s.DetectDynamicLoading(context.Background(), prodcrawl.NodeContext{}, nil)
	require.Error(t, err)
	assert.Equal(t, prodcrawl.EAIPROVIDER, prodcrawl.ErrorCode(err))
}
