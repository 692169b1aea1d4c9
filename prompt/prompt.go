// Package prompt builds the AI requests shared by every scoring
// provider and parses their responses. Prompt text and response
// handling live here so the provider packages contain only transport.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/prodcrawl"
)

// SystemPrompt is the fixed role instruction behind every request.
// Keeping one persona across all calls keeps scoring consistent within
// and across batches.
const SystemPrompt = "You are an architect. You want to find the product information from a supplier's website. " +
	"You are clicking the button to go to the product description page."

// scoringCandidate is the pruned candidate shape embedded in scoring
// prompts.
type scoringCandidate struct {
	ID           int    `json:"id"`
	RelativePath string `json:"relative_path"`
	AnchorText   string `json:"anchor_text"`
	TagContext   string `json:"tag_context,omitempty"`
}

// BuildScorePrompt builds the user prompt asking the model to score a
// candidate batch from 0 to 10.
func BuildScorePrompt(nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) string {
	pruned := make([]scoringCandidate, 0, len(candidates))
	for _, c := range candidates {
		pruned = append(pruned, scoringCandidate{
			ID:           c.ID,
			RelativePath: c.RelativePath,
			AnchorText:   c.AnchorText,
			TagContext:   c.TagContext,
		})
	}
	data, _ := json.MarshalIndent(pruned, "", "  ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "You come to a page titled %q", nodeCtx.Title)
	if nodeCtx.Description != "" {
		fmt.Fprintf(&sb, " (described as: %s)", nodeCtx.Description)
	}
	sb.WriteString(" with a list of links. Here is the id, relative path, anchor text and markup context of each link.\n")
	sb.WriteString("Score them from 0 - 10 according to how likely the link will lead you to the product description page.\n")
	sb.WriteString("A score less than 1 is for links you will never click.\n")
	sb.WriteString("A score higher than 9 is for links you think are very likely to be the product description page of a specific product. For these links, you will also tell the product name.\n\n")
	sb.WriteString("Links to analyze:\n")
	sb.Write(data)
	sb.WriteString("\n\nFormat your response as a JSON array:\n")
	sb.WriteString(`[{"id": 0, "score": 3.4}, {"id": 1, "score": 9.5, "productName": "Emerald Urethane Trim Enamel"}]` + "\n")
	sb.WriteString("Include the id field for each item, provide exactly one object per link, and include productName only when score > 9.")
	return sb.String()
}

// BuildDetectPrompt builds the user prompt asking whether the page
// uses a dynamic-loading control. Infinite scroll is deliberately not
// offered: the engine checks it structurally on every qualifying page.
func BuildDetectPrompt(nodeCtx prodcrawl.NodeContext, candidates []prodcrawl.LinkInfo) string {
	pruned := make([]scoringCandidate, 0, len(candidates))
	for _, c := range candidates {
		pruned = append(pruned, scoringCandidate{
			ID:           c.ID,
			RelativePath: c.RelativePath,
			AnchorText:   c.AnchorText,
			TagContext:   c.TagContext,
		})
	}
	data, _ := json.MarshalIndent(pruned, "", "  ")

	var sb strings.Builder
	sb.WriteString("On this page you found multiple links to product description pages. According to the UI elements on this page, do you think the page uses dynamic loading? ")
	sb.WriteString("If yes, output the element's id and its trigger type (one of: Pagination, Load More, Tabs, Accordions, Expanders). If no, answer with {\"id\": -1}.\n\n")
	sb.WriteString("Here is the list of elements:\n")
	sb.Write(data)
	sb.WriteString("\n\nFormat your response as a single JSON object, for example {\"id\": 3, \"triggerType\": \"Pagination\"} or {\"id\": -1}.")
	return sb.String()
}

// Confirmation prompts carry at most this much page markdown.
const maxConfirmContent = 6000

// BuildConfirmPrompt builds the user prompt asking whether a fetched
// page is itself a product description page.
func BuildConfirmPrompt(page prodcrawl.PageContent) string {
	content := page.Markdown
	if len(content) > maxConfirmContent {
		content = content[:maxConfirmContent]
	}

	var sb strings.Builder
	sb.WriteString("You are now on a webpage. Here is the content:\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", page.Title)
	fmt.Fprintf(&sb, "Description: %s\n", page.Description)
	fmt.Fprintf(&sb, "URL: %s\n\n", page.URL)
	sb.WriteString("Page content:\n")
	sb.WriteString(content)
	sb.WriteString("\n\nIs this the product description page itself? If yes, what is the product name?\n")
	sb.WriteString(`Format your response as JSON: {"isProductPage": true, "productName": "Product Name Here"} or {"isProductPage": false}.`)
	return sb.String()
}

// ParseScores parses a scoring response into exactly n LinkScores in
// id order. It tolerates id-correlated and positional arrays, text
// around the JSON, markdown fences, responses shorter than the batch
// (missing entries are padded with score 0) and longer (extras are
// ignored). The int result is the number of padded entries. A response
// with no JSON array at all is an EINVALID error; callers decide
// whether to retry or degrade.
func ParseScores(response string, n int) ([]prodcrawl.LinkScore, int, error) {
	raw, err := extractJSON(response, '[', ']')
	if err != nil {
		return nil, 0, err
	}

	var items []prodcrawl.LinkScore
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, 0, prodcrawl.Errorf(prodcrawl.EINVALID, "malformed score array: %v", err)
	}

	// Correlate by id only when the ids look deliberate: distinct and
	// in range. Replies that omit the id field (every id zero), repeat
	// ids, or renumber the batch from 1 map by position instead.
	byID := make(map[int]prodcrawl.LinkScore, len(items))
	if idCorrelated(items, n) {
		for _, item := range items {
			byID[item.ID] = item
		}
	} else {
		for pos, item := range items {
			if pos < n {
				byID[pos] = item
			}
		}
	}

	scores := make([]prodcrawl.LinkScore, n)
	padded := 0
	for i := 0; i < n; i++ {
		if item, ok := byID[i]; ok {
			scores[i] = prodcrawl.LinkScore{ID: i, Score: clampScore(item.Score), ProductName: item.ProductName}
		} else {
			scores[i] = prodcrawl.LinkScore{ID: i, Score: 0}
			padded++
		}
	}
	return scores, padded, nil
}

// idCorrelated reports whether a score array's ids can be trusted as
// correlation keys. An array whose ids are all zero carried no id
// field at all, and one whose ids run 1..len is a renumbered batch;
// both are positional. Anything duplicated or out of [0, n) is
// positional too.
func idCorrelated(items []prodcrawl.LinkScore, n int) bool {
	if len(items) > 1 {
		allZero, oneBased := true, true
		for i, item := range items {
			if item.ID != 0 {
				allZero = false
			}
			if item.ID != i+1 {
				oneBased = false
			}
		}
		if allZero || oneBased {
			return false
		}
	}
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if item.ID < 0 || item.ID >= n || seen[item.ID] {
			return false
		}
		seen[item.ID] = true
	}
	return true
}

// ParseDetection parses a dynamic-loading detection response. A
// response that carries no usable JSON, or an unknown trigger type,
// degrades to "none found" rather than an error: detection is advisory.
func ParseDetection(response string) prodcrawl.Detection {
	none := prodcrawl.Detection{ID: -1}

	raw, err := extractJSON(response, '{', '}')
	if err != nil {
		// Some models answer with a one-element array.
		if arr, arrErr := extractJSON(response, '[', ']'); arrErr == nil {
			var items []prodcrawl.Detection
			if json.Unmarshal([]byte(arr), &items) == nil && len(items) > 0 {
				return normalizeDetection(items[0])
			}
		}
		return none
	}

	var d prodcrawl.Detection
	if json.Unmarshal([]byte(raw), &d) != nil {
		return none
	}
	return normalizeDetection(d)
}

// confirmation is the wire shape of a product-page confirmation reply.
type confirmation struct {
	IsProductPage bool   `json:"isProductPage"`
	ProductName   string `json:"productName"`
}

// ParseConfirmation parses a product-page confirmation response.
// Returns "" when the page is not a product page or the response is
// unusable.
func ParseConfirmation(response string) string {
	raw, err := extractJSON(response, '{', '}')
	if err != nil {
		return ""
	}
	var c confirmation
	if json.Unmarshal([]byte(raw), &c) != nil {
		return ""
	}
	if !c.IsProductPage {
		return ""
	}
	return strings.TrimSpace(c.ProductName)
}

func normalizeDetection(d prodcrawl.Detection) prodcrawl.Detection {
	if d.ID < 0 {
		return prodcrawl.Detection{ID: -1}
	}
	switch d.Trigger {
	case prodcrawl.TriggerPagination, prodcrawl.TriggerLoadMore,
		prodcrawl.TriggerTabs, prodcrawl.TriggerAccordions, prodcrawl.TriggerExpanders:
		return d
	default:
		return prodcrawl.Detection{ID: -1}
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

// extractJSON pulls the outermost open..close span out of a response
// that may wrap JSON in prose or markdown fences.
func extractJSON(response string, open, closing byte) (string, error) {
	start := strings.IndexByte(response, open)
	end := strings.LastIndexByte(response, closing)
	if start == -1 || end == -1 || end < start {
		return "", prodcrawl.Errorf(prodcrawl.EINVALID, "no JSON %c...%c found in response", open, closing)
	}
	return response[start : end+1], nil
}
