// Package search is the read-only client for the external search index.
// The index is populated by a separate consumer of the prompt events;
// this side only queries it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fromprom-backend/internal/logger"
)

type Result struct {
	PromptID    string  `json:"prompt_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       int     `json:"price"`
	Score       float64 `json:"score"`
}

type Client interface {
	SearchPrompts(ctx context.Context, query string, limit int) ([]Result, error)
}

// Disabled is the client used when no search endpoint is configured.
type Disabled struct{}

func (Disabled) SearchPrompts(context.Context, string, int) ([]Result, error) {
	return nil, nil
}

// HTTPClient talks to an OpenSearch-compatible _search endpoint.
type HTTPClient struct {
	endpoint string
	index    string
	httpc    *http.Client
}

func NewHTTPClient(endpoint, index string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		index:    index,
		httpc:    &http.Client{Timeout: 10 * time.Second},
	}
}

type searchRequest struct {
	Size  int            `json:"size"`
	Query map[string]any `json:"query"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				PromptID    string `json:"prompt_id"`
				Title       string `json:"title"`
				Description string `json:"description"`
				Price       int    `json:"price"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *HTTPClient) SearchPrompts(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	reqBody := searchRequest{
		Size: limit,
		Query: map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "description", "tags"},
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}
	url := fmt.Sprintf("%s/%s/_search", c.endpoint, c.index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.ExternalServiceCall("search", "search_prompts", "query", query)
	resp, err := c.httpc.Do(req)
	logger.ExternalServiceResult("search", "search_prompts", err)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	results := make([]Result, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, Result{
			PromptID:    hit.Source.PromptID,
			Title:       hit.Source.Title,
			Description: hit.Source.Description,
			Price:       hit.Source.Price,
			Score:       hit.Score,
		})
	}
	return results, nil
}
