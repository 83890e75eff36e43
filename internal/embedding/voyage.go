package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	voyageBaseURL      = "https://api.voyageai.com/v1/embeddings"
	voyageBatchSize    = 128 // Voyage API max batch size
	voyageMaxRetries   = 3
	voyageInitialDelay = 1 * time.Second
)

// Client produces embeddings for documents and queries. Voyage distinguishes
// the two input types, which improves retrieval quality.
type Client interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// VoyageClient handles Voyage AI embeddings.
type VoyageClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type voyageRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewVoyageClient creates a new Voyage client.
func NewVoyageClient(apiKey, model string) *VoyageClient {
	return &VoyageClient{
		apiKey:  apiKey,
		baseURL: voyageBaseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// EmbedDocuments embeds texts for storage, batching as needed.
func (c *VoyageClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	if len(texts) <= voyageBatchSize {
		return c.embed(ctx, texts, "document")
	}

	var all [][]float32
	for i := 0; i < len(texts); i += voyageBatchSize {
		end := i + voyageBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		embeddings, err := c.embed(ctx, texts[i:end], "document")
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d failed: %w", i, end, err)
		}
		all = append(all, embeddings...)
	}
	return all, nil
}

// EmbedQuery embeds a search query.
func (c *VoyageClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := c.embed(ctx, []string{query}, "query")
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

func (c *VoyageClient) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("VOYAGE_API_KEY not set")
	}

	body, err := json.Marshal(voyageRequest{
		Input:     texts,
		Model:     c.model,
		InputType: inputType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < voyageMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * voyageInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("voyage API error (%d): %s", resp.StatusCode, string(respBody))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}

		var apiResp voyageResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}

		embeddings := make([][]float32, 0, len(apiResp.Data))
		for _, d := range apiResp.Data {
			embeddings = append(embeddings, d.Embedding)
		}
		return embeddings, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", voyageMaxRetries, lastErr)
}
