// Package search wraps the Serper.dev Google Search API used by the research
// agents. Results are cached briefly since research queries repeat across
// requests for the same outlet or topic.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/presswire-ai/presswire/internal/cache"
	"github.com/presswire-ai/presswire/internal/config"
)

const (
	serperSearchURL = "https://google.serper.dev/search"
	serperNewsURL   = "https://google.serper.dev/news"

	defaultMaxResults = 5
	requestTimeout    = 15 * time.Second
	cacheTTL          = 15 * time.Minute
)

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client performs web and news searches.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
	News(ctx context.Context, query string) ([]Result, error)
}

// SerperClient implements Client against the Serper HTTP API.
type SerperClient struct {
	apiKey     string
	maxResults int
	httpClient *http.Client
	cache      *cache.Cache
}

func NewSerperClient(cfg config.SearchConfig, c *cache.Cache) *SerperClient {
	max := cfg.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	return &SerperClient{
		apiKey:     cfg.SerperAPIKey,
		maxResults: max,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      c,
	}
}

func (s *SerperClient) Search(ctx context.Context, query string) ([]Result, error) {
	return s.query(ctx, serperSearchURL, "search:"+query, query)
}

func (s *SerperClient) News(ctx context.Context, query string) ([]Result, error) {
	return s.query(ctx, serperNewsURL, "news:"+query, query)
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []Result `json:"organic"`
	News    []Result `json:"news"`
}

func (s *SerperClient) query(ctx context.Context, url, cacheKey, query string) ([]Result, error) {
	if s.cache != nil {
		var cached []Result
		if s.cache.Get(ctx, cacheKey, &cached) {
			return cached, nil
		}
	}

	body, err := json.Marshal(serperRequest{Q: query, Num: s.maxResults})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling serper: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading serper response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper returned status %d: %s", resp.StatusCode, truncateBody(data))
	}

	var parsed serperResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing serper response: %w", err)
	}

	results := parsed.Organic
	if len(results) == 0 {
		results = parsed.News
	}
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, results, cacheTTL)
	}
	return results, nil
}

func truncateBody(b []byte) string {
	if len(b) > 200 {
		b = b[:200]
	}
	return string(b)
}
