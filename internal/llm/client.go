package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/presswire-ai/presswire/internal/config"
	"github.com/presswire-ai/presswire/internal/metrics"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	initialRetryWait = 1 * time.Second
)

// Request is one prompt submission. A zero Temperature gives deterministic
// output, which the evaluation judges rely on.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	Model       string
}

// Client is the LLM capability consumed by the agents and the evaluator.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	GenerateStream(ctx context.Context, req Request, fn func(chunk string) error) error
}

// Anthropic calls the Anthropic Messages API.
type Anthropic struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	maxRetries int
	client     *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewAnthropic creates a client for the Anthropic Messages API.
func NewAnthropic(cfg config.LLMConfig) *Anthropic {
	return &Anthropic{
		apiKey:     cfg.APIKey,
		baseURL:    anthropicBaseURL,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (c *Anthropic) buildRequest(req Request, stream bool) anthropicRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	return anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
		System:      req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
}

// Generate submits the prompt and returns the full completion text. Retries
// with exponential backoff on rate limits and server errors.
func (c *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	body, err := json.Marshal(c.buildRequest(req, false))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * initialRetryWait
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(httpReq)

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
			lastErr = fmt.Errorf("anthropic API error (%d): %s", resp.StatusCode, string(respBody))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			metrics.LLMCallsTotal.WithLabelValues("error").Inc()
			return "", lastErr
		}

		var apiResp anthropicResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if len(apiResp.Content) == 0 {
			return "", fmt.Errorf("empty response content")
		}
		metrics.LLMCallsTotal.WithLabelValues("ok").Inc()
		return apiResp.Content[0].Text, nil
	}

	metrics.LLMCallsTotal.WithLabelValues("error").Inc()
	return "", fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// GenerateStream submits the prompt with SSE streaming and invokes fn for
// each text delta as it arrives.
func (c *Anthropic) GenerateStream(ctx context.Context, req Request, fn func(chunk string) error) error {
	if c.apiKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	body, err := json.Marshal(c.buildRequest(req, true))
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("anthropic API error (%d): %s", resp.StatusCode, string(respBody))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		var event struct {
			Type  string `json:"type"`
			Delta struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
		}
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue // skip non-JSON keepalives
		}
		if event.Type == "message_stop" {
			break
		}
		if event.Type == "content_block_delta" && event.Delta.Text != "" {
			if err := fn(event.Delta.Text); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

func (c *Anthropic) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")
}
