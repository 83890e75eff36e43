package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for problems that make the agent unconstructable.
// It collects all errors into a single joined error.
//
// Missing embedding credentials are deliberately NOT an error here: the
// memory and RAG subsystems construct disabled in that case instead of
// blocking startup.
func (c *Config) Validate() error {
	var errs []string

	// Core LLM credentials: without these no comment can ever be drafted.
	if c.LLM.APIKey == "" {
		errs = append(errs, "ANTHROPIC_API_KEY is required")
	}

	// Search credentials: both researchers depend on web search.
	if c.Search.SerperAPIKey == "" {
		errs = append(errs, "SERPER_API_KEY is required for media and data research")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	if c.Evaluation.PassThreshold <= 0 || c.Evaluation.PassThreshold > 1 {
		errs = append(errs, fmt.Sprintf("EVAL_PASS_THRESHOLD must be in (0, 1], got %v", c.Evaluation.PassThreshold))
	}
	if c.Memory.MaxTokens < 0 {
		errs = append(errs, fmt.Sprintf("MEMORY_MAX_TOKENS must be positive, got %d", c.Memory.MaxTokens))
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		errs = append(errs, fmt.Sprintf("RAG_CHUNK_OVERLAP (%d) must be smaller than RAG_CHUNK_SIZE (%d)",
			c.RAG.ChunkOverlap, c.RAG.ChunkSize))
	}

	// Email settings only get a warning since notification is best-effort.
	if c.Email.PRManagerEmail == "" {
		slog.Warn("PR_MANAGER_EMAIL is empty, approval emails will be skipped")
	}
	if (c.Memory.Enabled || c.RAG.Enabled) && c.Embedding.APIKey == "" {
		slog.Warn("VOYAGE_API_KEY is empty, memory and RAG will run disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
