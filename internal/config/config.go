package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	NATS       NATSConfig
	LLM        LLMConfig
	Embedding  EmbeddingConfig
	Search     SearchConfig
	Email      EmailConfig
	Memory     MemoryConfig
	RAG        RAGConfig
	Evaluation EvaluationConfig
	Profiles   ProfilesConfig
	Cache      CacheConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	URL     string
	Enabled bool
}

// LLMConfig configures the Anthropic Messages API client used for generation,
// humanization and judge calls.
type LLMConfig struct {
	APIKey               string
	Model                string
	Temperature          float64
	HumanizerTemperature float64
	MaxTokens            int
	RequestTimeout       time.Duration
	MaxRetries           int
}

type EmbeddingConfig struct {
	APIKey string
	Model  string
}

type SearchConfig struct {
	SerperAPIKey string
	MaxResults   int
}

type EmailConfig struct {
	SMTPHost       string
	SMTPPort       int
	From           string
	Password       string
	PRManagerEmail string
}

// MemoryConfig covers the session memory subsystem. The subsystem constructs
// disabled (never fails startup) when Enabled is false or the embedding
// credentials are missing.
type MemoryConfig struct {
	Enabled   bool
	MaxTokens int
}

type RAGConfig struct {
	Enabled      bool
	TopK         int
	ChunkSize    int
	ChunkOverlap int
}

type EvaluationConfig struct {
	Enabled       bool
	Model         string
	PassThreshold float64
}

type ProfilesConfig struct {
	SeedDir string
}

type CacheConfig struct {
	Enabled   bool
	SearchTTL time.Duration
	MediaTTL  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        k.String("server.host"),
			Port:        k.Int("server.port"),
			CORSOrigins: splitList(k.String("cors.allowed.origins")),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL:     k.String("nats.url"),
			Enabled: k.Bool("nats.enabled"),
		},
		LLM: LLMConfig{
			APIKey:               k.String("anthropic.api.key"),
			Model:                k.String("llm.model"),
			Temperature:          k.Float64("llm.temperature"),
			HumanizerTemperature: k.Float64("llm.humanizer.temperature"),
			MaxTokens:            k.Int("llm.max.tokens"),
			MaxRetries:           k.Int("llm.max.retries"),
		},
		Embedding: EmbeddingConfig{
			APIKey: k.String("voyage.api.key"),
			Model:  k.String("embedding.model"),
		},
		Search: SearchConfig{
			SerperAPIKey: k.String("serper.api.key"),
			MaxResults:   k.Int("search.max.results"),
		},
		Email: EmailConfig{
			SMTPHost:       k.String("smtp.host"),
			SMTPPort:       k.Int("smtp.port"),
			From:           k.String("email.from"),
			Password:       k.String("email.password"),
			PRManagerEmail: k.String("pr.manager.email"),
		},
		Memory: MemoryConfig{
			Enabled:   k.Bool("enable.memory"),
			MaxTokens: k.Int("memory.max.tokens"),
		},
		RAG: RAGConfig{
			Enabled:      k.Bool("enable.rag"),
			TopK:         k.Int("rag.top.k"),
			ChunkSize:    k.Int("rag.chunk.size"),
			ChunkOverlap: k.Int("rag.chunk.overlap"),
		},
		Evaluation: EvaluationConfig{
			Enabled:       k.Bool("enable.evaluation"),
			Model:         k.String("evaluation.model"),
			PassThreshold: k.Float64("eval.pass.threshold"),
		},
		Profiles: ProfilesConfig{
			SeedDir: k.String("profiles.seed.dir"),
		},
		Cache: CacheConfig{
			Enabled: k.Bool("enable.cache"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	applyDefaults(cfg, k)

	return cfg, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func applyDefaults(cfg *Config, k *koanf.Koanf) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "presswire"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "presswire"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "claude-sonnet-4-5-20250929"
	}
	if !k.Exists("llm.temperature") {
		cfg.LLM.Temperature = 0.7
	}
	if !k.Exists("llm.humanizer.temperature") {
		cfg.LLM.HumanizerTemperature = 0.9
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 4096
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 3
	}
	if cfg.LLM.RequestTimeout == 0 {
		cfg.LLM.RequestTimeout = 60 * time.Second
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "voyage-3-large"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Email.SMTPHost == "" {
		cfg.Email.SMTPHost = "smtp.gmail.com"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Memory.MaxTokens == 0 {
		cfg.Memory.MaxTokens = 2000
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 3
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.Evaluation.Model == "" {
		cfg.Evaluation.Model = cfg.LLM.Model
	}
	if cfg.Evaluation.PassThreshold == 0 {
		cfg.Evaluation.PassThreshold = 0.70
	}
	if !k.Exists("enable.cache") {
		cfg.Cache.Enabled = true
	}
	if cfg.Cache.SearchTTL == 0 {
		cfg.Cache.SearchTTL = 24 * time.Hour
	}
	if cfg.Cache.MediaTTL == 0 {
		cfg.Cache.MediaTTL = 24 * time.Hour
	}
	if cfg.Profiles.SeedDir == "" {
		cfg.Profiles.SeedDir = "./profiles"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
