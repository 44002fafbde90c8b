// ABOUTME: Centralized configuration for the guia CLI and MCP server
// ABOUTME: Defaults, then an optional YAML file, then environment variables, then validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/guia/internal/models"
)

// Index backends
const (
	IndexMemory = "memory"
	IndexQdrant = "qdrant"
)

// DefaultSources are the Manaus municipal tax law PDFs
var DefaultSources = []string{
	"data/codigo_tributario_municipal.pdf",
	"data/lei_iss_manaus.pdf",
	"data/lei_iptu_manaus.pdf",
}

// Config holds all configuration for guia
type Config struct {
	// OpenAI settings
	OpenAIKey      string        `yaml:"-"`
	OpenAIBaseURL  string        `yaml:"openai_base_url"`
	ChatModel      string        `yaml:"chat_model"`
	Temperature    float64       `yaml:"temperature"`
	EmbeddingModel string        `yaml:"embedding_model"`
	Timeout        time.Duration `yaml:"timeout"`
	EmbedRPS       float64       `yaml:"embed_rps"`
	EmbedBatchSize int           `yaml:"embed_batch_size"`

	// Retrieval settings
	Sources      []string `yaml:"sources"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	TopK         int      `yaml:"top_k"`
	SystemPrompt string   `yaml:"system_prompt"`

	// Index settings
	Index            string `yaml:"index"`
	QdrantAddr       string `yaml:"qdrant_addr"`
	QdrantCollection string `yaml:"qdrant_collection"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		ChatModel:        "gpt-4o-mini",
		Temperature:      0.7,
		EmbeddingModel:   "text-embedding-3-small",
		Timeout:          60 * time.Second,
		EmbedBatchSize:   100,
		Sources:          append([]string(nil), DefaultSources...),
		ChunkSize:        1000,
		ChunkOverlap:     200,
		TopK:             3,
		Index:            IndexMemory,
		QdrantAddr:       "localhost:6334",
		QdrantCollection: "guia_chunks",
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, models.NewConfigError("config", "reading %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, models.NewConfigError("config", "parsing %s: %v", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges and cross-field constraints
func (c *Config) Validate() error {
	// Chunk ids are derived from source, page and position, so a repeated
	// source would produce colliding ids.
	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		clean := filepath.Clean(src)
		if seen[clean] {
			return models.NewConfigError("sources", "duplicate source %q", src)
		}
		seen[clean] = true
	}
	if c.ChunkSize <= 0 {
		return models.NewConfigError("chunk_size", "must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return models.NewConfigError("chunk_overlap", "must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.TopK < 1 {
		return models.NewConfigError("top_k", "must be >= 1, got %d", c.TopK)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return models.NewConfigError("temperature", "must be 0-2, got %g", c.Temperature)
	}
	if c.Timeout <= 0 {
		return models.NewConfigError("timeout", "must be positive, got %s", c.Timeout)
	}
	if c.EmbedBatchSize < 1 {
		return models.NewConfigError("embed_batch_size", "must be >= 1, got %d", c.EmbedBatchSize)
	}
	if c.EmbedRPS < 0 {
		return models.NewConfigError("embed_rps", "cannot be negative, got %g", c.EmbedRPS)
	}
	switch c.Index {
	case IndexMemory:
	case IndexQdrant:
		if c.QdrantAddr == "" {
			return models.NewConfigError("qdrant_addr", "required when index is %q", IndexQdrant)
		}
		if c.QdrantCollection == "" {
			return models.NewConfigError("qdrant_collection", "required when index is %q", IndexQdrant)
		}
	default:
		return models.NewConfigError("index", "must be %q or %q, got %q", IndexMemory, IndexQdrant, c.Index)
	}
	return nil
}

// RequireCredentials fails when no API key is configured
func (c *Config) RequireCredentials() error {
	if strings.TrimSpace(c.OpenAIKey) == "" {
		return models.NewConfigError("OPENAI_API_KEY", "not set")
	}
	return nil
}

func applyEnv(c *Config) error {
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	getEnv("OPENAI_BASE_URL", &c.OpenAIBaseURL)
	getEnv("GUIA_CHAT_MODEL", &c.ChatModel)
	getEnv("GUIA_EMBEDDING_MODEL", &c.EmbeddingModel)
	getEnv("GUIA_SYSTEM_PROMPT", &c.SystemPrompt)
	getEnv("GUIA_INDEX", &c.Index)
	getEnv("QDRANT_ADDR", &c.QdrantAddr)
	getEnv("QDRANT_COLLECTION", &c.QdrantCollection)

	if v := os.Getenv("GUIA_SOURCES"); v != "" {
		c.Sources = splitList(v)
	}

	for _, err := range []error{
		getEnvFloat("GUIA_TEMPERATURE", &c.Temperature),
		getEnvDuration("GUIA_TIMEOUT", &c.Timeout),
		getEnvFloat("GUIA_EMBED_RPS", &c.EmbedRPS),
		getEnvInt("GUIA_EMBED_BATCH_SIZE", &c.EmbedBatchSize),
		getEnvInt("GUIA_CHUNK_SIZE", &c.ChunkSize),
		getEnvInt("GUIA_CHUNK_OVERLAP", &c.ChunkOverlap),
		getEnvInt("GUIA_TOP_K", &c.TopK),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Helper functions
func getEnv(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func getEnvInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return models.NewConfigError(key, "not an integer: %q", v)
	}
	*dst = i
	return nil
}

func getEnvFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return models.NewConfigError(key, "not a number: %q", v)
	}
	*dst = f
	return nil
}

func getEnvDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return models.NewConfigError(key, "not a duration: %q", v)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String renders the configuration without secrets
func (c *Config) String() string {
	key := "unset"
	if c.OpenAIKey != "" {
		key = "set"
	}
	return fmt.Sprintf("chat_model=%s embedding_model=%s top_k=%d chunk=%d/%d index=%s sources=%d api_key=%s",
		c.ChatModel, c.EmbeddingModel, c.TopK, c.ChunkSize, c.ChunkOverlap, c.Index, len(c.Sources), key)
}
