package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/golinks/internal/linkstore"
)

// Embedding providers.
const (
	EmbeddingProviderHash   = "hash"
	EmbeddingProviderOpenAI = "openai"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Embedding EmbeddingConfig   `yaml:"embedding"`
	Search    SearchConfig      `yaml:"search"`
	Seed      SeedConfig        `yaml:"seed"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Embedding.Validate(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return c.Seed.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EmbeddingConfig selects how link sources are embedded for semantic search.
//
// Provider "hash" needs no external service and is meant for local use and
// tests. Provider "openai" talks to any OpenAI-compatible embeddings
// endpoint at Host. Changing Dimensions requires a fresh database.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Host       string `yaml:"host"`
	Model      string `yaml:"model"`
	Token      string `yaml:"token"`
	Dimensions int    `yaml:"dimensions"`
}

// Validate validates the embedding configuration.
func (c *EmbeddingConfig) Validate() error {
	isOpenAI := c.Provider == EmbeddingProviderOpenAI
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(EmbeddingProviderHash, EmbeddingProviderOpenAI)),
		validation.Field(&c.Host, validation.When(isOpenAI, validation.Required)),
		validation.Field(&c.Model, validation.When(isOpenAI, validation.Required)),
		validation.Field(&c.Dimensions, validation.Required, validation.Min(1), validation.Max(8192)),
	)
}

// SearchConfig tunes retrieval.
type SearchConfig struct {
	// CandidateCap is the number of nearest neighbours a semantic search
	// pages through.
	CandidateCap int `yaml:"candidate_cap"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CandidateCap, validation.Required, validation.Min(1), validation.Max(4096)),
	)
}

// SeedConfig points at an optional YAML file of links imported at start.
type SeedConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the seed configuration.
func (c *SeedConfig) Validate() error {
	if c.Watch && c.Path == "" {
		return fmt.Errorf("seed: watch is enabled but path is empty")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./golinks.db",
		},
		Embedding: EmbeddingConfig{
			Provider:   EmbeddingProviderHash,
			Dimensions: 256,
		},
		Search: SearchConfig{
			CandidateCap: linkstore.DefaultCandidateCap,
		},
	}
}
