package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/starford/golinks/internal/apperr"
)

// OpenAIConfig configures an OpenAI-compatible embedding endpoint such as
// Ollama, LocalAI or the hosted API.
type OpenAIConfig struct {
	Host       string
	Model      string
	Token      string
	Dimensions int
}

// OpenAI implements Embedder with langchaingo.
type OpenAI struct {
	embedder embeddings.Embedder
	dims     int
	logger   *slog.Logger
}

// NewOpenAI creates an embedder for the configured endpoint. Hosts without
// a /v1 suffix get one appended.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) (*OpenAI, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("embed: dimensions must be positive, got %d", cfg.Dimensions)
	}
	host := strings.TrimSuffix(cfg.Host, "/")
	if host != "" && !strings.HasSuffix(host, "/v1") {
		host += "/v1"
	}
	token := cfg.Token
	if token == "" {
		// Local OpenAI-compatible servers accept any token.
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("embed: openai client: %w", err)
	}
	e, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("embed: openai embedder: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAI{
		embedder: e,
		dims:     cfg.Dimensions,
		logger:   logger.With(slog.String("component", "openai-embedder")),
	}, nil
}

// Dimensions returns the configured vector size.
func (o *OpenAI) Dimensions() int { return o.dims }

// EmbedText embeds text. Endpoint failures and vectors of the wrong size
// are reported as apperr.ErrUnavailable.
func (o *OpenAI) EmbedText(ctx context.Context, text string) ([]float32, error) {
	v, err := o.embedder.EmbedQuery(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.logger.Error("embedding failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("embed: %w: %w", apperr.ErrUnavailable, err)
	}
	if len(v) != o.dims {
		return nil, fmt.Errorf("embed: got %d dimensions, want %d: %w", len(v), o.dims, apperr.ErrUnavailable)
	}
	return v, nil
}
