// Package gemini implements the Embedder interface on the Google
// Generative AI embedding API.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/beliefmap/pixels-go/store"
)

const (
	defaultModel      = "text-embedding-004"
	defaultDimensions = 768
)

// Embedder generates embeddings via the Gemini embedding models.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int
}

// Config configures the Gemini embedder.
type Config struct {
	// APIKey is required.
	APIKey string

	// Model is the embedding model name (default: text-embedding-004).
	Model string

	// Dimensions is the vector size the model produces (default: 768).
	Dimensions int
}

// New creates a Gemini embedder. A missing API key is a configuration
// error, reported once here at construction rather than on every call.
func New(ctx context.Context, cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, &store.ConfigError{Reason: "gemini API key is not set"}
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = defaultDimensions
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, &store.ConfigError{Reason: fmt.Sprintf("create genai client: %v", err)}
	}

	return &Embedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed converts a single text to an embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the underlying client.
func (e *Embedder) Close() error {
	return e.client.Close()
}
