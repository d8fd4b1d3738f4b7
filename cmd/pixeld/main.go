// Command pixeld runs the belief-pixel HTTP service: extraction from chat
// batches, per-user vector storage, and 3D projection for display.
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/beliefmap/pixels-go/config"
	"github.com/beliefmap/pixels-go/embedder/cached"
	"github.com/beliefmap/pixels-go/embedder/gemini"
	"github.com/beliefmap/pixels-go/embedder/mock"
	"github.com/beliefmap/pixels-go/extract"
	"github.com/beliefmap/pixels-go/pipeline"
	"github.com/beliefmap/pixels-go/server"
	"github.com/beliefmap/pixels-go/store"
	"github.com/beliefmap/pixels-go/store/chromem"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	embedder := buildEmbedder(ctx, cfg)
	if cfg.EmbeddingCacheMB > 0 {
		wrapped, err := cached.New(embedder, int64(cfg.EmbeddingCacheMB)<<20)
		if err != nil {
			log.Fatalf("create embedding cache: %v", err)
		}
		embedder = wrapped
	}

	var (
		s   store.Store
		err error
	)
	if cfg.PersistPath != "" {
		s, err = chromem.NewPersistent(cfg.PersistPath, embedder)
		log.Printf("[SERVER] Persisting pixels to %s", cfg.PersistPath)
	} else {
		s, err = chromem.New(embedder)
	}
	if err != nil {
		log.Fatalf("create pixel store: %v", err)
	}

	var clientOpts []option.RequestOption
	if cfg.AnthropicAPIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.AnthropicAPIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	var extractOpts []extract.Option
	if cfg.AnthropicModel != "" {
		extractOpts = append(extractOpts, extract.WithModel(cfg.AnthropicModel))
	}
	extractor := extract.New(&client, extractOpts...)

	// No transcript store is wired here; message marking belongs to the
	// chat backend that calls this service.
	coordinator := pipeline.New(extractor, s, nil)

	addr := ":" + cfg.HTTPPort
	log.Printf("[SERVER] Listening on %s", addr)
	if err := http.ListenAndServe(addr, server.New(coordinator, s).Router()); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// buildEmbedder picks the real Gemini embedder when a key is configured
// and falls back to the deterministic mock for offline runs.
func buildEmbedder(ctx context.Context, cfg *config.Config) store.Embedder {
	if cfg.GeminiAPIKey == "" {
		log.Println("[SERVER] GEMINI_API_KEY not set, using deterministic mock embedder")
		return mock.New()
	}

	embedder, err := gemini.New(ctx, gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	})
	if err != nil {
		log.Fatalf("create gemini embedder: %v", err)
	}
	return embedder
}
