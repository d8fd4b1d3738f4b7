// Command batch-import loads a JSON array of pixels into one user's
// collection. Entries are validated and stored independently; the command
// exits non-zero when any entry failed.
//
// Usage:
//
//	batch-import <user-id> <pixels.json>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/beliefmap/pixels-go/config"
	"github.com/beliefmap/pixels-go/embedder/cached"
	"github.com/beliefmap/pixels-go/embedder/gemini"
	"github.com/beliefmap/pixels-go/embedder/mock"
	"github.com/beliefmap/pixels-go/pipeline"
	"github.com/beliefmap/pixels-go/store"
	"github.com/beliefmap/pixels-go/store/chromem"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <user-id> <pixels.json>\n", os.Args[0])
		os.Exit(2)
	}
	userID, path := os.Args[1], os.Args[2]

	cfg := config.Load()
	ctx := context.Background()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	var entries []pipeline.ImportEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	var embedder store.Embedder
	if cfg.GeminiAPIKey != "" {
		g, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDimensions,
		})
		if err != nil {
			log.Fatalf("create gemini embedder: %v", err)
		}
		embedder = g
	} else {
		log.Println("[IMPORT] GEMINI_API_KEY not set, using deterministic mock embedder")
		embedder = mock.New()
	}
	if cfg.EmbeddingCacheMB > 0 {
		wrapped, err := cached.New(embedder, int64(cfg.EmbeddingCacheMB)<<20)
		if err != nil {
			log.Fatalf("create embedding cache: %v", err)
		}
		embedder = wrapped
	}

	var s store.Store
	if cfg.PersistPath != "" {
		s, err = chromem.NewPersistent(cfg.PersistPath, embedder)
	} else {
		log.Println("[IMPORT] PIXEL_DB_PATH not set, importing into an in-memory store")
		s, err = chromem.New(embedder)
	}
	if err != nil {
		log.Fatalf("create pixel store: %v", err)
	}

	summary := pipeline.NewImporter(s).Import(ctx, userID, entries)
	fmt.Printf("Imported %d/%d pixels for %s (%d failed)\n",
		summary.Succeeded, summary.Total, userID, summary.Failed)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
