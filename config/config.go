// Package config loads environment-driven settings for the pixel
// services. A .env file is honored when present; real environment
// variables always win.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting the binaries need.
type Config struct {
	// AnthropicAPIKey authorizes pixel extraction. Required for the
	// server; the SDK also reads ANTHROPIC_API_KEY on its own, so an
	// empty value here defers to that.
	AnthropicAPIKey string
	// AnthropicModel overrides the extraction model when non-empty.
	AnthropicModel string

	// GeminiAPIKey enables the real embedding provider. When empty the
	// server falls back to the deterministic mock embedder.
	GeminiAPIKey        string
	EmbeddingModel      string
	EmbeddingDimensions int

	// EmbeddingCacheMB bounds the in-process embedding cache. Zero
	// disables caching.
	EmbeddingCacheMB int

	// PersistPath is the on-disk location of the vector store. Empty
	// means in-memory only.
	PersistPath string

	HTTPPort string
}

// Load reads the environment, honoring a .env file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] no .env file found, relying on environment variables")
	}

	return &Config{
		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:      getEnv("ANTHROPIC_MODEL", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", ""),
		EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 0),
		EmbeddingCacheMB:    getEnvAsInt("EMBEDDING_CACHE_MB", 64),
		PersistPath:         getEnv("PIXEL_DB_PATH", ""),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
