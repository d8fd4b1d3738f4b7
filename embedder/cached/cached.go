// Package cached wraps any Embedder with a ristretto read-through cache.
//
// The pipeline embeds the canonical document text of every pixel, and batch
// imports frequently re-submit identical texts; caching by text avoids
// repeat provider calls for them.
package cached

import (
	"context"

	"github.com/dgraph-io/ristretto"

	"github.com/beliefmap/pixels-go/store"
)

// Embedder caches the results of an inner embedder, keyed by input text.
type Embedder struct {
	inner store.Embedder
	cache *ristretto.Cache
}

// New wraps inner with a cache of roughly maxBytes of vector data.
func New(inner store.Embedder, maxBytes int64) (*Embedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, embedding through the inner
// provider on a miss. Provider errors are never cached.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		if emb, ok := v.([]float32); ok {
			return emb, nil
		}
	}

	emb, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// Cost is the vector's storage size; admission may still reject it.
	e.cache.Set(text, emb, int64(4*len(emb)))
	return emb, nil
}

// Dimensions returns the inner embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close releases the cache.
func (e *Embedder) Close() {
	e.cache.Close()
}
