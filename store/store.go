// Package store defines the per-user pixel storage abstraction.
//
// Every operation is scoped to a userID that maps to one isolated
// collection; no cross-user reads or writes exist. The backend computes the
// text embedding on Add, so callers only ever hand over document text and
// structured metadata.
//
// Implementations:
//   - store/chromem: embedded chromem-go vector database
package store

import (
	"context"

	"github.com/beliefmap/pixels-go/pixel"
)

// Embedder converts text to vector embeddings.
// Implementations: embedder/mock (testing), embedder/gemini (API-based),
// embedder/onnx (local model), embedder/cached (read-through cache).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// GetAllResult holds every record of a user's collection as four parallel
// slices sharing one ordering. The ordering itself is backend-defined.
type GetAllResult struct {
	IDs        []string          `json:"ids"`
	Embeddings [][]float32       `json:"embeddings"`
	Documents  []string          `json:"documents"`
	Metadatas  []*pixel.Metadata `json:"metadatas"`
}

// Len returns the number of records in the result.
func (r *GetAllResult) Len() int {
	return len(r.IDs)
}

// Store is the vector storage backend for pixels.
type Store interface {
	// Add embeds documentText and inserts a single record under the
	// user's collection. The id must be unique; Add never overwrites.
	Add(ctx context.Context, userID, documentText string, metadata *pixel.Metadata, id string) error

	// GetAll returns every record in the user's collection.
	GetAll(ctx context.Context, userID string) (*GetAllResult, error)

	// Delete removes one record. Deleting an absent id is a no-op.
	Delete(ctx context.Context, userID, id string) error

	// DeleteAll removes every record for the user and returns the number
	// removed (0 for an empty collection).
	DeleteAll(ctx context.Context, userID string) (int, error)
}
