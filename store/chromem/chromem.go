// Package chromem implements the pixel store on chromem-go, a pure Go
// embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/beliefmap/pixels-go/pixel"
	"github.com/beliefmap/pixels-go/store"
)

// Store keeps one chromem collection per user. Collections are created
// lazily on first access with cosine similarity space; chromem fixes the
// space at creation time, which is exactly the immutability the pixel
// pipeline needs.
type Store struct {
	db          *chromem.DB
	embedder    store.Embedder
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// New creates an in-memory chromem store. The embedder is required: Add
// computes the document embedding before every insert.
func New(embedder store.Embedder) (*Store, error) {
	if embedder == nil {
		return nil, &store.ConfigError{Reason: "embedder is required"}
	}
	return &Store{
		db:          chromem.NewDB(),
		embedder:    embedder,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// NewPersistent creates a chromem store backed by an on-disk database.
func NewPersistent(path string, embedder store.Embedder) (*Store, error) {
	if embedder == nil {
		return nil, &store.ConfigError{Reason: "embedder is required"}
	}
	if path == "" {
		return nil, &store.ConfigError{Reason: "persistence path is required"}
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, &store.ConfigError{Reason: fmt.Sprintf("open persistent db at %s: %v", path, err)}
	}
	return &Store{
		db:          db,
		embedder:    embedder,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// collectionName maps a user to their isolated collection.
func collectionName(userID string) string {
	return fmt.Sprintf("pixels-%s", userID)
}

// getOrCreateCollection returns the collection for a user, creating it on
// first access. Creation is idempotent; the cosine space is set once here
// and never changes afterwards.
func (s *Store) getOrCreateCollection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[userID]
	s.mu.RUnlock()

	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if col, exists := s.collections[userID]; exists {
		return col, nil
	}

	col, err := s.db.GetOrCreateCollection(
		collectionName(userID),
		map[string]string{"hnsw:space": "cosine"},
		nil, // embeddings are always provided explicitly
	)
	if err != nil {
		return nil, store.Classify("create collection", err)
	}

	s.collections[userID] = col
	return col, nil
}

// Add embeds documentText and inserts one record into the user's collection.
func (s *Store) Add(ctx context.Context, userID, documentText string, metadata *pixel.Metadata, id string) error {
	embedding, err := s.embedder.Embed(ctx, documentText)
	if err != nil {
		return &store.TransientError{Op: "embed document", Err: err}
	}

	meta, err := metadata.Encode()
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	col, err := s.getOrCreateCollection(userID)
	if err != nil {
		return err
	}

	log.Printf("[CHROMEM] Storing pixel: id=%s, user=%s", id, userID)

	doc := chromem.Document{
		ID:        id,
		Content:   documentText,
		Embedding: embedding,
		Metadata:  meta,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return store.Classify("add document", err)
	}

	return nil
}

// GetAll returns every record in the user's collection as parallel slices.
// chromem has no bulk read, so we query with a fixed probe vector and ask
// for as many results as the collection holds. The resulting order is
// similarity-defined and callers must not rely on it.
func (s *Store) GetAll(ctx context.Context, userID string) (*store.GetAllResult, error) {
	col, err := s.getOrCreateCollection(userID)
	if err != nil {
		return nil, err
	}

	out := &store.GetAllResult{
		IDs:        []string{},
		Embeddings: [][]float32{},
		Documents:  []string{},
		Metadatas:  []*pixel.Metadata{},
	}

	count := col.Count()
	if count == 0 {
		return out, nil
	}

	probe := make([]float32, s.embedder.Dimensions())
	probe[0] = 1

	// chromem requires nResults <= collection size; a concurrent delete
	// can shrink the collection between Count and the query, so back off
	// until the query fits.
	var results []chromem.Result
	for limit := count; limit >= 1; limit-- {
		results, err = col.QueryEmbedding(ctx, probe, limit, nil, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if limit == 1 {
				log.Printf("[CHROMEM] Collection for user=%s is empty", userID)
				return out, nil
			}
			continue
		}
		return nil, store.Classify("get all", err)
	}

	for _, result := range results {
		out.IDs = append(out.IDs, result.ID)
		out.Embeddings = append(out.Embeddings, result.Embedding)
		out.Documents = append(out.Documents, result.Content)
		out.Metadatas = append(out.Metadatas, pixel.DecodeMetadata(result.Metadata))
	}

	log.Printf("[CHROMEM] Returning %d pixels for user=%s", out.Len(), userID)
	return out, nil
}

// Delete removes one record from the user's collection. Deleting an id that
// does not exist is a no-op.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	col, err := s.getOrCreateCollection(userID)
	if err != nil {
		return err
	}

	log.Printf("[CHROMEM] Deleting pixel: id=%s, user=%s", id, userID)
	if err := col.Delete(ctx, nil, nil, id); err != nil {
		return store.Classify("delete document", err)
	}
	return nil
}

// DeleteAll removes every record for the user and returns the count removed.
func (s *Store) DeleteAll(ctx context.Context, userID string) (int, error) {
	all, err := s.GetAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	if all.Len() == 0 {
		return 0, nil
	}

	col, err := s.getOrCreateCollection(userID)
	if err != nil {
		return 0, err
	}

	log.Printf("[CHROMEM] Deleting all %d pixels for user=%s", all.Len(), userID)
	if err := col.Delete(ctx, nil, nil, all.IDs...); err != nil {
		return 0, store.Classify("delete all", err)
	}
	return all.Len(), nil
}

// isInsufficientDocsError checks if error is due to insufficient documents.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
