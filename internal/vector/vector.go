// Package vector provides the similarity-search backends used for
// retrieval-augmented responses.
//
// Two implementations ship with the bot: ChromaStore speaks the Chroma REST
// API over HTTP, and MemoryStore keeps vectors in process memory for tests
// and development. Both return results in ascending distance order, where a
// smaller distance means a closer match.
package vector

import "context"

// Document is one retrieval result: the stored text plus its metadata and
// the distance between its embedding and the query embedding.
type Document struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Distance float64                `json:"distance"`
}

// Store is the similarity-search backend interface.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Upsert stores documents with their embedding vectors. ids, vectors,
	// and texts are parallel slices; metadata may be nil or parallel.
	// Re-using an id replaces the stored document.
	Upsert(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadata []map[string]interface{}) error

	// Query returns the k nearest documents in ascending distance order.
	// k <= 0 returns an empty result without touching the backend.
	Query(ctx context.Context, vector []float32, k int) ([]Document, error)

	// Clear removes every stored document.
	Clear(ctx context.Context) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}
