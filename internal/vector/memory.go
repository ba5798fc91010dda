package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

type memoryItem struct {
	vector   []float32
	text     string
	metadata map[string]interface{}
}

// MemoryStore implements Store with in-process cosine-distance search.
// Intended for tests and development; everything is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
	}
}

// Upsert implements Store. Vectors and metadata are copied so later caller
// mutations cannot leak into the store.
func (s *MemoryStore) Upsert(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadata []map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(vectors) != len(ids) || len(texts) != len(ids) {
		return fmt.Errorf("ids, vectors, and texts must have equal length: %d, %d, %d", len(ids), len(vectors), len(texts))
	}
	if metadata != nil && len(metadata) != len(ids) {
		return fmt.Errorf("metadata length %d does not match ids length %d", len(metadata), len(ids))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("document[%d] has empty id", i)
		}
		item := memoryItem{
			vector: append([]float32(nil), vectors[i]...),
			text:   texts[i],
		}
		if metadata != nil {
			item.metadata = cloneMetadata(metadata[i])
		}
		s.items[id] = item
	}
	return nil
}

// Query implements Store. Distance is cosine distance (1 - similarity);
// ties are broken by id so results are deterministic.
func (s *MemoryStore) Query(ctx context.Context, vector []float32, k int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Document{}, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Document, 0, len(s.items))
	for id, item := range s.items {
		results = append(results, Document{
			ID:       id,
			Content:  item.text,
			Metadata: cloneMetadata(item.metadata),
			Distance: 1.0 - cosineSimilarity(vector, item.vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]memoryItem)
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func cloneMetadata(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
