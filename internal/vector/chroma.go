package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ChromaConfig configures the Chroma-backed Store.
type ChromaConfig struct {
	Host       string
	Port       int
	BaseURL    string // overrides Host/Port when set; used by tests
	Collection string
	Timeout    time.Duration
}

// ChromaStore implements Store using Chroma's REST API.
//
// The collection is resolved get-or-create on first use and the returned
// collection id is cached; Clear invalidates the cache because it deletes
// and recreates the collection under a new id.
type ChromaStore struct {
	cfg     ChromaConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu           sync.Mutex
	collectionID string
}

// NewChromaStore creates a Chroma-backed Store. Zero-value config fields
// default to localhost:8000, collection "portfolio_docs", 30s timeout.
func NewChromaStore(cfg ChromaConfig, logger *zap.Logger) *ChromaStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.Collection == "" {
		cfg.Collection = "portfolio_docs"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	}

	return &ChromaStore{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With(zap.String("component", "chroma_store")),
	}
}

// Ping checks that the Chroma server is reachable.
func (s *ChromaStore) Ping(ctx context.Context) error {
	if err := s.doJSON(ctx, http.MethodGet, "/api/v1/heartbeat", nil, nil); err != nil {
		return fmt.Errorf("chroma heartbeat: %w", err)
	}
	return nil
}

// Upsert implements Store.
func (s *ChromaStore) Upsert(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadata []map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	if len(vectors) != len(ids) || len(texts) != len(ids) {
		return fmt.Errorf("ids, vectors, and texts must have equal length: %d, %d, %d", len(ids), len(vectors), len(texts))
	}
	if metadata != nil && len(metadata) != len(ids) {
		return fmt.Errorf("metadata length %d does not match ids length %d", len(metadata), len(ids))
	}

	collID, err := s.collection(ctx)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"ids":        ids,
		"embeddings": vectors,
		"documents":  texts,
	}
	if metadata != nil {
		body["metadatas"] = metadata
	}

	path := fmt.Sprintf("/api/v1/collections/%s/add", url.PathEscape(collID))
	if err := s.doJSON(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("chroma add: %w", err)
	}

	s.logger.Debug("chroma upsert completed", zap.Int("count", len(ids)))
	return nil
}

// Query implements Store. Chroma returns results nearest-first; that order
// is preserved.
func (s *ChromaStore) Query(ctx context.Context, vector []float32, k int) ([]Document, error) {
	if k <= 0 {
		return []Document{}, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is required")
	}

	collID, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	req := map[string]interface{}{
		"query_embeddings": [][]float32{vector},
		"n_results":        k,
		"include":          []string{"documents", "metadatas", "distances"},
	}

	// Chroma nests each field one level per query embedding.
	var resp struct {
		IDs       [][]string                 `json:"ids"`
		Documents [][]string                 `json:"documents"`
		Metadatas [][]map[string]interface{} `json:"metadatas"`
		Distances [][]float64                `json:"distances"`
	}

	path := fmt.Sprintf("/api/v1/collections/%s/query", url.PathEscape(collID))
	if err := s.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("chroma query: %w", err)
	}
	if len(resp.IDs) == 0 {
		return []Document{}, nil
	}

	ids := resp.IDs[0]
	out := make([]Document, 0, len(ids))
	for i, id := range ids {
		doc := Document{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			doc.Content = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			doc.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			doc.Distance = resp.Distances[0][i]
		}
		out = append(out, doc)
	}

	s.logger.Debug("chroma query completed", zap.Int("results", len(out)))
	return out, nil
}

// Clear implements Store by deleting and recreating the collection.
func (s *ChromaStore) Clear(ctx context.Context) error {
	path := fmt.Sprintf("/api/v1/collections/%s", url.PathEscape(s.cfg.Collection))
	if err := s.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("chroma delete collection: %w", err)
	}

	s.mu.Lock()
	s.collectionID = ""
	s.mu.Unlock()

	// Recreate immediately so the collection exists for the next caller.
	if _, err := s.collection(ctx); err != nil {
		return err
	}

	s.logger.Info("chroma collection cleared", zap.String("collection", s.cfg.Collection))
	return nil
}

// Count implements Store.
func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	collID, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	path := fmt.Sprintf("/api/v1/collections/%s/count", url.PathEscape(collID))
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &count); err != nil {
		return 0, fmt.Errorf("chroma count: %w", err)
	}
	return count, nil
}

// collection returns the cached collection id, resolving it get-or-create
// on first use.
func (s *ChromaStore) collection(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collectionID != "" {
		return s.collectionID, nil
	}

	body := map[string]interface{}{
		"name":          s.cfg.Collection,
		"get_or_create": true,
	}
	var resp struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/api/v1/collections", body, &resp); err != nil {
		return "", fmt.Errorf("chroma get-or-create collection: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("chroma returned no id for collection %q", s.cfg.Collection)
	}

	s.collectionID = resp.ID
	s.logger.Debug("chroma collection resolved",
		zap.String("collection", s.cfg.Collection),
		zap.String("id", resp.ID))
	return s.collectionID, nil
}

func (s *ChromaStore) doJSON(ctx context.Context, method, path string, in interface{}, out interface{}) error {
	endpoint := s.baseURL + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma request failed: method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
