package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestChromaStore_BasicFlow(t *testing.T) {
	var createCalls, addCalls, queryCalls, countCalls, deleteCalls atomic.Int64

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method for create: %s", r.Method)
		}
		var req struct {
			Name        string `json:"name"`
			GetOrCreate bool   `json:"get_or_create"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode create request: %v", err)
		}
		if req.Name != "testcol" || !req.GetOrCreate {
			t.Errorf("unexpected create request: %+v", req)
		}
		createCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"col-1","name":"testcol"}`))
	})

	mux.HandleFunc("/api/v1/collections/col-1/add", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method for add: %s", r.Method)
		}
		addCalls.Add(1)

		var req struct {
			IDs        []string                 `json:"ids"`
			Embeddings [][]float32              `json:"embeddings"`
			Documents  []string                 `json:"documents"`
			Metadatas  []map[string]interface{} `json:"metadatas"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode add request: %v", err)
		}
		if len(req.IDs) != 2 || len(req.Embeddings) != 2 || len(req.Documents) != 2 || len(req.Metadatas) != 2 {
			t.Errorf("expected 2 entries per field, got ids=%d embeddings=%d documents=%d metadatas=%d",
				len(req.IDs), len(req.Embeddings), len(req.Documents), len(req.Metadatas))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`true`))
	})

	mux.HandleFunc("/api/v1/collections/col-1/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method for query: %s", r.Method)
		}
		queryCalls.Add(1)

		var req struct {
			QueryEmbeddings [][]float32 `json:"query_embeddings"`
			NResults        int         `json:"n_results"`
			Include         []string    `json:"include"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode query request: %v", err)
		}
		if len(req.QueryEmbeddings) != 1 {
			t.Errorf("expected 1 query embedding, got %d", len(req.QueryEmbeddings))
		}
		if req.NResults != 2 {
			t.Errorf("expected n_results 2, got %d", req.NResults)
		}
		if len(req.Include) != 3 {
			t.Errorf("expected 3 include fields, got %v", req.Include)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ids":[["a","b"]],
			"documents":[["hello","world"]],
			"metadatas":[[{"section":"intro"},{"section":"skills"}]],
			"distances":[[0.1,0.4]]
		}`))
	})

	mux.HandleFunc("/api/v1/collections/col-1/count", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method for count: %s", r.Method)
		}
		countCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`2`))
	})

	mux.HandleFunc("/api/v1/collections/testcol", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method for delete: %s", r.Method)
		}
		deleteCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := NewChromaStore(ChromaConfig{
		BaseURL:    srv.URL,
		Collection: "testcol",
	}, zap.NewNop())
	ctx := context.Background()

	err := store.Upsert(ctx,
		[]string{"a", "b"},
		[][]float32{{0.1, 0.2}, {0.2, 0.1}},
		[]string{"hello", "world"},
		[]map[string]interface{}{{"section": "intro"}, {"section": "skills"}},
	)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	docs, err := store.Query(ctx, []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "a" || docs[0].Content != "hello" {
		t.Errorf("unexpected first document: %+v", docs[0])
	}
	if docs[0].Distance != 0.1 || docs[1].Distance != 0.4 {
		t.Errorf("expected backend distances preserved, got %v and %v", docs[0].Distance, docs[1].Distance)
	}
	if docs[0].Metadata["section"] != "intro" {
		t.Errorf("unexpected first metadata: %v", docs[0].Metadata)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}

	// The collection id is cached across operations.
	if createCalls.Load() != 1 {
		t.Errorf("expected 1 create call before clear, got %d", createCalls.Load())
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if deleteCalls.Load() != 1 {
		t.Errorf("expected 1 delete call, got %d", deleteCalls.Load())
	}
	if createCalls.Load() != 2 {
		t.Errorf("clear should recreate the collection, create calls = %d", createCalls.Load())
	}
	if addCalls.Load() != 1 || queryCalls.Load() != 1 || countCalls.Load() != 1 {
		t.Errorf("unexpected call counts: add=%d query=%d count=%d",
			addCalls.Load(), queryCalls.Load(), countCalls.Load())
	}
}

func TestChromaStore_QueryShortCircuitsOnZeroK(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	store := NewChromaStore(ChromaConfig{BaseURL: srv.URL, Collection: "testcol"}, nil)

	docs, err := store.Query(context.Background(), []float32{1}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty result, got %d documents", len(docs))
	}
	if hits.Load() != 0 {
		t.Errorf("expected no backend call for k=0, got %d", hits.Load())
	}
}

func TestChromaStore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	store := NewChromaStore(ChromaConfig{BaseURL: srv.URL, Collection: "testcol"}, nil)
	ctx := context.Background()

	if _, err := store.Query(ctx, []float32{1}, 3); err == nil {
		t.Error("expected error from failing backend")
	} else if !strings.Contains(err.Error(), "status=500") {
		t.Errorf("expected status in error, got %q", err.Error())
	}

	if err := store.Upsert(ctx, []string{"a"}, [][]float32{{1}}, []string{"x"}, nil); err == nil {
		t.Error("expected error from failing backend")
	}
}

func TestChromaStore_Ping(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/heartbeat" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{"nanosecond heartbeat": 1}`))
		}))
		t.Cleanup(srv.Close)

		store := NewChromaStore(ChromaConfig{BaseURL: srv.URL}, nil)
		if err := store.Ping(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		store := NewChromaStore(ChromaConfig{BaseURL: srv.URL}, nil)
		if err := store.Ping(context.Background()); err == nil {
			t.Error("expected error from unhealthy backend")
		}
	})
}
