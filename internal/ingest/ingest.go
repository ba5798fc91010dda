// Package ingest loads markdown documents into the vector store.
//
// Ingestion runs in three stages: markdown content is split into
// per-section documents, each document is chunked along natural text
// boundaries, and the chunks are embedded and upserted in one batch. The
// chat retriever then searches those chunks at question time.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/internal/llm"
	"github.com/zelalem61/personal-chat-bot/internal/vector"
)

// Document is one unit of input for ingestion. ID is optional; a random
// one is assigned when empty. Metadata is attached to every chunk the
// document produces.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

// Report summarizes one ingestion run.
type Report struct {
	// File is the path that was ingested.
	File string

	// Documents is the number of section documents the file produced.
	Documents int

	// Chunks is the number of chunks embedded and stored.
	Chunks int

	// Total is the document count in the store after ingestion.
	Total int
}

// Ingestor chunks, embeds, and stores documents for retrieval.
type Ingestor struct {
	embedder llm.Embedder
	store    vector.Store
	splitter *Splitter
	logger   *zap.Logger
}

// NewIngestor creates an Ingestor. chunkSize and chunkOverlap configure the
// text splitter; a nil logger disables logging.
func NewIngestor(embedder llm.Embedder, store vector.Store, chunkSize, chunkOverlap int, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		embedder: embedder,
		store:    store,
		splitter: NewSplitter(chunkSize, chunkOverlap),
		logger:   logger.With(zap.String("component", "ingestor")),
	}
}

// IngestFile loads a markdown file and stores its embedded chunks. When
// clear is true all previously stored documents are removed first. An
// empty file is not an error; the returned report simply shows zero
// chunks.
func (in *Ingestor) IngestFile(ctx context.Context, path string, clear bool) (*Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if clear {
		in.logger.Info("clearing existing documents")
		if err := in.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear store: %w", err)
		}
	}

	docs := Load(raw, filepath.Base(path))
	if len(docs) == 0 {
		in.logger.Warn("file is empty, nothing to ingest", zap.String("file", path))
		return &Report{File: path}, nil
	}
	in.logger.Info("loaded documents", zap.String("file", path), zap.Int("documents", len(docs)))

	chunks, err := in.AddDocuments(ctx, docs)
	if err != nil {
		return nil, err
	}

	total, err := in.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	return &Report{
		File:      path,
		Documents: len(docs),
		Chunks:    chunks,
		Total:     total,
	}, nil
}

// AddDocuments chunks, embeds, and stores the given documents, returning
// the number of chunks stored. Documents with empty content are skipped.
// Chunk ids are derived from the document id as "<id>_<index>", and each
// chunk's metadata carries its index under the "chunk" key.
func (in *Ingestor) AddDocuments(ctx context.Context, docs []Document) (int, error) {
	var (
		ids       []string
		texts     []string
		metadatas []map[string]interface{}
	)
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		baseID := doc.ID
		if baseID == "" {
			baseID = uuid.NewString()
		}
		for idx, chunk := range in.splitter.Split(doc.Content) {
			meta := make(map[string]interface{}, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta["chunk"] = idx
			ids = append(ids, fmt.Sprintf("%s_%d", baseID, idx))
			texts = append(texts, chunk)
			metadatas = append(metadatas, meta)
		}
	}
	if len(texts) == 0 {
		return 0, nil
	}

	in.logger.Info("embedding chunks for storage", zap.Int("chunks", len(texts)))
	vectors, err := in.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	if err := in.store.Upsert(ctx, ids, vectors, texts, metadatas); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	in.logger.Info("stored chunks", zap.Int("chunks", len(texts)))

	return len(texts), nil
}

// Load prepares raw markdown for ingestion. Content with more than one
// "## " section becomes one document per section, titled so related text
// stays together through chunking; otherwise the whole file is a single
// document. Empty content returns nil.
func Load(content []byte, source string) []Document {
	text := string(content)
	sections := SplitSections(text)
	if len(sections) == 0 {
		return nil
	}

	if len(sections) > 1 {
		docs := make([]Document, 0, len(sections))
		for _, sec := range sections {
			docs = append(docs, Document{
				Content: sec.Content,
				Metadata: map[string]interface{}{
					"source":  source,
					"section": sec.Title,
				},
			})
		}
		return docs
	}

	return []Document{{
		Content: text,
		Metadata: map[string]interface{}{
			"source": source,
		},
	}}
}
