package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/internal/llm"
	"github.com/zelalem61/personal-chat-bot/internal/vector"
)

// defaultNumDocs is the retrieval depth when none is configured.
const defaultNumDocs = 4

// OpenStoreFunc lazily opens the vector store backing retrieval. The
// retriever calls it once, on the first query that needs documents.
type OpenStoreFunc func(ctx context.Context) (vector.Store, error)

// Retriever embeds the latest user message and fetches the nearest
// portfolio chunks for the responder.
//
// Retrieval never fails a turn. Whatever goes wrong (store unavailable,
// embedding error, query error) the node reports an empty, non-nil
// document set so downstream nodes see "searched, found nothing".
type Retriever struct {
	embedder llm.Embedder
	open     OpenStoreFunc
	k        int
	logger   *zap.Logger

	once    sync.Once
	store   vector.Store
	openErr error
}

// NewRetriever builds the retrieval node. numDocs bounds how many chunks a
// query returns; values below 1 fall back to the default.
func NewRetriever(embedder llm.Embedder, open OpenStoreFunc, numDocs int, logger *zap.Logger) *Retriever {
	if numDocs < 1 {
		numDocs = defaultNumDocs
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		embedder: embedder,
		open:     open,
		k:        numDocs,
		logger:   logger.With(zap.String("component", "retriever")),
	}
}

// Run retrieves documents for the current turn.
func (r *Retriever) Run(ctx context.Context, state State) (State, error) {
	empty := State{Documents: []vector.Document{}}

	query := state.LastUserMessage()
	if query == "" {
		return empty, nil
	}

	r.once.Do(func() {
		r.store, r.openErr = r.open(ctx)
	})
	if r.openErr != nil {
		r.logger.Warn("vector store unavailable", zap.Error(r.openErr))
		return empty, nil
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) != 1 {
		r.logger.Warn("query embedding failed",
			zap.String("query", truncate(query, 50)),
			zap.Error(err))
		return empty, nil
	}

	docs, err := r.store.Query(ctx, vecs[0], r.k)
	if err != nil {
		r.logger.Warn("vector query failed",
			zap.String("query", truncate(query, 50)),
			zap.Error(err))
		return empty, nil
	}
	if docs == nil {
		docs = []vector.Document{}
	}

	r.logger.Debug("retrieved documents",
		zap.String("query", truncate(query, 50)),
		zap.Int("count", len(docs)))

	return State{Documents: docs}, nil
}
