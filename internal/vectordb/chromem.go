package vectordb

import (
	"context"
	"fmt"
	"log/slog"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/regaudit/internal/document"
	"github.com/ziadkadry99/regaudit/internal/embeddings"
)

// DefaultSearchLimit applies when Search is called with limit <= 0.
const DefaultSearchLimit = 5

// embedConcurrency is how many chunks chromem embeds in parallel.
const embedConcurrency = 4

// ChromemIndex implements Index with an in-memory chromem-go database,
// one collection per session.
type ChromemIndex struct {
	db        *chromem.DB
	embedder  embeddings.Embedder
	embedFunc chromem.EmbeddingFunc
	logger    *slog.Logger
}

// NewChromemIndex creates an empty in-memory index.
func NewChromemIndex(embedder embeddings.Embedder, logger *slog.Logger) *ChromemIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromemIndex{
		db:        chromem.NewDB(),
		embedder:  embedder,
		embedFunc: embeddings.ToChromemFunc(embedder),
		logger:    logger,
	}
}

// Embedder returns the name of the embedding model in use.
func (s *ChromemIndex) Embedder() string {
	return s.embedder.Name()
}

func collectionName(sessionID string) string {
	return "session-" + sessionID
}

func (s *ChromemIndex) IndexChunks(ctx context.Context, sessionID string, chunks []document.Chunk) error {
	if err := s.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	col, err := s.db.GetOrCreateCollection(collectionName(sessionID), nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      DocumentID(sessionID, c),
			Content: c.Text,
			Metadata: metadataToMap(DocumentMetadata{
				SessionID:  sessionID,
				SourceFile: c.SourceFile,
				Page:       c.Page,
				Index:      c.Index,
			}),
		}
	}

	if err := col.AddDocuments(ctx, docs, embedConcurrency); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	s.logger.Debug("indexed chunks", "session", sessionID, "chunks", len(docs), "embedder", s.embedder.Name())
	return nil
}

func (s *ChromemIndex) Search(ctx context.Context, sessionID, query string, limit int) ([]SearchResult, error) {
	col := s.db.GetCollection(collectionName(sessionID), s.embedFunc)
	if col == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	limit = min(limit, count)

	results, err := col.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

func (s *ChromemIndex) DeleteSession(_ context.Context, sessionID string) error {
	if s.db.GetCollection(collectionName(sessionID), s.embedFunc) == nil {
		return nil
	}
	if err := s.db.DeleteCollection(collectionName(sessionID)); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func (s *ChromemIndex) Count(sessionID string) int {
	col := s.db.GetCollection(collectionName(sessionID), s.embedFunc)
	if col == nil {
		return 0
	}
	return col.Count()
}
