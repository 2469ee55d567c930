// Package vectordb provides semantic search over a session's document
// chunks.
package vectordb

import (
	"context"

	"github.com/ziadkadry99/regaudit/internal/document"
)

// Index stores chunk embeddings per session and searches them.
type Index interface {
	// IndexChunks replaces the session's indexed chunks.
	IndexChunks(ctx context.Context, sessionID string, chunks []document.Chunk) error

	// Search returns up to limit chunks of the session most similar to query.
	Search(ctx context.Context, sessionID, query string, limit int) ([]SearchResult, error)

	// DeleteSession drops everything indexed for the session.
	DeleteSession(ctx context.Context, sessionID string) error

	// Count returns the number of chunks indexed for the session.
	Count(sessionID string) int
}
