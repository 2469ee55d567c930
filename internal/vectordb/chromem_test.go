package vectordb

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/ziadkadry99/regaudit/internal/document"
)

// mockEmbedder returns deterministic embeddings based on text content.
// Texts sharing words land on the same vector positions.
type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.vector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) vector(text string) []float32 {
	vec := make([]float32, m.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := 0
		for _, ch := range word {
			h = (h*31 + int(ch)) % m.dims
		}
		vec[h]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func chunks() []document.Chunk {
	return []document.Chunk{
		document.NewChunk("encryption of personal data at rest", "security.txt", 0, 0),
		document.NewChunk("employee onboarding and training schedule", "hr.txt", 0, 0),
		document.NewChunk("breach notification within seventy two hours", "incident.pdf", 3, 1),
	}
}

func TestChromemIndex_IndexAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex(&mockEmbedder{dims: 128}, nil)

	if err := idx.IndexChunks(ctx, "s1", chunks()); err != nil {
		t.Fatalf("IndexChunks: %v", err)
	}
	if got := idx.Count("s1"); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}

	results, err := idx.Search(ctx, "s1", "breach notification", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	md := results[0].Document.Metadata
	if md.SourceFile != "incident.pdf" || md.Page != 3 || md.Index != 1 || md.SessionID != "s1" {
		t.Errorf("unexpected metadata: %+v", md)
	}
	if results[0].Document.ID != "s1:incident.pdf:1" {
		t.Errorf("ID = %q", results[0].Document.ID)
	}
}

func TestChromemIndex_LimitClampedToCount(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex(&mockEmbedder{dims: 64}, nil)
	if err := idx.IndexChunks(ctx, "s1", chunks()); err != nil {
		t.Fatalf("IndexChunks: %v", err)
	}

	results, err := idx.Search(ctx, "s1", "data", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestChromemIndex_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex(&mockEmbedder{dims: 64}, nil)

	if err := idx.IndexChunks(ctx, "a", chunks()); err != nil {
		t.Fatalf("IndexChunks: %v", err)
	}
	results, err := idx.Search(ctx, "b", "encryption", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for other session, got %d", len(results))
	}
}

func TestChromemIndex_ReindexReplaces(t *testing.T) {
	ctx := context.Background()
	idx := NewChromemIndex(&mockEmbedder{dims: 64}, nil)

	if err := idx.IndexChunks(ctx, "s1", chunks()); err != nil {
		t.Fatalf("IndexChunks: %v", err)
	}
	if err := idx.IndexChunks(ctx, "s1", chunks()[:1]); err != nil {
		t.Fatalf("IndexChunks: %v", err)
	}
	if got := idx.Count("s1"); got != 1 {
		t.Errorf("Count after reindex = %d, want 1", got)
	}

	if err := idx.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if got := idx.Count("s1"); got != 0 {
		t.Errorf("Count after delete = %d, want 0", got)
	}
	if err := idx.DeleteSession(ctx, "never-indexed"); err != nil {
		t.Errorf("DeleteSession on unknown session: %v", err)
	}
}

func TestFormatResults(t *testing.T) {
	if got := FormatResults(nil); got != "No matching passages found." {
		t.Errorf("empty = %q", got)
	}

	out := FormatResults([]SearchResult{{
		Document:   Document{Content: "text", Metadata: DocumentMetadata{SourceFile: "a.pdf", Page: 2, Index: 4}},
		Similarity: 0.5,
	}})
	if !strings.Contains(out, "a.pdf (page 2), chunk 4") || !strings.Contains(out, "text") {
		t.Errorf("unexpected output: %q", out)
	}
}
