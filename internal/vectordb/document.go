package vectordb

import (
	"fmt"
	"strconv"

	"github.com/ziadkadry99/regaudit/internal/document"
)

// Document is an indexed chunk.
type Document struct {
	ID       string           `json:"id"`
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}

// DocumentMetadata locates a chunk within the uploaded files.
type DocumentMetadata struct {
	SessionID  string `json:"session_id"`
	SourceFile string `json:"source_file"`
	Page       int    `json:"page,omitempty"`
	Index      int    `json:"index"`
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document `json:"document"`
	Similarity float32  `json:"similarity"`
}

// DocumentID is the key a chunk is stored under.
func DocumentID(sessionID string, c document.Chunk) string {
	return fmt.Sprintf("%s:%s:%d", sessionID, c.SourceFile, c.Index)
}

// metadataToMap converts DocumentMetadata to a flat map[string]string for chromem.
func metadataToMap(m DocumentMetadata) map[string]string {
	return map[string]string{
		"session":     m.SessionID,
		"source_file": m.SourceFile,
		"page":        strconv.Itoa(m.Page),
		"index":       strconv.Itoa(m.Index),
	}
}

// mapToMetadata converts a flat map[string]string back to DocumentMetadata.
func mapToMetadata(m map[string]string) DocumentMetadata {
	page, _ := strconv.Atoi(m["page"])
	index, _ := strconv.Atoi(m["index"])
	return DocumentMetadata{
		SessionID:  m["session"],
		SourceFile: m["source_file"],
		Page:       page,
		Index:      index,
	}
}
