package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders search results as human-readable text.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No matching passages found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d passage(s):\n\n", len(results))

	for i, r := range results {
		m := r.Document.Metadata
		location := m.SourceFile
		if m.Page > 0 {
			location += fmt.Sprintf(" (page %d)", m.Page)
		}
		fmt.Fprintf(&sb, "--- %d. %s, chunk %d (similarity: %.4f) ---\n", i+1, location, m.Index, r.Similarity)
		sb.WriteString(r.Document.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
