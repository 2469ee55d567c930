package document

import "unicode/utf8"

// Chunk is one bounded-size slice of a document's extracted text.
// Chunks are immutable once produced.
type Chunk struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	// ChunkSize is the length of Text in characters.
	ChunkSize int `json:"chunk_size"`
	// Page is the 1-based PDF page the text came from, 0 for other formats.
	Page int `json:"page,omitempty"`
	// Index is the chunk's position within its source file.
	Index int `json:"index"`
}

// NewChunk builds a chunk with ChunkSize derived from text.
func NewChunk(text, sourceFile string, page, index int) Chunk {
	return Chunk{
		Text:       text,
		SourceFile: sourceFile,
		ChunkSize:  utf8.RuneCountInString(text),
		Page:       page,
		Index:      index,
	}
}

// Texts returns the text of the first max chunks. max <= 0 returns all.
func Texts(chunks []Chunk, max int) []string {
	if max <= 0 || max > len(chunks) {
		max = len(chunks)
	}
	out := make([]string, 0, max)
	for _, c := range chunks[:max] {
		out = append(out, c.Text)
	}
	return out
}
