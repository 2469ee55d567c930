package document

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/regaudit/internal/metrics"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func prose(words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		if i > 0 {
			if i%8 == 0 {
				b.WriteString(".\n\n")
			} else {
				b.WriteByte(' ')
			}
		}
		fmt.Fprintf(&b, "word%d", i)
	}
	return b.String()
}

func writeDOCX(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	body.WriteString(`</w:body></w:document>`)
	_, err = doc.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

// writePDF writes a single-page PDF showing text in Helvetica, with a
// byte-accurate xref table.
func writePDF(t *testing.T, dir, name, text string) string {
	t.Helper()
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return writeFile(t, dir, name, b.Bytes())
}

func TestChunk_PlainTextFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "policy.txt", []byte(strings.Repeat("Data is encrypted at rest. ", 40)[:1000]))

	c := NewChunker(DefaultOptions(), nil, nil)
	chunks, processed := c.Chunk(context.Background(), []string{path})

	require.NotEmpty(t, chunks)
	assert.Equal(t, []string{"policy.txt"}, processed)
	for i, ch := range chunks {
		assert.Equal(t, "policy.txt", ch.SourceFile)
		assert.Equal(t, utf8.RuneCountInString(ch.Text), ch.ChunkSize)
		assert.Equal(t, i, ch.Index)
		assert.NotEmpty(t, strings.TrimSpace(ch.Text))
	}
	assert.Equal(t, "characters", c.Tokenizer())
}

func TestChunk_SplitsLongTextWithOverlap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "handbook.md", []byte(prose(2000)))

	chunks, _ := NewChunker(DefaultOptions(), nil, nil).Chunk(context.Background(), []string{path})

	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.ChunkSize, 300*charsPerToken)
	}
	// Consecutive chunks share their boundary words.
	last := strings.Fields(chunks[0].Text)
	assert.Contains(t, chunks[1].Text, last[len(last)-1])
}

func TestChunk_PreservesInputOrderUnderConcurrency(t *testing.T) {
	dir := t.TempDir()
	var paths, want []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("doc%02d.txt", i)
		size := 50
		if i%3 == 0 {
			size = 1500
		}
		paths = append(paths, writeFile(t, dir, name, []byte(prose(size))))
		want = append(want, name)
	}

	opts := DefaultOptions()
	opts.Concurrency = 8
	chunks, processed := NewChunker(opts, nil, nil).Chunk(context.Background(), paths)

	assert.Equal(t, want, processed)
	var seen []string
	for _, ch := range chunks {
		if len(seen) == 0 || seen[len(seen)-1] != ch.SourceFile {
			seen = append(seen, ch.SourceFile)
		}
	}
	assert.Equal(t, want, seen)
}

func TestChunk_PerFileFailuresAreSkipped(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", []byte("Access reviews happen quarterly."))
	paths := []string{
		writeFile(t, dir, "diagram.png", []byte{0x89, 'P', 'N', 'G'}),
		filepath.Join(dir, "missing.txt"),
		writeFile(t, dir, "latin1.txt", []byte{0xff, 0xfe, 0xfd}),
		writeFile(t, dir, "broken.pdf", []byte("%PDF-1.4 this is not really a pdf")),
		writeFile(t, dir, "broken.docx", []byte("not a zip")),
		writeFile(t, dir, "blank.md", []byte("  \n\n\t ")),
		good,
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var chunks []Chunk
	var processed []string
	require.NotPanics(t, func() {
		chunks, processed = NewChunker(DefaultOptions(), nil, m).Chunk(context.Background(), paths)
	})
	require.Len(t, chunks, 1)
	assert.Equal(t, "good.txt", chunks[0].SourceFile)
	assert.Equal(t, []string{"good.txt"}, processed)

	count, err := testutil.GatherAndCount(reg, "regaudit_files_processed_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count) // skipped, failed, empty, ok series
}

func TestChunk_AllUnsupportedYieldsNothing(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.csv", []byte("x,y")),
		writeFile(t, dir, "b.xlsx", []byte("PK")),
	}
	chunks, processed := NewChunker(DefaultOptions(), nil, nil).Chunk(context.Background(), paths)
	assert.Empty(t, chunks)
	assert.Empty(t, processed)
}

func TestChunk_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.txt", []byte(prose(500)))

	opts := DefaultOptions()
	opts.MaxFileBytes = 100
	chunks, _ := NewChunker(opts, nil, nil).Chunk(context.Background(), []string{path})
	assert.Empty(t, chunks)

	_, err := Load(path, 100)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestChunk_DOCX(t *testing.T) {
	dir := t.TempDir()
	path := writeDOCX(t, dir, "Privacy Notice.DOCX", "We collect email addresses.", "Data is retained for 30 days.")

	chunks, processed := NewChunker(DefaultOptions(), nil, nil).Chunk(context.Background(), []string{path})
	require.Len(t, chunks, 1)
	assert.Equal(t, "We collect email addresses.\nData is retained for 30 days.", chunks[0].Text)
	assert.Equal(t, []string{"Privacy Notice.DOCX"}, processed)
}

func TestChunk_PDF(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"policy.pdf", "Policy.PDF"} {
		path := writePDF(t, dir, name, "Access to personal data is logged")

		chunks, processed := NewChunker(DefaultOptions(), nil, nil).Chunk(context.Background(), []string{path})
		require.Len(t, chunks, 1, name)
		assert.Equal(t, "Access to personal data is logged", strings.TrimSpace(chunks[0].Text))
		assert.Equal(t, 1, chunks[0].Page)
		assert.Equal(t, 0, chunks[0].Index)
		assert.Equal(t, name, chunks[0].SourceFile)
		assert.Equal(t, []string{name}, processed)
	}
}

func TestChunk_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", []byte("text"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chunks, processed := NewChunker(DefaultOptions(), nil, nil).Chunk(ctx, []string{path, path})
	assert.Empty(t, chunks)
	assert.Empty(t, processed)
}

func TestChunk_ProgressCallback(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.txt", []byte("a")),
		writeFile(t, dir, "b.txt", []byte("b")),
		writeFile(t, dir, "c.bin", []byte("c")),
	}

	var calls int32
	c := NewChunker(DefaultOptions(), nil, nil)
	c.OnFile(func(done, total int, file string) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 3, total)
	})
	c.Chunk(context.Background(), paths)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNewChunker_UnknownEncodingFallsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Encoding = "no_such_encoding"
	assert.Equal(t, "characters", NewChunker(opts, nil, nil).Tokenizer())
}

func TestNewChunker_NormalizesOptions(t *testing.T) {
	c := NewChunker(Options{ChunkSize: 10, ChunkOverlap: 10}, nil, nil)
	assert.Equal(t, 0, c.opts.ChunkOverlap)
	assert.Equal(t, 4, c.opts.Concurrency)
}

func TestTexts(t *testing.T) {
	chunks := []Chunk{NewChunk("a", "f", 0, 0), NewChunk("b", "f", 0, 1), NewChunk("c", "f", 0, 2)}
	assert.Equal(t, []string{"a", "b"}, Texts(chunks, 2))
	assert.Equal(t, []string{"a", "b", "c"}, Texts(chunks, 0))
	assert.Equal(t, []string{"a", "b", "c"}, Texts(chunks, 10))
}

func TestNewChunk(t *testing.T) {
	c := NewChunk("héllo", "x.pdf", 3, 1)
	assert.Equal(t, 5, c.ChunkSize)
	assert.Equal(t, 3, c.Page)
}
