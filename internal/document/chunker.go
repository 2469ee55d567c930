package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/ziadkadry99/regaudit/internal/metrics"
)

// charsPerToken is the estimate used when no tokenizer is available.
const charsPerToken = 4

// Options controls chunk sizing and file handling.
type Options struct {
	ChunkSize    int    // target chunk size in tokens
	ChunkOverlap int    // overlap between neighbouring chunks in tokens
	Encoding     string // tiktoken encoding name; empty selects the character estimate
	MaxFileBytes int64  // files above this are skipped; 0 disables the check
	Concurrency  int    // files loaded in parallel
}

// DefaultOptions returns 300-token chunks with a 50-token overlap.
func DefaultOptions() Options {
	return Options{
		ChunkSize:    300,
		ChunkOverlap: 50,
		MaxFileBytes: 50 << 20,
		Concurrency:  4,
	}
}

// ProgressFunc is called after each file finishes loading.
type ProgressFunc func(done, total int, file string)

// Chunker turns document files into ordered, overlapping text chunks.
type Chunker struct {
	opts      Options
	splitter  textsplitter.TextSplitter
	tokenizer string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	onFile    ProgressFunc
}

// NewChunker builds a chunker. When opts.Encoding names a tiktoken encoding
// that can be loaded, chunk boundaries are measured in real tokens;
// otherwise a recursive character splitter sized at four characters per
// token is used.
func NewChunker(opts Options, logger *slog.Logger, m *metrics.Metrics) *Chunker {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 0
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}

	c := &Chunker{opts: opts, logger: logger, metrics: m}

	if opts.Encoding != "" {
		ts := textsplitter.NewTokenSplitter(
			textsplitter.WithChunkSize(opts.ChunkSize),
			textsplitter.WithChunkOverlap(opts.ChunkOverlap),
			textsplitter.WithEncodingName(opts.Encoding),
		)
		_, err := ts.SplitText("probe")
		if err == nil {
			c.splitter = ts
			c.tokenizer = "tiktoken:" + opts.Encoding
			return c
		}
		logger.Warn("tokenizer unavailable, using character estimate", "encoding", opts.Encoding, "error", err)
	}

	c.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(opts.ChunkSize*charsPerToken),
		textsplitter.WithChunkOverlap(opts.ChunkOverlap*charsPerToken),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
	)
	c.tokenizer = "characters"
	return c
}

// Tokenizer names the active length measure: "tiktoken:<encoding>" or "characters".
func (c *Chunker) Tokenizer() string {
	return c.tokenizer
}

// OnFile registers a progress callback.
func (c *Chunker) OnFile(fn ProgressFunc) {
	c.onFile = fn
}

type fileResult struct {
	chunks []Chunk
	err    error
}

// Chunk loads and splits every path. Files that cannot be read, are too
// large, have an unsupported extension or fail to decode are logged and
// skipped. The returned chunks follow input order, and processedFiles lists
// the base names of files that produced at least one chunk.
func (c *Chunker) Chunk(ctx context.Context, paths []string) (chunks []Chunk, processedFiles []string) {
	results := make([]fileResult, len(paths))
	sem := make(chan struct{}, c.opts.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			results[i].err = err
			continue
		}
		select {
		case <-ctx.Done():
			results[i].err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = c.chunkFile(path)

			if c.onFile != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				c.onFile(n, len(paths), filepath.Base(path))
			}
		}(i, path)
	}
	wg.Wait()

	for i, res := range results {
		name := filepath.Base(paths[i])
		switch {
		case errors.Is(res.err, ErrUnsupported):
			c.logger.Info("skipping unsupported file", "file", name)
			c.metrics.ObserveFile("skipped")
		case res.err != nil:
			c.logger.Warn("failed to process file", "file", name, "error", res.err)
			c.metrics.ObserveFile("failed")
		case len(res.chunks) == 0:
			c.logger.Info("file produced no text", "file", name)
			c.metrics.ObserveFile("empty")
		default:
			c.logger.Debug("processed file", "file", name, "chunks", len(res.chunks))
			c.metrics.ObserveFile("ok")
			chunks = append(chunks, res.chunks...)
			processedFiles = append(processedFiles, name)
		}
	}
	c.metrics.AddChunks(len(chunks))

	return chunks, processedFiles
}

func (c *Chunker) chunkFile(path string) (res fileResult) {
	defer func() {
		if r := recover(); r != nil {
			res = fileResult{err: fmt.Errorf("panic while chunking: %v", r)}
		}
	}()

	docs, err := Load(path, c.opts.MaxFileBytes)
	if err != nil {
		return fileResult{err: err}
	}
	split, err := textsplitter.SplitDocuments(c.splitter, docs)
	if err != nil {
		return fileResult{err: fmt.Errorf("split: %w", err)}
	}
	return fileResult{chunks: toChunks(filepath.Base(path), split)}
}

func toChunks(source string, docs []schema.Document) []Chunk {
	out := make([]Chunk, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.PageContent) == "" {
			continue
		}
		page, _ := d.Metadata[MetaPage].(int)
		out = append(out, NewChunk(d.PageContent, source, page, len(out)))
	}
	return out
}
