package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/tmc/langchaingo/schema"

	"github.com/ziadkadry99/regaudit/internal/walker"
)

// Metadata keys set on loaded documents.
const (
	MetaSource = "source"
	MetaPage   = "page"
)

var (
	// ErrUnsupported is returned for files whose extension has no loader.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrTooLarge is returned for files above the configured size limit.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Load extracts the text of one file as one or more documents. PDFs yield
// one document per page with text; other formats yield a single document.
// maxBytes <= 0 disables the size check.
func Load(path string, maxBytes int64) ([]schema.Document, error) {
	kind := walker.DetectKind(path)
	if kind == walker.KindUnknown {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%s (%d bytes): %w", filepath.Base(path), info.Size(), ErrTooLarge)
	}

	source := filepath.Base(path)
	switch kind {
	case walker.KindPDF:
		return loadPDF(path, source)
	case walker.KindDOCX:
		text, err := extractDOCX(path)
		if err != nil {
			return nil, err
		}
		return []schema.Document{newDoc(text, source, 0)}, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%s: not valid UTF-8 text", source)
		}
		return []schema.Document{newDoc(string(data), source, 0)}, nil
	}
}

func newDoc(text, source string, page int) schema.Document {
	meta := map[string]any{MetaSource: source}
	if page > 0 {
		meta[MetaPage] = page
	}
	return schema.Document{PageContent: text, Metadata: meta}
}
