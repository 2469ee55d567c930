package document

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/tmc/langchaingo/schema"
)

// loadPDF extracts plain text page by page. Pages without text are dropped.
// The pdf reader panics on some malformed inputs, so the panic is turned
// into a per-file error.
func loadPDF(path, source string) (docs []schema.Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("%s: corrupt pdf: %v", source, r)
		}
	}()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: open pdf: %w", source, err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}
		docs = append(docs, newDoc(text, source, i))
	}
	return docs, nil
}
