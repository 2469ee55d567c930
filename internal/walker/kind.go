package walker

import (
	"path/filepath"
	"strings"
)

// Kind is the document format, derived from the file extension.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
	KindUnknown  Kind = ""
)

var kindByExt = map[string]Kind{
	".pdf":  KindPDF,
	".docx": KindDOCX,
	".txt":  KindText,
	".md":   KindMarkdown,
}

// DetectKind maps a file name to its document kind, case-insensitively.
func DetectKind(name string) Kind {
	return kindByExt[strings.ToLower(filepath.Ext(name))]
}

// SupportedExtensions lists the accepted extensions without the dot.
func SupportedExtensions() []string {
	return []string{"pdf", "docx", "txt", "md"}
}
