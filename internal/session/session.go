// Package session holds the in-memory state of one compliance analysis:
// company context, processed document chunks and per-regulation findings.
package session

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/regaudit/internal/document"
	"github.com/ziadkadry99/regaudit/internal/findings"
)

// CompanyContext describes the subject of the analysis. Each field is set
// wholesale, never merged.
type CompanyContext struct {
	Description    string   `json:"description"`
	FilesReady     bool     `json:"files_ready"`
	DocumentChunks int      `json:"document_chunks"`
	ProcessedFiles []string `json:"processed_files"`
}

// Session is the aggregate root of one analysis. It is not safe for
// concurrent use; callers serialize access, see Registry.
//
// Processed implies len(Documents) == Company.DocumentChunks.
type Session struct {
	ID         string
	Company    CompanyContext
	Documents  []document.Chunk
	Processed  bool
	LastReport string

	order    []string
	findings map[string]findings.Record
}

// New returns an empty session.
func New(id string) *Session {
	return &Session{ID: id}
}

// Ingest starts an analysis for a company. Prior documents are dropped and
// the session waits for files; findings from an earlier company are kept.
func (s *Session) Ingest(description string) string {
	s.Company.Description = description
	s.Company.FilesReady = true
	s.Documents = nil
	s.Processed = false

	return fmt.Sprintf(`Document ingestion ready for company: %s

Next steps:
1. Upload compliance documents (PDF, DOCX, TXT, MD)
2. Process the uploaded files
3. Run a gap analysis for each regulation of interest
4. Generate the compliance report

Documents are held in memory for this session only.`, description)
}

// MarkProcessed stores the chunker output. The session only counts as
// processed when at least one chunk was produced.
func (s *Session) MarkProcessed(chunks []document.Chunk, files []string) {
	s.Documents = chunks
	s.Company.DocumentChunks = len(chunks)
	s.Company.ProcessedFiles = files
	s.Processed = len(chunks) > 0
}

// HasDocuments reports whether analysis can run.
func (s *Session) HasDocuments() bool {
	return s.Processed && len(s.Documents) > 0
}

// SetFindings stores record under the upper-cased code. Re-analysis
// overwrites in place and keeps the original position.
func (s *Session) SetFindings(code string, record findings.Record) {
	key := strings.ToUpper(strings.TrimSpace(code))
	if s.findings == nil {
		s.findings = make(map[string]findings.Record)
	}
	if _, ok := s.findings[key]; !ok {
		s.order = append(s.order, key)
	}
	s.findings[key] = record
}

// Finding returns the record stored for code.
func (s *Session) Finding(code string) (findings.Record, bool) {
	r, ok := s.findings[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Findings returns every record in analysis order.
func (s *Session) Findings() []findings.Entry {
	out := make([]findings.Entry, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, findings.Entry{Code: code, Record: s.findings[code]})
	}
	return out
}

// Regulations lists analyzed codes in analysis order.
func (s *Session) Regulations() []string {
	return append([]string(nil), s.order...)
}

// Reset returns the session to its just-created state.
func (s *Session) Reset() {
	*s = Session{ID: s.ID}
}

// Snapshot is a read-only copy of a session for status reporting.
type Snapshot struct {
	ID          string           `json:"session_id"`
	Company     CompanyContext   `json:"company_context"`
	Processed   bool             `json:"processed"`
	Documents   int              `json:"documents"`
	Regulations []string         `json:"regulations_analyzed"`
	Findings    []findings.Entry `json:"-"`
	HasReport   bool             `json:"has_report"`
}

// Snapshot copies the session's observable state.
func (s *Session) Snapshot() Snapshot {
	company := s.Company
	company.ProcessedFiles = append([]string(nil), s.Company.ProcessedFiles...)
	return Snapshot{
		ID:          s.ID,
		Company:     company,
		Processed:   s.Processed,
		Documents:   len(s.Documents),
		Regulations: s.Regulations(),
		Findings:    s.Findings(),
		HasReport:   s.LastReport != "",
	}
}
