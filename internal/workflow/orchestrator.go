// Package workflow composes chunking, regulation lookup, model calls and
// response recovery into the four analysis operations: ingest, process,
// analyze and report.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ziadkadry99/regaudit/internal/audit"
	"github.com/ziadkadry99/regaudit/internal/document"
	"github.com/ziadkadry99/regaudit/internal/findings"
	"github.com/ziadkadry99/regaudit/internal/llm"
	"github.com/ziadkadry99/regaudit/internal/metrics"
	"github.com/ziadkadry99/regaudit/internal/regulation"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/vectordb"
)

// Chunker turns file paths into document chunks. *document.Chunker
// implements it.
type Chunker interface {
	Chunk(ctx context.Context, paths []string) ([]document.Chunk, []string)
}

// Recorder receives one audit entry per operation. *audit.Store
// implements it.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Options tune model calls.
type Options struct {
	Model       string
	MaxChunks   int
	MaxTokens   int
	Temperature float64
	JSONMode    bool
	// Timeout bounds each model call. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// DefaultOptions mirrors the analysis defaults of the config package.
func DefaultOptions() Options {
	return Options{
		MaxChunks:   50,
		MaxTokens:   4096,
		Temperature: 0.1,
		JSONMode:    true,
		Timeout:     2 * time.Minute,
	}
}

// Orchestrator runs workflow operations against a session. It holds no
// session state itself; callers serialize operations per session.
type Orchestrator struct {
	provider llm.Provider
	chunker  Chunker
	index    vectordb.Index
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	opts     Options
}

// New creates an Orchestrator. index, recorder and metrics are optional and
// attached with the Set methods.
func New(provider llm.Provider, chunker Chunker, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = DefaultOptions().MaxChunks
	}
	return &Orchestrator{
		provider: provider,
		chunker:  chunker,
		opts:     opts,
		logger:   logger,
	}
}

// SetIndex enables semantic search over processed chunks.
func (o *Orchestrator) SetIndex(index vectordb.Index) { o.index = index }

// SetRecorder enables the audit trail.
func (o *Orchestrator) SetRecorder(r Recorder) { o.recorder = r }

// SetMetrics enables Prometheus instrumentation.
func (o *Orchestrator) SetMetrics(m *metrics.Metrics) { o.metrics = m }

// Index returns the semantic index, or nil when search is disabled.
func (o *Orchestrator) Index() vectordb.Index { return o.index }

// Provider returns the model backend.
func (o *Orchestrator) Provider() llm.Provider { return o.provider }

// Ingest sets the company description and readies the session for files.
// It is always legal.
func (o *Orchestrator) Ingest(ctx context.Context, s *session.Session, description string) string {
	msg := s.Ingest(description)
	o.logger.Info("ingestion set up", "session", s.ID, "company", description)
	o.record(ctx, audit.Entry{
		SessionID: s.ID,
		Action:    audit.ActionIngest,
		Summary:   "Ingestion set up for " + description,
	})
	return msg
}

// Process chunks the uploaded files into the session.
func (o *Orchestrator) Process(ctx context.Context, s *session.Session, paths []string) (string, error) {
	if !s.Company.FilesReady {
		return "", o.reject(ctx, s, audit.ActionProcess, "", stepError("process", ErrNotIngested,
			"Document ingestion has not been set up. Please provide a company description first."))
	}
	if len(paths) == 0 {
		return "", o.reject(ctx, s, audit.ActionProcess, "", stepError("process", ErrNoFilesUploaded,
			"No files uploaded. Please upload files first."))
	}

	start := time.Now()
	chunks, files := o.chunker.Chunk(ctx, paths)
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("processing files: %w", err)
	}
	s.MarkProcessed(chunks, files)

	o.logger.Info("processed files",
		"session", s.ID,
		"paths", len(paths),
		"files", len(files),
		"chunks", len(chunks),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if o.index != nil {
		if err := o.index.IndexChunks(ctx, s.ID, chunks); err != nil {
			o.logger.Warn("indexing chunks for search failed", "session", s.ID, "error", err)
		}
	}

	var msg, outcome string
	if len(chunks) == 0 {
		msg = fmt.Sprintf("No usable text was extracted from %d uploaded file(s). Upload PDF, DOCX, TXT or MD documents and process again.", len(paths))
		outcome = audit.OutcomeRejected
	} else {
		msg = fmt.Sprintf("Successfully processed %d document chunks from uploaded files. Ready for compliance analysis.", len(chunks))
		outcome = audit.OutcomeOK
	}
	o.record(ctx, audit.Entry{
		SessionID: s.ID,
		Action:    audit.ActionProcess,
		Outcome:   outcome,
		Summary:   msg,
		Detail:    strings.Join(files, ", "),
	})
	return msg, nil
}

// AnalyzeResult describes one regulation analysis.
type AnalyzeResult struct {
	Regulation string            `json:"regulation"`
	Message    string            `json:"message"`
	Strategy   findings.Strategy `json:"strategy"`
	Record     findings.Record   `json:"record"`
}

// Fallback reports whether the stored record is the fallback shape.
func (r AnalyzeResult) Fallback() bool {
	return r.Record.IsFallback()
}

// Analyze runs a gap analysis for one regulation and stores the record
// under the upper-cased code. Once documents are loaded a record is always
// stored: model failures and unparseable replies yield the fallback record.
func (o *Orchestrator) Analyze(ctx context.Context, s *session.Session, code string) (AnalyzeResult, error) {
	code = regulation.Normalize(code)
	if code == "" {
		return AnalyzeResult{}, o.reject(ctx, s, audit.ActionAnalyze, "", stepError("analyze", ErrInvalidRegulation,
			"A regulation code is required. Known regulations: "+strings.Join(regulation.Codes(), ", ")))
	}
	if !s.HasDocuments() {
		o.metrics.ObserveAnalysis(code, audit.OutcomeRejected)
		return AnalyzeResult{}, o.reject(ctx, s, audit.ActionAnalyze, code, stepError("analyze", ErrNoDocuments,
			"No company documents loaded. Please upload and process files first using ingest_company_documents and process_uploaded_files."))
	}

	prompt := analysisPrompt(code, regulation.Lookup(code), document.Texts(s.Documents, o.opts.MaxChunks), s.Company.Description)
	resp, err := o.complete(ctx, "analyze", llm.CompletionRequest{
		Model:       o.opts.Model,
		Messages:    llm.Prompt(analysisSystemPrompt, prompt),
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
		JSONMode:    o.opts.JSONMode,
	})
	if err != nil {
		rec := findings.BackendFallback(code, err)
		s.SetFindings(code, rec)
		res := AnalyzeResult{
			Regulation: code,
			Message:    "Error in compliance gap analysis: " + err.Error(),
			Strategy:   findings.StrategyFallback,
			Record:     rec,
		}
		o.logger.Error("gap analysis failed", "session", s.ID, "regulation", code, "error", err)
		o.metrics.ObserveAnalysis(code, audit.OutcomeError)
		o.record(ctx, audit.Entry{
			SessionID:  s.ID,
			Action:     audit.ActionAnalyze,
			Outcome:    audit.OutcomeError,
			Regulation: code,
			Summary:    res.Message,
			Detail:     rec.Error,
		})
		return res, nil
	}

	out := findings.Recover(resp.Content, code)
	s.SetFindings(code, out.Record)
	o.metrics.ObserveRecovery(string(out.Strategy))

	res := AnalyzeResult{Regulation: code, Strategy: out.Strategy, Record: out.Record}
	outcome := audit.OutcomeOK
	if out.Fallback() {
		outcome = audit.OutcomeFallback
		res.Message = fmt.Sprintf("Completed %s analysis. Raw results could not be parsed as JSON.", code)
		o.logger.Warn("model reply was not valid JSON", "session", s.ID, "regulation", code, "reply_chars", len(resp.Content))
	} else {
		res.Message = fmt.Sprintf("Completed %s gap analysis. Found %d non-compliant issues and %d warnings.",
			code, out.Record.NonCompliantCount, out.Record.WarningsCount)
		o.logger.Info("gap analysis complete",
			"session", s.ID,
			"regulation", code,
			"strategy", out.Strategy,
			"issues", len(out.Record.Issues),
			"non_compliant", out.Record.NonCompliantCount,
		)
	}
	o.metrics.ObserveAnalysis(code, outcome)
	o.record(ctx, audit.Entry{
		SessionID:  s.ID,
		Action:     audit.ActionAnalyze,
		Outcome:    outcome,
		Regulation: code,
		Summary:    res.Message,
		Detail:     out.Record.Error,
	})
	return res, nil
}

// Report synthesizes a report from every stored record. On success the
// report is also kept as the session's LastReport.
func (o *Orchestrator) Report(ctx context.Context, s *session.Session) (string, error) {
	entries := s.Findings()
	if len(entries) == 0 {
		return "", o.reject(ctx, s, audit.ActionReport, "", stepError("report", ErrNoFindings,
			"No compliance analysis data available. Please run gap analysis for at least one regulation first."))
	}

	summary, err := FindingsSummary(entries)
	if err != nil {
		return "", fmt.Errorf("summarizing findings: %w", err)
	}

	resp, err := o.complete(ctx, "report", llm.CompletionRequest{
		Model:       o.opts.Model,
		Messages:    llm.Prompt(reportSystemPrompt, reportPrompt(s.Company.Description, s.Company.DocumentChunks, summary)),
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
	})
	if err != nil {
		o.logger.Error("report generation failed", "session", s.ID, "error", err)
		se := stepError("report", ErrBackend, "Error generating compliance report: "+err.Error())
		o.record(ctx, audit.Entry{
			SessionID: s.ID,
			Action:    audit.ActionReport,
			Outcome:   audit.OutcomeError,
			Summary:   se.Message,
		})
		return "", se
	}

	regs := s.Regulations()
	report := ReportHeader(s.Company.Description, regs, s.Company.DocumentChunks) + resp.Content
	s.LastReport = report

	o.logger.Info("report generated", "session", s.ID, "regulations", len(regs), "chars", len(report))
	o.record(ctx, audit.Entry{
		SessionID: s.ID,
		Action:    audit.ActionReport,
		Summary:   "Report generated for " + strings.Join(regs, ", "),
	})
	return report, nil
}

// Reset clears the session and anything indexed for it.
func (o *Orchestrator) Reset(ctx context.Context, s *session.Session) string {
	s.Reset()
	if o.index != nil {
		if err := o.index.DeleteSession(ctx, s.ID); err != nil {
			o.logger.Warn("dropping search index failed", "session", s.ID, "error", err)
		}
	}
	o.logger.Info("session reset", "session", s.ID)
	o.record(ctx, audit.Entry{SessionID: s.ID, Action: audit.ActionReset, Summary: "Session reset"})
	return "Session reset successfully"
}

// Status is the progress of a session through the workflow.
type Status struct {
	CompanyDescription  string   `json:"company_description"`
	FilesReady          bool     `json:"files_ready"`
	FilesProcessed      bool     `json:"files_processed"`
	ProcessedFiles      []string `json:"processed_files"`
	DocumentChunks      int      `json:"document_chunks"`
	RegulationsAnalyzed []string `json:"regulations_analyzed"`
	ReadyForReport      bool     `json:"ready_for_report"`
}

// Status summarizes the session.
func (o *Orchestrator) Status(s *session.Session) Status {
	snap := s.Snapshot()
	desc := snap.Company.Description
	if desc == "" {
		desc = "Not set"
	}
	files := snap.Company.ProcessedFiles
	if files == nil {
		files = []string{}
	}
	regs := snap.Regulations
	if regs == nil {
		regs = []string{}
	}
	return Status{
		CompanyDescription:  desc,
		FilesReady:          snap.Company.FilesReady,
		FilesProcessed:      snap.Processed,
		ProcessedFiles:      files,
		DocumentChunks:      snap.Documents,
		RegulationsAnalyzed: regs,
		ReadyForReport:      len(regs) > 0,
	}
}

// FindingsSummary renders every record as an indented JSON block under a
// "=== CODE ANALYSIS ===" heading, in analysis order.
func FindingsSummary(entries []findings.Entry) (string, error) {
	var b strings.Builder
	for _, e := range entries {
		data, err := json.MarshalIndent(e.Record, "", "  ")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n\n=== %s ANALYSIS ===\n%s", e.Code, data)
	}
	return b.String(), nil
}

// complete calls the model under the configured timeout. Panics in the
// backend are returned as errors.
func (o *Orchestrator) complete(ctx context.Context, op string, req llm.CompletionRequest) (resp *llm.CompletionResponse, err error) {
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("model backend panic: %v", r)
		}
		o.metrics.ObserveBackend(op, err, time.Since(start))
	}()

	resp, err = o.provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("model backend returned no response")
	}
	o.logger.Debug("model call complete",
		"operation", op,
		"provider", o.provider.Name(),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return resp, nil
}

func (o *Orchestrator) reject(ctx context.Context, s *session.Session, action audit.Action, code string, se *StepError) error {
	o.logger.Info("operation rejected", "session", s.ID, "operation", se.Op, "reason", se.Kind)
	o.record(ctx, audit.Entry{
		SessionID:  s.ID,
		Action:     action,
		Outcome:    audit.OutcomeRejected,
		Regulation: code,
		Summary:    se.Message,
	})
	return se
}

func (o *Orchestrator) record(ctx context.Context, e audit.Entry) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, e); err != nil {
		o.logger.Warn("writing audit entry failed", "action", e.Action, "error", err)
	}
}
