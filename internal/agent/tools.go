package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/regaudit/internal/regulation"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/vectordb"
	"github.com/ziadkadry99/regaudit/internal/workflow"
)

// Tool names exposed to the model.
const (
	ToolIngest  = "ingest_company_documents"
	ToolProcess = "process_uploaded_files"
	ToolAnalyze = "compliance_gap_analysis"
	ToolReport  = "generate_compliance_report"
	ToolStatus  = "get_compliance_status"
	ToolSearch  = "search_company_documents"
)

// FileSource lists the files uploaded for a session.
type FileSource func(sessionID string) []string

// WorkflowTools exposes the orchestrator's operations as agent tools. The
// search tool is included only when the orchestrator has an index.
func WorkflowTools(o *workflow.Orchestrator, files FileSource) []Tool {
	tools := []Tool{
		{
			Name:        ToolIngest,
			Description: "Set up document ingestion. Input: a description of the company and its business.",
			Run: func(ctx context.Context, s *session.Session, input string) (string, error) {
				if input == "" {
					return "", fmt.Errorf("company description is required")
				}
				return o.Ingest(ctx, s, input), nil
			},
		},
		{
			Name:        ToolProcess,
			Description: "Process the uploaded company documents into chunks. Input: empty.",
			Run: func(ctx context.Context, s *session.Session, _ string) (string, error) {
				var paths []string
				if files != nil {
					paths = files(s.ID)
				}
				return o.Process(ctx, s, paths)
			},
		},
		{
			Name: ToolAnalyze,
			Description: "Analyze the processed documents against one regulation. Input: a regulation code, one of " +
				strings.Join(regulation.Codes(), ", ") + ".",
			Run: func(ctx context.Context, s *session.Session, input string) (string, error) {
				res, err := o.Analyze(ctx, s, input)
				if err != nil {
					return "", err
				}
				return res.Message, nil
			},
		},
		{
			Name:         ToolReport,
			Description:  "Generate the compliance assessment report from all analyses. Input: empty.",
			ReturnDirect: true,
			Run: func(ctx context.Context, s *session.Session, _ string) (string, error) {
				return o.Report(ctx, s)
			},
		},
		{
			Name:        ToolStatus,
			Description: "Show progress of the current analysis. Input: empty.",
			Run: func(_ context.Context, s *session.Session, _ string) (string, error) {
				return FormatStatus(o.Status(s)), nil
			},
		},
	}

	if idx := o.Index(); idx != nil {
		tools = append(tools, Tool{
			Name:        ToolSearch,
			Description: "Find passages in the processed documents related to a topic. Input: search text.",
			Run: func(ctx context.Context, s *session.Session, input string) (string, error) {
				results, err := idx.Search(ctx, s.ID, input, vectordb.DefaultSearchLimit)
				if err != nil {
					return "", err
				}
				return vectordb.FormatResults(results), nil
			},
		})
	}
	return tools
}

// FormatStatus renders a status as the plain-text block shown to users.
func FormatStatus(st workflow.Status) string {
	ready := "No"
	if st.ReadyForReport {
		ready = "Yes"
	}
	regs := "none"
	if len(st.RegulationsAnalyzed) > 0 {
		regs = strings.Join(st.RegulationsAnalyzed, ", ")
	}
	return fmt.Sprintf("=== COMPLIANCE ANALYSIS STATUS ===\nCompany Description: %s\nFiles Processed: %t\nDocument Chunks: %d\nRegulations Analyzed: %s\nReady for Report: %s",
		st.CompanyDescription, st.FilesProcessed, st.DocumentChunks, regs, ready)
}
