package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/regaudit/internal/agent"
	"github.com/ziadkadry99/regaudit/internal/regulation"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/workflow"
)

func (s *Server) handleIngest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	desc, err := request.RequireString("company_description")
	if err != nil || strings.TrimSpace(desc) == "" {
		return mcp.NewToolResultError("missing required parameter: company_description"), nil
	}

	var msg string
	s.withSession(ctx, func(ctx context.Context, sess *session.Session) {
		msg = s.orch.Ingest(ctx, sess, strings.TrimSpace(desc))
	})
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleProcess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("file_paths")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: file_paths"), nil
	}
	paths := SplitPaths(raw)

	var msg string
	s.withSession(ctx, func(ctx context.Context, sess *session.Session) {
		msg, err = s.orch.Process(ctx, sess, paths)
	})
	if err != nil {
		return mcp.NewToolResultError(workflow.Message(err)), nil
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("regulation_type")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: regulation_type"), nil
	}
	if !regulation.Known(code) {
		return mcp.NewToolResultErrorf("unknown regulation %q; choose one of: %s",
			code, strings.Join(regulation.Codes(), ", ")), nil
	}

	var res workflow.AnalyzeResult
	s.withSession(ctx, func(ctx context.Context, sess *session.Session) {
		res, err = s.orch.Analyze(ctx, sess, code)
	})
	if err != nil {
		return mcp.NewToolResultError(workflow.Message(err)), nil
	}
	return mcp.NewToolResultText(res.Message), nil
}

func (s *Server) handleReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		report string
		err    error
	)
	s.withSession(ctx, func(ctx context.Context, sess *session.Session) {
		report, err = s.orch.Report(ctx, sess)
	})
	if err != nil {
		return mcp.NewToolResultError(workflow.Message(err)), nil
	}
	return mcp.NewToolResultText(report), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var st workflow.Status
	s.withSession(ctx, func(_ context.Context, sess *session.Session) {
		st = s.orch.Status(sess)
	})
	return mcp.NewToolResultText(agent.FormatStatus(st)), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var msg string
	s.withSession(ctx, func(ctx context.Context, sess *session.Session) {
		msg = s.orch.Reset(ctx, sess)
	})
	return mcp.NewToolResultText(msg), nil
}

// SplitPaths splits a comma or newline separated list, dropping blanks.
func SplitPaths(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
