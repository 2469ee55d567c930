package mcp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/regaudit/internal/audit"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/workflow"
)

// Version is set via ldflags at build time.
var Version = "dev"

// SessionID names the single session an MCP server works on.
const SessionID = "mcp"

// Server wraps an MCP server that exposes the compliance workflow as tools.
// All tools share one session; calls are serialized.
type Server struct {
	orch    *workflow.Orchestrator
	logger  *slog.Logger
	mcp     *server.MCPServer
	mu      sync.Mutex
	session *session.Session
}

// NewServer creates a new MCP server over the given orchestrator.
func NewServer(orch *workflow.Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		orch:    orch,
		logger:  logger,
		session: session.New(SessionID),
	}

	s.mcp = server.NewMCPServer(
		"regaudit",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestTool, s.handleIngest)
	s.mcp.AddTool(processTool, s.handleProcess)
	s.mcp.AddTool(analyzeTool, s.handleAnalyze)
	s.mcp.AddTool(reportTool, s.handleReport)
	s.mcp.AddTool(statusTool, s.handleStatus)
	s.mcp.AddTool(resetTool, s.handleReset)
}

// withSession runs fn with exclusive access to the session and tags ctx
// for the audit trail.
func (s *Server) withSession(ctx context.Context, fn func(context.Context, *session.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(audit.WithActor(ctx, audit.ActorMCP), s.session)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
