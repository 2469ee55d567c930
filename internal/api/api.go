// Package api exposes the compliance workflow over HTTP.
//
// Every response is a JSON object with a boolean "success" field. Requests
// name their session in the X-Session-ID header (or the session_id query
// parameter); requests without one share the default session.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/regaudit/internal/agent"
	"github.com/ziadkadry99/regaudit/internal/audit"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/uploads"
	"github.com/ziadkadry99/regaudit/internal/workflow"
)

// SessionHeader carries the session id on requests and responses.
const SessionHeader = "X-Session-ID"

// Service bundles what the handlers need.
type Service struct {
	Orchestrator *workflow.Orchestrator
	Sessions     *session.Registry
	Uploads      *uploads.Store
	// Agent is optional; /agent routes answer 503 without it.
	Agent *agent.Executor
	// MaxUploadBytes bounds a whole /upload request; 0 disables the check.
	MaxUploadBytes int64
	Logger         *slog.Logger
	// Now is used for dates in the project overview.
	Now func() time.Time
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// RegisterRoutes mounts the workflow and dashboard endpoints.
func RegisterRoutes(r chi.Router, svc *Service) {
	r = r.With(actor(audit.ActorUser))

	r.Get("/health", handleHealth(svc))
	r.Get("/available_regulations", handleRegulations())

	r.Post("/sessions", handleNewSession(svc))
	r.Get("/sessions", handleListSessions(svc))

	r.Post("/upload", handleUpload(svc))
	r.Post("/setup_ingestion", handleSetupIngestion(svc))
	r.Post("/process_files", handleProcessFiles(svc))
	r.Post("/analyze/{regulation}", handleAnalyze(svc, ""))
	r.Post("/analyze_gdpr", handleAnalyze(svc, "GDPR"))
	r.Post("/generate_report", handleGenerateReport(svc))
	r.Post("/reset", handleReset(svc))
	r.Get("/status", handleStatus(svc))

	r.Get("/compliance_summary", handleComplianceSummary(svc))
	r.Get("/risk_analysis", handleRiskAnalysis(svc))
	r.Get("/project_overview", handleProjectOverview(svc))
	r.Get("/compliance_issues", handleComplianceIssues(svc))
	r.Get("/uploaded_files", handleUploadedFiles(svc))
	r.Get("/findings", handleFindings(svc))
	r.Get("/report.html", handleReportHTML(svc))
	r.Get("/search", handleSearch(svc))

	r.Post("/agent", handleAgent(svc))
}

// RegisterStreamRoutes mounts long-lived endpoints. They belong on a router
// without a request timeout.
func RegisterStreamRoutes(r chi.Router, svc *Service) {
	r = r.With(actor(audit.ActorUser))

	r.Get("/agent/ws", handleAgentWS(svc))
}

// actor tags request contexts so audit entries name who acted.
func actor(a audit.ActorType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(audit.WithActor(r.Context(), a)))
		})
	}
}

// sessionID reads the caller's session id and echoes it on the response.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = r.URL.Query().Get("session_id")
	}
	id = session.NormalizeID(id)
	w.Header().Set(SessionHeader, id)
	return id
}

// statusFor maps a workflow error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrInvalidRegulation):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrNotIngested),
		errors.Is(err, workflow.ErrNoFilesUploaded),
		errors.Is(err, workflow.ErrNoDocuments),
		errors.Is(err, workflow.ErrNoFindings):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrBackend):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeStepError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), workflow.Message(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func handleHealth(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":            "healthy",
			"service":           "regaudit compliance API",
			"agent_initialized": svc.Agent != nil,
			"search_enabled":    svc.Orchestrator.Index() != nil,
			"sessions":          len(svc.Sessions.IDs()),
		})
	}
}

func handleNewSession(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := svc.Sessions.New()
		w.Header().Set(SessionHeader, id)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "session_id": id})
	}
}

func handleListSessions(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "sessions": svc.Sessions.IDs()})
	}
}
