package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ziadkadry99/regaudit/internal/findings"
	"github.com/ziadkadry99/regaudit/internal/regulation"
	"github.com/ziadkadry99/regaudit/internal/report"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/vectordb"
)

// scannedBy is the analyst label shown on the project overview.
const scannedBy = "ComplianceAI Agent #C-4321"

// snapshot copies what the read-only views need out of the session.
func snapshot(svc *Service, id string) (session.Snapshot, []findings.Entry) {
	var snap session.Snapshot
	svc.Sessions.Do(id, func(s *session.Session) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, snap.Findings
}

func handleRegulations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "regulations": regulation.List()})
	}
}

func handleComplianceSummary(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entries := snapshot(svc, sessionID(w, r))
		t := findings.Aggregate(entries)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"summary": map[string]int{
				"rules_checked": t.RulesChecked,
				"passed":        t.Passed,
				"warnings":      t.Warnings,
				"failures":      t.Failures,
			},
			"severity_data": t.Severity,
			"total_issues":  t.TotalIssues,
		})
	}
}

func handleRiskAnalysis(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entries := snapshot(svc, sessionID(w, r))
		risks := findings.Risks(entries)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"risks":        risks,
			"total_issues": len(risks),
		})
	}
}

func handleProjectOverview(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, entries := snapshot(svc, sessionID(w, r))
		now := svc.now()
		name := snap.Company.Description
		if name == "" {
			name = "Unknown Project"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"overview": map[string]any{
				"project_name":        name,
				"project_id":          "PRJ-" + now.Format("20060102"),
				"analysis_date":       now.Format("January 02, 2006"),
				"scanned_by":          scannedBy,
				"documents_evaluated": strings.Join(snap.Company.ProcessedFiles, ", "),
				"compliance_status":   findings.OverallStatus(entries),
				"key_regulations":     nonNil(snap.Regulations),
			},
		})
	}
}

func handleComplianceIssues(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entries := snapshot(svc, sessionID(w, r))
		list := findings.FlattenIssues(entries)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":             true,
			"issues":              list.Issues,
			"total_requirements":  list.TotalRequirements,
			"compliant_count":     list.CompliantCount,
			"non_compliant_count": list.NonCompliantCount,
		})
	}
}

func handleUploadedFiles(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		snap, _ := snapshot(svc, id)
		files := svc.Uploads.List(id, snap.Processed)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"files":       files,
			"total_files": len(files),
		})
	}
}

// handleFindings returns regulation code -> record, with the analysis order
// in regulations.
func handleFindings(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entries := snapshot(svc, sessionID(w, r))
		records, order := findings.ByCode(entries)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"findings":    records,
			"regulations": order,
		})
	}
}

func handleReportHTML(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		var text, company string
		svc.Sessions.Do(id, func(s *session.Session) error {
			text = s.LastReport
			company = s.Company.Description
			return nil
		})
		if text == "" {
			writeError(w, http.StatusNotFound, "No report generated yet. Generate a compliance report first.")
			return
		}

		title := "Compliance Assessment Report"
		if company != "" {
			title += " - " + company
		}
		page, err := report.Page(title, text)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(page)
	}
}

func handleSearch(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		idx := svc.Orchestrator.Index()
		if idx == nil {
			writeError(w, http.StatusServiceUnavailable, "Semantic search is not enabled. Configure an embedding provider.")
			return
		}
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
			return
		}
		limit := vectordb.DefaultSearchLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		results, err := idx.Search(r.Context(), id, q, limit)
		if err != nil {
			svc.logger().Error("search failed", "session", id, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if results == nil {
			results = []vectordb.SearchResult{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "query": q, "results": results})
	}
}
