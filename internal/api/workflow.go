package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/regaudit/internal/regulation"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/workflow"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

func handleUpload(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		if svc.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, svc.MaxUploadBytes)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if tooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("File too large. Maximum size is %dMB.", svc.MaxUploadBytes>>20))
				return
			}
			writeError(w, http.StatusBadRequest, "No files provided")
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			writeError(w, http.StatusBadRequest, "No files provided")
			return
		}

		saved := []string{}
		skipped := []string{}
		for _, fh := range headers {
			if fh.Filename == "" {
				continue
			}
			f, err := fh.Open()
			if err != nil {
				svc.logger().Warn("opening upload failed", "session", id, "file", fh.Filename, "error", err)
				skipped = append(skipped, fh.Filename)
				continue
			}
			name, err := svc.Uploads.Save(id, fh.Filename, f)
			f.Close()
			if err != nil {
				svc.logger().Info("upload rejected", "session", id, "file", fh.Filename, "error", err)
				skipped = append(skipped, fh.Filename)
				continue
			}
			saved = append(saved, name)
		}

		svc.logger().Info("files uploaded", "session", id, "saved", len(saved), "skipped", len(skipped))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"files":   saved,
			"skipped": skipped,
			"message": fmt.Sprintf("Successfully uploaded %d files", len(saved)),
		})
	}
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

type ingestionRequest struct {
	CompanyDescription string `json:"company_description"`
}

func handleSetupIngestion(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		var req ingestionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		desc := strings.TrimSpace(req.CompanyDescription)
		if desc == "" {
			writeError(w, http.StatusBadRequest, "Company description is required")
			return
		}

		var msg string
		svc.Sessions.Do(id, func(s *session.Session) error {
			msg = svc.Orchestrator.Ingest(r.Context(), s, desc)
			return nil
		})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
	}
}

func handleProcessFiles(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		var (
			msg    string
			chunks int
			files  []string
		)
		err := svc.Sessions.Do(id, func(s *session.Session) error {
			var err error
			msg, err = svc.Orchestrator.Process(r.Context(), s, svc.Uploads.Paths(id))
			chunks = s.Company.DocumentChunks
			files = s.Company.ProcessedFiles
			return err
		})
		if err != nil {
			writeStepError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"chunks":  chunks,
			"files":   nonNil(files),
			"message": msg,
		})
	}
}

// handleAnalyze runs one gap analysis. A non-empty fixed code ignores the
// URL parameter.
func handleAnalyze(svc *Service, fixed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		code := fixed
		if code == "" {
			code = chi.URLParam(r, "regulation")
		}
		code = regulation.Normalize(code)
		if !regulation.Known(code) {
			writeError(w, http.StatusBadRequest,
				"Invalid regulation type. Must be one of: "+strings.Join(regulation.Codes(), ", "))
			return
		}

		var res workflow.AnalyzeResult
		err := svc.Sessions.Do(id, func(s *session.Session) error {
			var err error
			res, err = svc.Orchestrator.Analyze(r.Context(), s, code)
			return err
		})
		if err != nil {
			writeStepError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"regulation": res.Regulation,
			"message":    res.Message,
			"strategy":   res.Strategy,
			"fallback":   res.Fallback(),
		})
	}
}

func handleGenerateReport(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		var report string
		err := svc.Sessions.Do(id, func(s *session.Session) error {
			var err error
			report, err = svc.Orchestrator.Report(r.Context(), s)
			return err
		})
		if err != nil {
			writeStepError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": report})
	}
}

func handleReset(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		var msg string
		svc.Sessions.Do(id, func(s *session.Session) error {
			msg = svc.Orchestrator.Reset(r.Context(), s)
			return nil
		})
		if err := svc.Uploads.Clear(id); err != nil {
			svc.logger().Warn("clearing uploads failed", "session", id, "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
	}
}

type statusResponse struct {
	Success          bool   `json:"success"`
	SessionID        string `json:"session_id"`
	AgentInitialized bool   `json:"agent_initialized"`
	UploadedFiles    int    `json:"uploaded_files"`
	workflow.Status
}

func handleStatus(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		var st workflow.Status
		svc.Sessions.Do(id, func(s *session.Session) error {
			st = svc.Orchestrator.Status(s)
			return nil
		})
		writeJSON(w, http.StatusOK, statusResponse{
			Success:          true,
			SessionID:        id,
			AgentInitialized: svc.Agent != nil,
			UploadedFiles:    len(svc.Uploads.Paths(id)),
			Status:           st,
		})
	}
}
