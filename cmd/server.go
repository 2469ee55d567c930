package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/regaudit/internal/agent"
	"github.com/ziadkadry99/regaudit/internal/api"
	"github.com/ziadkadry99/regaudit/internal/audit"
	"github.com/ziadkadry99/regaudit/internal/metrics"
	"github.com/ziadkadry99/regaudit/internal/server"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/uploads"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the compliance analysis HTTP API",
	Long:  `Starts the HTTP API: file upload, ingestion, per-regulation analysis, report generation, dashboard data, the agent endpoints, the audit trail and Prometheus metrics.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serverPort > 0 {
		cfg.Server.Port = serverPort
	}

	m := metrics.New(prometheus.NewRegistry())

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}
	orch := buildOrchestrator(cfg, provider, buildChunker(cfg, logger, m), logger)
	orch.SetMetrics(m)

	index, err := buildIndex(cfg, logger)
	if err != nil {
		return err
	}
	if index != nil {
		orch.SetIndex(index)
	}

	database, store, err := openAudit(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	orch.SetRecorder(store)

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	maxUpload := int64(cfg.Server.MaxUploadMB) << 20
	files := uploads.New(cfg.Server.UploadDir, maxUpload, nil)

	executor := agent.NewExecutor(provider, agent.WorkflowTools(orch, files.Paths), cfg.Analysis.AgentMaxIterations, logger)
	executor.SetModel(cfg.Model, cfg.Analysis.MaxTokens)

	svc := &api.Service{
		Orchestrator:   orch,
		Sessions:       session.NewRegistry(),
		Uploads:        files,
		Agent:          executor,
		MaxUploadBytes: maxUpload,
		Logger:         logger,
	}

	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		AllowAll:       cfg.Server.CORSAllowAll,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second,
	}, m, logger)
	srv.Timed(func(r chi.Router) {
		api.RegisterRoutes(r, svc)
		audit.RegisterRoutes(r, store)
	})
	api.RegisterStreamRoutes(srv.Router(), svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("regaudit API ready",
		"port", cfg.Server.Port,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"search", index != nil,
		"audit_db", database.Path(),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
