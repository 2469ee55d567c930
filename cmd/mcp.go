package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/regaudit/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the assessment workflow (ingest, process, analyze, report, status, reset) as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		provider, err := buildProvider(cfg, logger)
		if err != nil {
			return err
		}
		orch := buildOrchestrator(cfg, provider, buildChunker(cfg, logger, nil), logger)

		database, store, err := openAudit(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		orch.SetRecorder(store)

		logger.Info("starting MCP server on stdio", "provider", cfg.Provider, "model", cfg.Model)
		return mcpserver.NewServer(orch, logger).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
