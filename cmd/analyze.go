package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/regaudit/internal/audit"
	"github.com/ziadkadry99/regaudit/internal/config"
	"github.com/ziadkadry99/regaudit/internal/findings"
	"github.com/ziadkadry99/regaudit/internal/progress"
	"github.com/ziadkadry99/regaudit/internal/regulation"
	"github.com/ziadkadry99/regaudit/internal/report"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/walker"
	"github.com/ziadkadry99/regaudit/internal/workflow"
)

var (
	analyzeCompany     string
	analyzeRegulations []string
	analyzeOut         string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Run a full gap analysis on local documents",
	Long: `Chunks the given files and directories, analyzes them against each
requested regulation, writes the assessment report and exits. Directories are
walked with the include/exclude patterns of the config file.`,
	Example: `  regaudit analyze ./policies --company "Acme Health, a telemedicine startup" -r HIPAA -r GDPR`,
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "company description (required)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeRegulations, "regulation", "r", []string{"GDPR"}, "regulations to analyze: "+strings.Join(regulation.Codes(), ", "))
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "regaudit-report", "output directory")
	_ = analyzeCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	ctx := audit.WithActor(cmd.Context(), audit.ActorCLI)

	codes, err := normalizeCodes(analyzeRegulations)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths, err := collectPaths(cfg, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("No documents found to analyze.")
		return nil
	}

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}
	chunker := buildChunker(cfg, logger, nil)
	orch := buildOrchestrator(cfg, provider, chunker, logger)

	database, store, err := openAudit(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	orch.SetRecorder(store)

	s := session.New("cli")
	fmt.Println(orch.Ingest(ctx, s, analyzeCompany))

	files := progress.NewReporter("Chunking")
	files.Start(len(paths))
	chunker.OnFile(func(done, total int, file string) {
		files.Update(done, file)
	})
	msg, err := orch.Process(ctx, s, paths)
	files.Finish()
	if err != nil {
		return errors.New(workflow.Message(err))
	}
	fmt.Println(msg)
	if !s.HasDocuments() {
		return nil
	}

	steps := progress.NewReporter("Analyzing")
	steps.Start(len(codes))
	for i, code := range codes {
		steps.Update(i, code)
		res, err := orch.Analyze(ctx, s, code)
		if err != nil {
			steps.Finish()
			return errors.New(workflow.Message(err))
		}
		if res.Fallback() {
			logger.Warn("analysis fell back to an empty record", "regulation", code)
		}
	}
	steps.Update(len(codes), "done")
	steps.Finish()

	text, err := orch.Report(ctx, s)
	if err != nil {
		return errors.New(workflow.Message(err))
	}

	if err := writeOutputs(analyzeOut, s, text); err != nil {
		return err
	}

	snap := s.Snapshot()
	totals := findings.Aggregate(snap.Findings)
	fmt.Println()
	fmt.Println("Assessment Complete")
	fmt.Println("===================")
	fmt.Printf("  Documents:    %d files, %d chunks\n", len(snap.Company.ProcessedFiles), snap.Documents)
	fmt.Printf("  Regulations:  %s\n", strings.Join(snap.Regulations, ", "))
	fmt.Printf("  Requirements: %d checked, %d compliant, %d warnings, %d failures\n",
		totals.RulesChecked, totals.Passed, totals.Warnings, totals.Failures)
	fmt.Printf("  Issues:       %d\n", totals.TotalIssues)
	fmt.Printf("  Output:       %s\n", analyzeOut)
	return nil
}

// normalizeCodes validates regulation flags and drops duplicates.
func normalizeCodes(raw []string) ([]string, error) {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range raw {
		code := regulation.Normalize(r)
		if code == "" {
			continue
		}
		if !regulation.Known(code) {
			return nil, fmt.Errorf("invalid regulation type %q: must be one of %s", r, strings.Join(regulation.Codes(), ", "))
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, errors.New("at least one regulation is required")
	}
	return codes, nil
}

func collectPaths(cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	paths, err := walker.Expand(args, walker.WalkerConfig{
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("collecting documents: %w", err)
	}
	return paths, nil
}

// writeOutputs writes report.md, report.html and findings.json to dir.
func writeOutputs(dir string, s *session.Session, text string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	page, err := report.Page("Compliance Assessment Report - "+s.Company.Description, text)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.html"), page, 0o644); err != nil {
		return fmt.Errorf("writing report page: %w", err)
	}

	records, _ := findings.ByCode(s.Findings())
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding findings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "findings.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing findings: %w", err)
	}
	return nil
}
