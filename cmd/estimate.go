package cmd

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/regaudit/internal/llm"
	"github.com/ziadkadry99/regaudit/internal/regulation"
	"github.com/ziadkadry99/regaudit/internal/session"
)

var estimateRegulations []string

var estimateCmd = &cobra.Command{
	Use:   "estimate [paths...]",
	Short: "Estimate model costs for analyzing documents",
	Long:  `Performs a dry run that chunks the documents, builds every analysis and report prompt, and estimates tokens and API cost without calling the model.`,
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringSliceVarP(&estimateRegulations, "regulation", "r", regulation.Codes(), "regulations to include")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	codes, err := normalizeCodes(estimateRegulations)
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

	// The provider is never called during a dry run.
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}
	chunker := buildChunker(cfg, logger, nil)
	orch := buildOrchestrator(cfg, provider, chunker, logger)

	s := session.New("estimate")
	orch.Ingest(cmd.Context(), s, "")
	if _, err := orch.Process(cmd.Context(), s, paths); err != nil {
		return fmt.Errorf("chunking documents: %w", err)
	}

	estimate := orch.Estimate(s, codes)

	fmt.Println("Cost Estimate")
	fmt.Println("=============")
	fmt.Printf("  Files found:         %d\n", len(paths))
	fmt.Printf("  Files with text:     %d\n", len(s.Company.ProcessedFiles))
	fmt.Printf("  Document chunks:     %d (tokenizer: %s)\n", len(s.Documents), chunker.Tokenizer())
	fmt.Printf("  Model calls:         %d\n", estimate.Calls)
	fmt.Printf("  Input tokens:        %d\n", estimate.InputTokens)
	fmt.Printf("  Output tokens (max): %d\n", estimate.OutputTokens)
	fmt.Println()

	ops := make([]string, 0, len(estimate.CostBreakdown))
	for op := range estimate.CostBreakdown {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	fmt.Println("  Cost Breakdown:")
	for _, op := range ops {
		fmt.Printf("    %-20s $%.4f\n", op, estimate.CostBreakdown[op])
	}
	fmt.Printf("    %-20s --------\n", "")
	fmt.Printf("    %-20s $%.4f\n", "Total", estimate.EstimatedCost)
	fmt.Println()
	if !estimate.PriceKnown {
		fmt.Printf("  No price on record for %s; costs are shown as zero.\n\n", cfg.Model)
	}
	fmt.Printf("  Provider: %s\n", cfg.Provider)
	fmt.Printf("  Model:    %s\n", cfg.Model)
	return nil
}
