package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/regaudit/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize regaudit configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the model provider, embeddings and server settings, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("Using %s with model %s.\n", cfg.Provider, cfg.Model)
		fmt.Println("Next: `regaudit analyze <dir> --company \"...\"` or `regaudit server`.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
