package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/segeodata/deso-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "deso-cli",
	Short: "Socioeconomic index calculator for Swedish DeSO areas",
	Long:  "Fetches education, income, and unemployment statistics from SCB, computes a per-area socioeconomic index, and classifies each DeSO area into one of five area types.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
