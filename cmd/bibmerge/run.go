// Copyright International Livestock Research Institute, 2026.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ilri/bibmerge/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full merge, normalize, enrich, and output pipeline",
	Long: `Run executes the whole pipeline over the source exports listed in the
config file: schema mapping, deduplication, field normalization,
external enrichment, research-type classification, and output of the
primary and combined CSV views. The enrichment request cache makes
repeat runs cheap; aborted runs keep whatever the cache holds.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("cache", "", "override the request cache path")
	runCmd.Flags().String("email", "", "contact email for external service polite pools")
	runCmd.Flags().Int("workers", 0, "enrichment worker count (default 4)")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}

	if cache, _ := cmd.Flags().GetString("cache"); cache != "" {
		cfg.Enrich.CachePath = cache
	}
	if email, _ := cmd.Flags().GetString("email"); email != "" {
		cfg.Enrich.ContactEmail = email
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Enrich.Workers = workers
	}

	return pipeline.Run(cmd.Context(), cfg, os.Stderr)
}
