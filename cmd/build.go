/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/core/config"
	"github.com/folio-dev/folio/core/models"
	"github.com/folio-dev/folio/core/pipeline"
	"github.com/folio-dev/folio/core/walker"
)

var (
	fullRebuild bool
	failFast    bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble the portfolio package from the project files",
	Long: `Scans the project, reprocesses files whose content or dependencies
changed since the last run, and stages the results into the output
directory grouped by role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, cfg, p, err := setupRun()
		if err != nil {
			return err
		}

		files, err := walker.New(wd, cfg).Walk()
		if err != nil {
			return fmt.Errorf("failed to scan project: %w", err)
		}

		spinner, _ := newSpinner().Start("Building...")
		summary, err := p.Run(files, stageProcessor(wd, cfg, p), pipeline.Options{
			Incremental:     !fullRebuild,
			ContinueOnError: !failFast,
			Workers:         cfg.Workers,
		})
		spinner.Stop()
		if err != nil {
			if summary != nil {
				printSummary(summary)
			}
			return err
		}

		printSummary(summary)
		return nil
	},
}

// stageProcessor copies each processed file into the output directory under
// its role and returns the staged path as the cacheable result.
func stageProcessor(root string, cfg *config.Config, p *pipeline.Pipeline) pipeline.ProcessFunc {
	outputDir := cfg.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	return func(path string, content []byte) (string, error) {
		role := models.RoleUnknown
		if record, exists := p.Record(path); exists && record.Role != "" {
			role = record.Role
		}

		targetDir := filepath.Join(outputDir, string(role))
		if err := os.MkdirAll(targetDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", targetDir, err)
		}
		staged := filepath.Join(targetDir, filepath.Base(path))
		if err := os.WriteFile(staged, content, 0644); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, staged)
		if err != nil {
			return staged, nil
		}
		return rel, nil
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVar(&fullRebuild, "full", false, "Ignore the cache and rebuild everything")
	buildCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Abort on the first processing failure")
}
