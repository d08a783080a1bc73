/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/core/pipeline"
)

var addCmd = &cobra.Command{
	Use:   "add <files...>",
	Short: "Add specific files to the portfolio package",
	Long: `Runs the pipeline over the given files only. Files already cached and
unchanged are skipped; everything else is processed and staged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, cfg, p, err := setupRun()
		if err != nil {
			return err
		}

		spinner, _ := newSpinner().Start("Adding files...")
		summary, err := p.Run(args, stageProcessor(wd, cfg, p), pipeline.DefaultOptions())
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

func init() {
	rootCmd.AddCommand(addCmd)
}
