/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/core/logger"
	"github.com/folio-dev/folio/core/walker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the next build would do",
	Long: `Scans the project and reports which files are stale versus reusable,
the role distribution, and any constraint violations. Nothing is processed
or written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, cfg, p, err := setupRun()
		if err != nil {
			return err
		}

		files, err := walker.New(wd, cfg).Walk()
		if err != nil {
			return fmt.Errorf("failed to scan project: %w", err)
		}

		summary, err := p.Preview(files)
		if err != nil {
			return err
		}

		hits, misses := p.Store().Stats()
		fmt.Println(dimStyle.Render(fmt.Sprintf("cache: %s (%d entries, %d hits / %d misses this scan)",
			p.Store().Path(), p.Store().Len(), hits, misses)))
		fmt.Printf("%d candidates: %d stale, %d reused\n",
			summary.Candidates, summary.Stale, summary.Reused)
		if logger.IsVerbose() {
			for path, reason := range summary.Reasons {
				fmt.Println(dimStyle.Render(fmt.Sprintf("  %s: %s", path, reason)))
			}
		}
		if summary.Roles != nil {
			printRoleReport(summary.Roles)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
