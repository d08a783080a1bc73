/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/folio-dev/folio/core/models"
	"github.com/folio-dev/folio/core/pipeline"
	"github.com/folio-dev/folio/core/roles"
)

const summaryElapsedPrecision = time.Millisecond

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newSpinner() *pterm.SpinnerPrinter {
	return pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithRemoveWhenDone(true)
}

func printSummary(summary *pipeline.Summary) {
	fmt.Println(successStyle.Render(fmt.Sprintf(
		"✔ %d candidates: %d processed, %d reused (%.0f%% cache hit) in %v",
		summary.Candidates, summary.Processed, summary.Reused, summary.HitRate,
		summary.Elapsed.Round(summaryElapsedPrecision))))

	if len(summary.Removed) > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  %d files no longer exist", len(summary.Removed))))
	}
	for _, targetErr := range summary.Errors {
		fmt.Println(errorStyle.Render(fmt.Sprintf("  ✘ %s: %s", targetErr.Path, targetErr.Reason)))
	}

	if summary.Roles != nil {
		printRoleReport(summary.Roles)
	}
}

func printRoleReport(report *roles.Report) {
	if len(report.Roles) > 0 {
		rows := pterm.TableData{{"Role", "Files", "Size", "Extensions"}}
		names := make([]string, 0, len(report.Roles))
		for role := range report.Roles {
			names = append(names, string(role))
		}
		sort.Strings(names)
		for _, name := range names {
			summary := report.Roles[models.Role(name)]
			rows = append(rows, []string{
				name,
				fmt.Sprintf("%d", summary.Count),
				fmt.Sprintf("%d B", summary.TotalSize),
				fmt.Sprintf("%v", summary.Extensions),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}

	for _, violation := range report.Violations {
		switch violation.Issue {
		case roles.IssueTooManyFiles:
			fmt.Println(warnStyle.Render(fmt.Sprintf(
				"  ⚠ role %q has %d files (max %d)",
				violation.Role, violation.Current, violation.Max)))
		case roles.IssueInvalidExtension:
			fmt.Println(warnStyle.Render(fmt.Sprintf(
				"  ⚠ role %q does not allow %s (%s)",
				violation.Role, violation.Extension, violation.Path)))
		}
	}
}
