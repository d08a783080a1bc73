/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/core/config"
	"github.com/folio-dev/folio/core/logger"
	"github.com/folio-dev/folio/core/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A CLI tool for assembling portfolio packages from loose files.",
	Long: `Folio turns a folder of loose files (markdown, images, documents) into a
themed, previewable, exportable package. It tracks which files changed
between runs, follows inline references between them, and reprocesses only
the affected subset in dependency order.`,
}

var logfile string
var verbose bool

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}

// setupRun applies root flags and builds a pipeline for the working
// directory. Shared by every subcommand that runs the pipeline.
func setupRun() (string, *config.Config, *pipeline.Pipeline, error) {
	logger.SetVerbose(verbose)
	if logfile != "" {
		file, err := os.OpenFile(logfile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return "", nil, nil, fmt.Errorf("failed to open logfile: %w", err)
		}
		logger.AddWriter(file)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadFrom(wd)
	if err != nil {
		return "", nil, nil, err
	}
	p, err := pipeline.New(wd, cfg)
	if err != nil {
		return "", nil, nil, err
	}
	return wd, cfg, p, nil
}
