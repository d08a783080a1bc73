/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/core/logger"
	"github.com/folio-dev/folio/core/pipeline"
	"github.com/folio-dev/folio/core/walker"
	"github.com/folio-dev/folio/core/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the portfolio whenever project files change",
	Long: `Runs an initial incremental build, then watches the project tree and
reruns the pipeline when files are created, modified, or removed. Bursts of
changes are coalesced before rebuilding.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, cfg, p, err := setupRun()
		if err != nil {
			return err
		}

		rebuild := func() error {
			files, err := walker.New(wd, cfg).Walk()
			if err != nil {
				return fmt.Errorf("failed to scan project: %w", err)
			}
			opts := pipeline.DefaultOptions()
			opts.Workers = cfg.Workers
			summary, err := p.Run(files, stageProcessor(wd, cfg, p), opts)
			if summary != nil {
				printSummary(summary)
			}
			return err
		}

		if err := rebuild(); err != nil {
			logger.Error("Initial build failed: %v", err)
		}

		w, err := watcher.New(wd, append([]string{cfg.OutputDir}, cfg.Exclude...))
		if err != nil {
			return err
		}
		w.OnChange = rebuild

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		watchErr := make(chan error, 1)
		go func() {
			watchErr <- w.Watch()
		}()

		logger.Info("Watching %s for changes (ctrl-c to stop)", wd)
		select {
		case <-ctx.Done():
			logger.Info("Shutting down watcher")
			return w.Close()
		case err := <-watchErr:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
