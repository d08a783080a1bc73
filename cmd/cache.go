/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the build cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached results and delete the cache file",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, p, err := setupRun()
		if err != nil {
			return err
		}

		entries := p.Store().Len()
		if err := p.ClearCache(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✔ cleared %d cached entries (%s)",
			entries, p.Store().Path())))
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, p, err := setupRun()
		if err != nil {
			return err
		}

		fmt.Printf("cache file: %s\n", p.Store().Path())
		fmt.Printf("entries:    %d\n", p.Store().Len())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}
