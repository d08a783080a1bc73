/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of Folio",
	Long:  `Displays the version of Folio.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Folio %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
