// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-contribs",
	Short: "A CLI tool to list recent contributions of allow-listed accounts to a GitHub organization.",
	Long: `github-contribs lists recent commits, pull request comments and issue
comments made by allow-listed accounts across every repository of a GitHub
organization. The allow-list is the union of the configured accounts and the
members of a reference organization.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a TOML configuration file")
}
