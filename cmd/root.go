// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-approvers/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "github-approvers",
	Short: "A read-only GitHub API that ranks pull request approvers.",
	Long: `github-approvers exposes repositories, pull requests and file contents of a
GitHub user or organization, and aggregates which users approved pull requests,
how often, and across which repositories.`,
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
	rootCmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "Path to a .env file with configuration")
}
