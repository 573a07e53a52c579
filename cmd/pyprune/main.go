// Package main provides the entry point for the pyprune CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pyprune/cmd/pyprune/commands"
	"github.com/Sumatoshi-tech/pyprune/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pyprune",
		Short: "pyprune - remove unused Python imports",
		Long: `pyprune scans Python source files and removes import statements
whose bound names are never referenced elsewhere in the file.

Commands:
  clean     Remove unused imports from files or directories`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewCleanCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "pyprune %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
