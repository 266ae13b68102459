// Package main provides the entry point for the siteclone CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for siteclone.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "siteclone",
		Short: "Snapshot a website into per-page folders for offline processing",
		Long: `siteclone crawls a website breadth-first, staying on the seed's host, and
saves each page's HTML, visible text, image URLs, and CSS into its own
folder. A JSON manifest describing the run is written next to the page
folders, including when the run is interrupted.

By default pages are rendered with a headless browser so JavaScript-driven
content is captured. Use --static for plain HTTP fetching.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
