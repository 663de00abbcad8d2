// Package cmd implements the CLI commands for hexovault using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/hexovault/internal/logging"
)

// Global flag variables.
var (
	flagDebug  bool
	flagConfig string
	flagColor  string
)

var rootCmd = &cobra.Command{
	Use:   "hexovault",
	Short: "hexovault turns Hexo blog pages into Markdown vault notes",
	Long: `hexovault converts the HTML pages a Hexo blog deploys into Markdown notes
with YAML frontmatter, ready to drop into a note vault. Pages can be read
from a local deploy directory or fetched from the live site.

Usage:
  hexovault convert <dir|file|url>... [flags]`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagDebug {
			logging.SetLevel("debug")
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default: .hexovault.yml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Colorize output: auto, always, never")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
