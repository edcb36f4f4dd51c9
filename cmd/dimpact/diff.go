package main

import (
	"github.com/spf13/cobra"
)

var diffFormat string

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Parse a unified diff from stdin and emit the parsed file list",
	Long: `Reads a unified-diff text stream from stdin and emits the list of files
it touches, each with its old/new path and line-tagged changes.

Example:
  git diff | dimpact diff`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	input, err := readStdinAll()
	if err != nil {
		return err
	}

	parsed, err := parseDiffInput(input)
	if err != nil {
		return err
	}

	return writeOutput(parsed, diffFormat)
}
