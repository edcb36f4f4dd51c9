package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dimpact/internal/changemap"
)

var (
	changedFormat   string
	changedLanguage string
)

var changedCmd = &cobra.Command{
	Use:   "changed",
	Short: "Parse a unified diff from stdin and emit changed symbols",
	Long: `Reads a unified-diff text stream from stdin, intersects its changed-line
sets with symbol ranges in the current working tree, and emits
{changed_files, changed_symbols}.

Example:
  git diff | dimpact changed`,
	Args: cobra.NoArgs,
	RunE: runChanged,
}

func init() {
	changedCmd.Flags().StringVar(&changedFormat, "format", "json", "output format: json or yaml")
	changedCmd.Flags().StringVar(&changedLanguage, "language", "", "force a single analyzer for every path")
	rootCmd.AddCommand(changedCmd)
}

func runChanged(cmd *cobra.Command, args []string) error {
	input, err := readStdinAll()
	if err != nil {
		return err
	}

	parsed, err := parseDiffInput(input)
	if err != nil {
		return err
	}

	repoRoot := mustGetRepoRoot()
	reg := buildRegistry(changedLanguage)

	load := func(path string) ([]byte, error) {
		return os.ReadFile(filepath.Join(repoRoot, path))
	}

	result := changemap.Map(parsed, reg, load)
	return writeOutput(result, changedFormat)
}
