package main

import (
	"github.com/spf13/cobra"

	"dimpact/internal/version"
)

var (
	verbosity  int
	quiet      bool
	cacheScope string
	cacheDir   string
)

var rootCmd = &cobra.Command{
	Use:   "dimpact",
	Short: "dimpact - diff-driven impact analysis",
	Long: `dimpact is a language-agnostic impact-analysis tool: it maps a unified
diff to the symbols it touches, then traverses a persisted call graph to
report what those symbols' changes might break.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate("dimpact version {{.Version}}\n")

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all but error-level logging")
	rootCmd.PersistentFlags().StringVar(&cacheScope, "scope", "", "cache scope: local or global (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "explicit cache directory, overrides scope resolution")
}
