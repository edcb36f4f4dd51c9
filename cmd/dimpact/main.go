package main

import (
	"fmt"
	"os"

	"dimpact/internal/dimpacterr"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a dimpacterr kind to a process exit code. Every non-nil
// error reaching here is fatal to the command that produced it; the kind
// only changes the code, not whether the process exits non-zero.
func exitCodeFor(err error) int {
	kind, ok := dimpacterr.Code(err)
	if !ok {
		return 1
	}
	switch kind {
	case dimpacterr.KindInputFormat:
		return 2
	case dimpacterr.KindIO:
		return 3
	case dimpacterr.KindSchemaMismatch:
		return 4
	default:
		return 1
	}
}
