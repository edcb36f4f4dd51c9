// Package changemap implements the change mapper (§4.6): it intersects
// diff-derived changed-line sets with symbol ranges to produce the seed
// set of changed symbols. Grounded on internal/diff/symbolmap.go in the
// teacher for Go idiom; the actual algorithm here follows spec.md's
// simpler touched-files-union / changed-line-set / range-intersection
// design rather than SimplyLiz-CodeMCP's confidence-scored variant.
package changemap

import (
	"dimpact/internal/analyzer"
	"dimpact/internal/diffparser"
	"dimpact/internal/symbol"
)

// SourceLoader reads a workspace-relative path's current content. A load
// failure (the file is not on disk, e.g. it was deleted) degrades to "no
// changed symbols for this file" rather than a fatal error.
type SourceLoader func(path string) ([]byte, error)

// Result is the change mapper's output: {changed_files, changed_symbols}.
type Result struct {
	// ChangedFiles preserves original diff order and is not deduplicated;
	// downstream consumers deduplicate if required.
	ChangedFiles   []string        `json:"changed_files" yaml:"changed_files"`
	ChangedSymbols []symbol.Symbol `json:"changed_symbols" yaml:"changed_symbols"`
}

// Map runs the change-mapper algorithm over a parsed diff.
func Map(diff *diffparser.ParsedDiff, registry *analyzer.Registry, load SourceLoader) Result {
	var result Result

	for _, fd := range diff.Files {
		touched := fd.NewPath
		if touched == "" {
			touched = fd.OldPath
		}
		if touched == "" {
			continue
		}
		result.ChangedFiles = append(result.ChangedFiles, touched)

		if fd.NewPath == "" {
			// Pure deletion: nothing left on disk to analyze.
			continue
		}

		changedLines := changedLineSet(fd)
		if len(changedLines) == 0 {
			continue
		}

		source, err := load(fd.NewPath)
		if err != nil {
			continue
		}

		a := registry.New(fd.NewPath)
		if a == nil {
			continue
		}

		for _, sym := range a.SymbolsInFile(fd.NewPath, source) {
			if rangeIntersectsAny(sym.Range, changedLines) {
				result.ChangedSymbols = append(result.ChangedSymbols, sym)
			}
		}
	}

	return result
}

// changedLineSet collects the set of changed line numbers for a file diff,
// taking new_line when available, else old_line. Added, removed, and
// context lines all contribute; context lines expand the set near a
// removal so that symbols bracketing it are picked up.
func changedLineSet(fd diffparser.FileDiff) map[int]bool {
	lines := make(map[int]bool)
	for _, c := range fd.Changes {
		if c.NewLine > 0 {
			lines[c.NewLine] = true
		} else if c.OldLine > 0 {
			lines[c.OldLine] = true
		}
	}
	return lines
}

func rangeIntersectsAny(r symbol.TextRange, lines map[int]bool) bool {
	for line := range lines {
		if r.Contains(line) {
			return true
		}
	}
	return false
}
