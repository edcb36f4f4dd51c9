// Package diffparser consumes a unified-diff text stream (§6.2), wrapping
// github.com/sourcegraph/go-diff/diff. Grounded on internal/diff/gitdiff.go
// in SimplyLiz-CodeMCP: hunk body walking, a/ b/ prefix stripping, /dev/null
// detection — generalized to the plain {old_path?, new_path?, changes}
// record shape §6.2 specifies rather than SimplyLiz-CodeMCP's richer
// ChangedFile/ChangedHunk/impact-specific structures.
package diffparser

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"dimpact/internal/dimpacterr"
)

// ChangeKind classifies one line within a hunk body.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeContext ChangeKind = "context"
)

// LineChange is one line-tagged change within a file diff.
type LineChange struct {
	Kind    ChangeKind `json:"kind" yaml:"kind"`
	OldLine int        `json:"old_line,omitempty" yaml:"old_line,omitempty"` // 0 when not applicable (e.g. a pure addition)
	NewLine int        `json:"new_line,omitempty" yaml:"new_line,omitempty"` // 0 when not applicable (e.g. a pure removal)
	Content string     `json:"content" yaml:"content"`
}

// FileDiff is one file's parsed diff record. OldPath/NewPath are empty when
// not applicable (a pure addition has no OldPath; a pure deletion has no
// NewPath).
type FileDiff struct {
	OldPath string       `json:"old_path,omitempty" yaml:"old_path,omitempty"`
	NewPath string       `json:"new_path,omitempty" yaml:"new_path,omitempty"`
	Changes []LineChange `json:"changes" yaml:"changes"`
}

// ParsedDiff is the full parse of a unified-diff stream: the ordered list
// of per-file diff records.
type ParsedDiff struct {
	Files []FileDiff `json:"files" yaml:"files"`
}

// Parse parses a unified-diff text stream. An empty input is reported as a
// dimpacterr with code KindInputFormat and hint "missing-header"; the
// caller treats that specific case as an empty change set rather than a
// fatal error (§6.2).
func Parse(diffContent string) (*ParsedDiff, error) {
	if strings.TrimSpace(diffContent) == "" {
		return &ParsedDiff{}, dimpacterr.New(dimpacterr.KindInputFormat, "empty diff input").WithHint("missing-header")
	}

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(diffContent))
	if err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindInputFormat, err, fmt.Sprintf("failed to parse diff: %v", err))
	}

	result := &ParsedDiff{Files: make([]FileDiff, 0, len(fileDiffs))}
	for _, fd := range fileDiffs {
		result.Files = append(result.Files, parseFileDiff(fd))
	}
	return result, nil
}

func parseFileDiff(fd *godiff.FileDiff) FileDiff {
	out := FileDiff{
		OldPath: cleanPath(fd.OrigName),
		NewPath: cleanPath(fd.NewName),
	}
	if fd.OrigName == "/dev/null" || fd.OrigName == "" {
		out.OldPath = ""
	}
	if fd.NewName == "/dev/null" || fd.NewName == "" {
		out.NewPath = ""
	}

	for _, hunk := range fd.Hunks {
		out.Changes = append(out.Changes, parseHunk(hunk)...)
	}
	return out
}

// parseHunk walks a hunk body line by line, classifying +/-/space/backslash
// prefixes and tracking old/new line counters. An empty body line (a blank
// context line) advances both counters, exactly as SimplyLiz-CodeMCP's
// gitdiff.go treats it.
func parseHunk(hunk *godiff.Hunk) []LineChange {
	var out []LineChange

	oldLine := int(hunk.OrigStartLine)
	newLine := int(hunk.NewStartLine)

	for _, line := range strings.Split(strings.TrimSuffix(string(hunk.Body), "\n"), "\n") {
		if len(line) == 0 {
			out = append(out, LineChange{Kind: ChangeContext, OldLine: oldLine, NewLine: newLine})
			oldLine++
			newLine++
			continue
		}

		switch line[0] {
		case '+':
			out = append(out, LineChange{Kind: ChangeAdded, NewLine: newLine, Content: line[1:]})
			newLine++
		case '-':
			out = append(out, LineChange{Kind: ChangeRemoved, OldLine: oldLine, Content: line[1:]})
			oldLine++
		case ' ':
			out = append(out, LineChange{Kind: ChangeContext, OldLine: oldLine, NewLine: newLine, Content: line[1:]})
			oldLine++
			newLine++
		case '\\':
			// "\ No newline at end of file" — not a content line.
		}
	}

	return out
}

func cleanPath(path string) string {
	if path == "" || path == "/dev/null" {
		return path
	}
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}
