// Package walker enumerates eligible workspace files (§4.4), honoring a
// fixed set of conventionally-skipped directories plus caller-supplied
// ignore rules, and accepting only files an analyzer is registered for.
// Grounded on internal/symbols/treesitter.go's ExtractDirectory walk and
// internal/project's workspace enumeration in SimplyLiz-CodeMCP.
package walker

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// alwaysSkipDirs are directory names skipped by convention regardless of
// caller configuration: version-control metadata, build output, and
// dependency caches.
var alwaysSkipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
}

// SupportsFunc reports whether path's extension maps to a registered
// analyzer. Kept as a function type rather than importing the analyzer
// registry directly, to keep this package free of any analyzer dependency.
type SupportsFunc func(path string) bool

// Walk enumerates every eligible file under root, returning paths relative
// to root with "/" as the canonical separator, sorted for a deterministic
// order. ignoreDirs is a caller-supplied list of directory names or path
// prefixes (relative to root) to skip in addition to the always-skipped
// set and any dot-prefixed directory.
func Walk(root string, ignoreDirs []string, supports SupportsFunc) ([]string, error) {
	ignoreSet := make(map[string]bool, len(ignoreDirs))
	var ignorePrefixes []string
	for _, d := range ignoreDirs {
		d = strings.Trim(filepath.ToSlash(d), "/")
		if d == "" {
			continue
		}
		ignoreSet[d] = true
		ignorePrefixes = append(ignorePrefixes, d)
	}

	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // best-effort: skip unreadable entries rather than fail the whole walk
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if alwaysSkipDirs[name] || ignoreSet[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			for _, p := range ignorePrefixes {
				if rel == p || strings.HasPrefix(rel, p+"/") {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if supports != nil && supports(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

// MatchesIgnoredDir reports whether path falls under any of the given
// ignore prefixes (directory names or relative path prefixes), the same
// test Walk applies during enumeration. Exposed so the impact traversal can
// apply --ignore-dirs to seeds and to impacted_files (§4.7) using identical
// semantics.
func MatchesIgnoredDir(path string, ignoreDirs []string) bool {
	path = filepath.ToSlash(path)
	for _, d := range ignoreDirs {
		d = strings.Trim(filepath.ToSlash(d), "/")
		if d == "" {
			continue
		}
		if path == d || strings.HasPrefix(path, d+"/") {
			return true
		}
		// Also match a bare directory-name component anywhere in the path,
		// mirroring the always-skip-by-name behavior Walk applies during
		// enumeration (e.g. ignoring "dist" should catch "dist/generated.js"
		// found via a deeper root).
		if strings.Contains(path, "/"+d+"/") || strings.HasPrefix(path, d+"/") {
			return true
		}
	}
	return false
}
