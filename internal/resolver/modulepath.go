package resolver

import "strings"

// moduleRootStems are the ecosystem-conventional module-root file stems: a
// file named one of these contributes its parent directory as the module
// path instead of itself (§4.3.1), the way mod.rs/lib.rs/main.rs, index.*,
// or Python's __init__.py do for their respective ecosystems.
var moduleRootStems = []string{"mod", "lib", "main", "index", "__init__"}

func isModuleRootStem(stem string) bool {
	for _, s := range moduleRootStems {
		if stem == s {
			return true
		}
	}
	return false
}

// stripExt removes a file's final extension, leaving any directory
// components untouched. A dotfile with no other extension (".gitignore")
// is left alone.
func stripExt(path string) string {
	slash := strings.LastIndexByte(path, '/')
	base := path
	if slash >= 0 {
		base = path[slash+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return path
	}
	return path[:len(path)-(len(base)-dot)]
}

// ModulePath derives a file's module path by convention (§4.3.1): the
// extension is stripped, directory separators already use the canonical
// "/" separator (per §4.4's walker output), and a module-root stem
// contributes its parent directory instead of itself.
func ModulePath(relPath string) string {
	stripped := stripExt(relPath)
	if stripped == "" {
		return ""
	}
	parts := strings.Split(stripped, "/")
	last := parts[len(parts)-1]
	if isModuleRootStem(last) {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "/")
}

// FileMatchesModule implements the file-matches-module test (§4.3.2): with
// its extension stripped, file must terminate in either modulePath or
// modulePath/<stem> for some module-root stem. Returns false for an empty
// modulePath.
func FileMatchesModule(file, modulePath string) bool {
	if modulePath == "" {
		return false
	}
	stripped := stripExt(file)

	if stripped == modulePath || strings.HasSuffix(stripped, "/"+modulePath) {
		return true
	}
	for _, stem := range moduleRootStems {
		suffix := modulePath + "/" + stem
		if stripped == suffix || strings.HasSuffix(stripped, "/"+suffix) {
			return true
		}
	}
	return false
}

// dirOf returns the directory component of path, or "" if path has none.
func dirOf(path string) string {
	slash := strings.LastIndexByte(path, '/')
	if slash < 0 {
		return ""
	}
	return path[:slash]
}

// foldSeparators folds "::" and "." into the canonical "/" separator and
// splits the result into segments. An empty input yields a nil slice.
func foldSeparators(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "::", "/")
	s = strings.ReplaceAll(s, ".", "/")
	return strings.Split(s, "/")
}

// splitCanonical splits an import map's canonical alias target
// (prefix/.../name) into its module prefix and trailing name.
func splitCanonical(canonical string) (prefix, name string) {
	segs := foldSeparators(canonical)
	if len(segs) == 0 {
		return "", canonical
	}
	name = segs[len(segs)-1]
	prefix = strings.Join(segs[:len(segs)-1], "/")
	return prefix, name
}
