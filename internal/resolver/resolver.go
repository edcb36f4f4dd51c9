// Package resolver implements the reference resolver (§4.3): it turns
// unresolved call sites plus per-file import maps into resolved edges
// between identified symbols, using a scoring heuristic rather than a full
// name-resolution engine.
//
// Grounded on the cross-file call resolvers in the retrieval pack
// (l3aro-go-context-query's resolver.go, standardbeagle-lci's
// import_resolver.go) for the import-map/module-path resolution shape, and
// on internal/graph/builder.go in SimplyLiz-CodeMCP for edge construction style.
package resolver

import (
	"sort"

	"dimpact/internal/symbol"
	"dimpact/internal/symbolindex"
)

// maxReexportChase bounds re-export chain following (§4.3 step 4) to a
// small constant and guards against cycles.
const maxReexportChase = 10

// FileImports maps a file path to the import map an analyzer extracted for
// it. A nil or missing entry is treated as an empty ImportMap.
type FileImports map[string]symbol.ImportMap

func (fi FileImports) get(file string) symbol.ImportMap {
	if im, ok := fi[file]; ok {
		return im
	}
	return symbol.ImportMap{}
}

// Resolve runs the seven-step algorithm of §4.3 over every unresolved call
// site, producing the resolved reference set. Refs that cannot locate an
// enclosing symbol, or that find no scoring candidate, are silently
// dropped — resolution is best-effort, not exhaustive.
func Resolve(idx *symbolindex.SymbolIndex, refs []symbol.UnresolvedRef, imports FileImports) []symbol.Reference {
	var out []symbol.Reference

	for _, r := range refs {
		ref, ok := resolveOne(idx, r, imports)
		if ok {
			out = append(out, ref)
		}
	}

	return sortReferences(out)
}

func resolveOne(idx *symbolindex.SymbolIndex, r symbol.UnresolvedRef, fileImports FileImports) (symbol.Reference, bool) {
	// Step 1: locate the source symbol.
	from, ok := idx.EnclosingSymbol(r.File, r.Line)
	if !ok {
		return symbol.Reference{}, false
	}

	im := fileImports.get(r.File)
	currentModule := ModulePath(r.File)

	// Step 2: normalize the qualifier, if any.
	qualifierModule := ""
	if r.HasQualifier() {
		qualifierModule = expandQualifier(r.Qualifier, im, currentModule)
	}

	// Step 3: candidate target name and imported prefix.
	targetName := r.Name
	importedPrefix := ""
	if !r.HasQualifier() {
		if canonical, aliased := im.Alias(r.Name); aliased {
			importedPrefix, targetName = splitCanonical(canonical)
		}
	}

	// Step 4: re-export chasing, bounded and cycle-guarded.
	if importedPrefix != "" {
		importedPrefix, targetName = chaseReexports(importedPrefix, targetName, fileImports)
	}

	// Step 5: candidate selection.
	candidates := idx.ByName(targetName)
	if r.HasQualifier() {
		if filtered := filterByModule(candidates, qualifierModule); len(filtered) > 0 {
			candidates = filtered
		}
	}
	candidates = filterCallable(candidates)

	// Step 6: module-only fallback.
	if len(candidates) == 0 {
		candidates = moduleOnlyFallback(idx, qualifierModule, importedPrefix, im)
	}
	if len(candidates) == 0 {
		return symbol.Reference{}, false
	}

	// Step 7: score, pick the unique maximum, tie-break by symbol id.
	globs := im.Globs()
	best := candidates[0]
	bestScore := score(r, best, qualifierModule, importedPrefix, globs)
	for _, c := range candidates[1:] {
		s := score(r, c, qualifierModule, importedPrefix, globs)
		if s > bestScore || (s == bestScore && c.ID < best.ID) {
			best, bestScore = c, s
		}
	}

	return symbol.Reference{
		From: from.ID,
		To:   best.ID,
		File: r.File,
		Line: r.Line,
	}, true
}

// expandQualifier normalizes a call-site qualifier: separators are folded,
// the first segment is substituted with its canonical import-map target if
// it names an alias, and a leading self/super/crate (or equivalent) token
// is then expanded against the current file's module path.
func expandQualifier(qualifier string, im symbol.ImportMap, currentModule string) string {
	segs := foldSeparators(qualifier)
	if len(segs) == 0 {
		return ""
	}

	if canonical, ok := im.Alias(segs[0]); ok {
		aliasSegs := foldSeparators(canonical)
		segs = append(aliasSegs, segs[1:]...)
	}

	if len(segs) > 0 {
		switch segs[0] {
		case "crate":
			segs = segs[1:]
		case "self":
			cur := foldSeparators(currentModule)
			segs = append(cur, segs[1:]...)
		case "super":
			i := 0
			for i < len(segs) && segs[i] == "super" {
				i++
			}
			cur := foldSeparators(currentModule)
			drop := i
			if drop > len(cur) {
				drop = len(cur)
			}
			base := cur[:len(cur)-drop]
			segs = append(append([]string{}, base...), segs[i:]...)
		}
	}

	return joinSegs(segs)
}

func joinSegs(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "/"
		}
		out += s
	}
	return out
}

// chaseReexports follows an aggregator's re-export chain (prefix, name) to
// its underlying module, bounded by maxReexportChase and guarded against
// cycles.
func chaseReexports(prefix, name string, fileImports FileImports) (string, string) {
	visited := make(map[string]bool)
	for i := 0; i < maxReexportChase; i++ {
		key := prefix + "::" + name
		if visited[key] {
			break
		}
		visited[key] = true

		nextModule, nextName, found := findReexport(prefix, name, fileImports)
		if !found {
			break
		}
		prefix, name = nextModule, nextName
	}
	return prefix, name
}

// findReexport looks for a file whose module path matches prefix and whose
// import map publishes an __export__ or __export_glob__ entry for name,
// returning the module/name the re-export ultimately points to. The
// returned module is normalized through foldSeparators/joinSegs: an
// adapter's export entry may record its module using that ecosystem's own
// separator (Python's dotted "pkg.widget"), but every other module-path
// comparison in this package works in the canonical "/"-joined form.
func findReexport(prefix, name string, fileImports FileImports) (module, originalName string, ok bool) {
	for file, im := range fileImports {
		if !FileMatchesModule(file, prefix) {
			continue
		}
		if mod, orig, exported := im.Export(name); exported {
			return joinSegs(foldSeparators(mod)), orig, true
		}
		for _, g := range im.ExportGlobs() {
			return joinSegs(foldSeparators(g)), name, true
		}
	}
	return "", "", false
}

func filterByModule(candidates []symbol.Symbol, modulePath string) []symbol.Symbol {
	if modulePath == "" {
		return nil
	}
	var out []symbol.Symbol
	for _, c := range candidates {
		if FileMatchesModule(c.File, modulePath) {
			out = append(out, c)
		}
	}
	return out
}

func filterCallable(candidates []symbol.Symbol) []symbol.Symbol {
	var out []symbol.Symbol
	for _, c := range candidates {
		if c.Kind.IsCallable() {
			out = append(out, c)
		}
	}
	return out
}

// moduleOnlyFallback implements step 6: union the qualifier, imported
// prefix, and every glob prefix into a candidate module-path set, and take
// any function/method whose file matches at least one of them.
func moduleOnlyFallback(idx *symbolindex.SymbolIndex, qualifierModule, importedPrefix string, im symbol.ImportMap) []symbol.Symbol {
	var modules []string
	if qualifierModule != "" {
		modules = append(modules, qualifierModule)
	}
	if importedPrefix != "" {
		modules = append(modules, importedPrefix)
	}
	modules = append(modules, im.Globs()...)
	if len(modules) == 0 {
		return nil
	}

	var out []symbol.Symbol
	for _, s := range idx.All() {
		if !s.Kind.IsCallable() {
			continue
		}
		for _, m := range modules {
			if FileMatchesModule(s.File, m) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// sortReferences returns refs sorted into a deterministic byte-stable order
// (by file, then line, then target id), for consumers that need stable
// output independent of analyzer/resolution order.
func sortReferences(refs []symbol.Reference) []symbol.Reference {
	out := make([]symbol.Reference, len(refs))
	copy(out, refs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].To < out[j].To
	})
	return out
}
