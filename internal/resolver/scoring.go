package resolver

import "dimpact/internal/symbol"

// score implements the candidate scoring table of §4.3.3: an integer sum of
// independent bonuses, chosen so that stronger signals dominate weaker
// ones. qualifierModule and importedPrefix are the two module-path signals
// computed for this call site ("" if not applicable); globs is the calling
// file's active wildcard-import prefixes.
func score(r symbol.UnresolvedRef, cand symbol.Symbol, qualifierModule, importedPrefix string, globs []string) int {
	total := 0

	if cand.File == r.File {
		total += 30
	}
	if dirOf(cand.File) == dirOf(r.File) {
		total += 10
	}
	if qualifierModule != "" && FileMatchesModule(cand.File, qualifierModule) {
		total += 20
	}

	// Imported-prefix and glob prefixes both award the same +15 bonus for an
	// imported-module match; when several globs are active, each is scored
	// independently and the maximum (here, a single +15 since all globs
	// award the identical bonus) is used rather than stacking.
	prefixMatch := importedPrefix != "" && FileMatchesModule(cand.File, importedPrefix)
	if !prefixMatch {
		for _, g := range globs {
			if FileMatchesModule(cand.File, g) {
				prefixMatch = true
				break
			}
		}
	}
	if prefixMatch {
		total += 15
	}

	switch {
	case r.IsMethod && cand.Kind == symbol.KindMethod:
		total += 25
	case r.IsMethod && cand.Kind == symbol.KindFunction && conventionallyMethodLike(qualifierModule, importedPrefix):
		total += 20
	case !r.IsMethod && cand.Kind == symbol.KindFunction:
		total += 5
		// a method candidate reached via a free call earns +0 (the default).
	}

	return total
}

// conventionallyMethodLike reports whether a free function candidate should
// be treated as exposed "method-like" by ecosystem convention: true whenever
// the method-shaped call site (obj.name()) yields a qualifier module path or
// an imported prefix. It does not check whether that qualifier names a
// module or a local value. An analyzer adapter
// that cannot distinguish "value.method()" from "module.function()"
// syntactically (our Python adapter, for instance, which marks every
// attribute call as a method call) relies on this signal to still credit a
// plain module-level function reached that way.
func conventionallyMethodLike(qualifierModule, importedPrefix string) bool {
	return qualifierModule != "" || importedPrefix != ""
}
