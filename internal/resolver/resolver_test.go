package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dimpact/internal/symbol"
	"dimpact/internal/symbolindex"
)

func fn(name, file string, start, end int, language string) symbol.Symbol {
	return symbol.Symbol{
		ID:       symbol.NewID(language, file, symbol.KindFunction, name, start),
		Name:     name,
		Kind:     symbol.KindFunction,
		File:     file,
		Range:    symbol.TextRange{Start: start, End: end},
		Language: language,
	}
}

func method(name, file string, start, end int, language string) symbol.Symbol {
	s := fn(name, file, start, end, language)
	s.ID = symbol.NewID(language, file, symbol.KindMethod, name, start)
	s.Kind = symbol.KindMethod
	return s
}

// TestChaseReexports_PythonAggregator exercises §4.3 step 4 against the
// canonical __init__.py aggregator idiom: a call site imports "Widget" from
// package "pkg", whose __init__.py re-exports it from the "pkg.widget"
// submodule.
func TestChaseReexports_PythonAggregator(t *testing.T) {
	aggregator := symbol.NewImportMap()
	aggregator.SetExport("Widget", "pkg.widget", "Widget")
	fileImports := FileImports{"pkg/__init__.py": aggregator}

	prefix, name := chaseReexports("pkg", "Widget", fileImports)
	assert.Equal(t, "pkg/widget", prefix, "a dotted export module must be folded to the canonical slash form")
	assert.Equal(t, "Widget", name)
}

// TestChaseReexports_GoFacade exercises the same step against Go's
// package-facade re-export idiom (a type alias or var alias through a
// module-root-stem file).
func TestChaseReexports_GoFacade(t *testing.T) {
	facade := symbol.NewImportMap()
	facade.SetExport("Triangle", "shapes/geometry", "Triangle")
	fileImports := FileImports{"shapes/lib.go": facade}

	prefix, name := chaseReexports("shapes", "Triangle", fileImports)
	assert.Equal(t, "shapes/geometry", prefix)
	assert.Equal(t, "Triangle", name)
}

// TestChaseReexports_GlobExport covers a blanket `from .x import *`
// aggregator entry: every name under the aggregated module resolves there.
func TestChaseReexports_GlobExport(t *testing.T) {
	aggregator := symbol.NewImportMap()
	aggregator.SetExportGlob("pkg.internal")
	fileImports := FileImports{"pkg/__init__.py": aggregator}

	prefix, name := chaseReexports("pkg", "Anything", fileImports)
	assert.Equal(t, "pkg/internal", prefix)
	assert.Equal(t, "Anything", name)
}

// TestChaseReexports_CycleGuarded ensures a re-export cycle terminates
// instead of looping forever, bounded by maxReexportChase.
func TestChaseReexports_CycleGuarded(t *testing.T) {
	a := symbol.NewImportMap()
	a.SetExport("X", "b", "X")
	b := symbol.NewImportMap()
	b.SetExport("X", "a", "X")
	fileImports := FileImports{"a/lib.go": a, "b/lib.go": b}

	prefix, name := chaseReexports("a", "X", fileImports)
	assert.Contains(t, []string{"a", "b"}, prefix)
	assert.Equal(t, "X", name)
}

// TestChaseReexports_NoMatchReturnsInput covers the no-op case: no file's
// module path matches the prefix, so the chase leaves (prefix, name)
// untouched.
func TestChaseReexports_NoMatchReturnsInput(t *testing.T) {
	fileImports := FileImports{}
	prefix, name := chaseReexports("nowhere", "X", fileImports)
	assert.Equal(t, "nowhere", prefix)
	assert.Equal(t, "X", name)
}

// TestResolve_ReexportChaseEndToEnd drives the full Resolve pipeline through
// a Python __init__.py aggregator: an unqualified call to a name imported
// from the package resolves to the real symbol defined in the submodule
// the aggregator re-exports, not to the aggregator file itself.
func TestResolve_ReexportChaseEndToEnd(t *testing.T) {
	caller := fn("main", "app.py", 1, 10, "python")
	widget := fn("Widget", "pkg/widget.py", 1, 3, "python")

	idx := symbolindex.Build([]symbol.Symbol{caller, widget})

	appImports := symbol.NewImportMap()
	appImports.SetAlias("Widget", "pkg::Widget")
	aggregatorImports := symbol.NewImportMap()
	aggregatorImports.SetExport("Widget", "pkg.widget", "Widget")

	fileImports := FileImports{
		"app.py":         appImports,
		"pkg/__init__.py": aggregatorImports,
	}

	refs := []symbol.UnresolvedRef{
		{Name: "Widget", File: "app.py", Line: 5, IsMethod: false},
	}

	resolved := Resolve(idx, refs, fileImports)
	require.Len(t, resolved, 1)
	assert.Equal(t, caller.ID, resolved[0].From)
	assert.Equal(t, widget.ID, resolved[0].To)
}

// TestResolve_PrefersSameFileThenSameDir exercises locality scoring: among
// several same-named candidates, the one in the calling file wins over one
// in the same directory, which wins over one in an unrelated directory.
func TestResolve_PrefersSameFileThenSameDir(t *testing.T) {
	caller := fn("main", "pkg/a.go", 1, 10, "go")
	sameFile := fn("Helper", "pkg/a.go", 20, 25, "go")
	sameDir := fn("Helper", "pkg/b.go", 1, 5, "go")
	farAway := fn("Helper", "other/c.go", 1, 5, "go")

	idx := symbolindex.Build([]symbol.Symbol{caller, sameFile, sameDir, farAway})
	refs := []symbol.UnresolvedRef{{Name: "Helper", File: "pkg/a.go", Line: 3, IsMethod: false}}

	resolved := Resolve(idx, refs, FileImports{})
	require.Len(t, resolved, 1)
	assert.Equal(t, sameFile.ID, resolved[0].To, "same-file candidate must win over same-dir and unrelated candidates")
}

func TestResolve_SameDirBeatsUnrelated(t *testing.T) {
	caller := fn("main", "pkg/a.go", 1, 10, "go")
	sameDir := fn("Helper", "pkg/b.go", 1, 5, "go")
	farAway := fn("Helper", "other/c.go", 1, 5, "go")

	idx := symbolindex.Build([]symbol.Symbol{caller, sameDir, farAway})
	refs := []symbol.UnresolvedRef{{Name: "Helper", File: "pkg/a.go", Line: 3, IsMethod: false}}

	resolved := Resolve(idx, refs, FileImports{})
	require.Len(t, resolved, 1)
	assert.Equal(t, sameDir.ID, resolved[0].To)
}

// TestResolve_MethodVsFunctionScoring covers the method/free-call scoring
// tiers directly: a method-shaped call site prefers a method candidate over
// a same-named free function.
func TestResolve_MethodVsFunctionScoring(t *testing.T) {
	caller := fn("main", "svc.go", 1, 10, "go")
	meth := method("Process", "svc.go", 20, 25, "go")
	free := fn("Process", "other.go", 1, 5, "go")

	idx := symbolindex.Build([]symbol.Symbol{caller, meth, free})
	refs := []symbol.UnresolvedRef{
		{Name: "Process", File: "svc.go", Line: 3, Qualifier: "obj", IsMethod: true},
	}

	resolved := Resolve(idx, refs, FileImports{})
	require.Len(t, resolved, 1)
	assert.Equal(t, meth.ID, resolved[0].To)
}

// TestResolve_ConventionallyMethodLike covers the recovery heuristic: a
// method-shaped call site whose qualifier resolves to a known imported
// module still finds the module-level free function, the situation an
// adapter that cannot distinguish value-method calls from qualified module
// calls (our Python adapter) relies on.
func TestResolve_ConventionallyMethodLike(t *testing.T) {
	caller := fn("main", "app.py", 1, 10, "python")
	target := fn("render", "util/render.py", 1, 5, "python")

	idx := symbolindex.Build([]symbol.Symbol{caller, target})

	im := symbol.NewImportMap()
	im.SetAlias("util", "util.render")
	fileImports := FileImports{"app.py": im}

	refs := []symbol.UnresolvedRef{
		{Name: "render", File: "app.py", Line: 3, Qualifier: "util", IsMethod: true},
	}

	resolved := Resolve(idx, refs, fileImports)
	require.Len(t, resolved, 1)
	assert.Equal(t, target.ID, resolved[0].To)
}

func TestResolve_DropsRefsWithNoEnclosingSymbol(t *testing.T) {
	idx := symbolindex.Build(nil)
	refs := []symbol.UnresolvedRef{{Name: "Anything", File: "ghost.go", Line: 1}}
	assert.Empty(t, Resolve(idx, refs, FileImports{}))
}

// TestResolve_OutputIsSorted exercises sortReferences: Resolve's output is
// ordered by file, then line, then target id, independent of input order.
func TestResolve_OutputIsSorted(t *testing.T) {
	callerA := fn("main", "b.go", 1, 10, "go")
	callerB := fn("main", "a.go", 1, 10, "go")
	target := fn("Target", "t.go", 1, 5, "go")

	idx := symbolindex.Build([]symbol.Symbol{callerA, callerB, target})
	refs := []symbol.UnresolvedRef{
		{Name: "Target", File: "b.go", Line: 3, IsMethod: false},
		{Name: "Target", File: "a.go", Line: 5, IsMethod: false},
		{Name: "Target", File: "a.go", Line: 2, IsMethod: false},
	}

	resolved := Resolve(idx, refs, FileImports{})
	require.Len(t, resolved, 3)
	assert.Equal(t, "a.go", resolved[0].File)
	assert.Equal(t, 2, resolved[0].Line)
	assert.Equal(t, "a.go", resolved[1].File)
	assert.Equal(t, 5, resolved[1].Line)
	assert.Equal(t, "b.go", resolved[2].File)
}
