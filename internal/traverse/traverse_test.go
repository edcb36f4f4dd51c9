package traverse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dimpact/internal/symbol"
	"dimpact/internal/symbolindex"
)

func fn(name, file string, start, end int) symbol.Symbol {
	return symbol.Symbol{
		ID:    symbol.NewID("go", file, symbol.KindFunction, name, start),
		Name:  name,
		Kind:  symbol.KindFunction,
		File:  file,
		Range: symbol.TextRange{Start: start, End: end},
	}
}

// buildChain constructs a linear call chain a -> b -> c -> d (a calls b
// calls c calls d), each in its own file.
func buildChain(t *testing.T) (*symbolindex.SymbolIndex, []symbol.Reference, map[string]symbol.Symbol) {
	t.Helper()
	a := fn("A", "a.go", 1, 5)
	b := fn("B", "b.go", 1, 5)
	c := fn("C", "c.go", 1, 5)
	d := fn("D", "d.go", 1, 5)

	idx := symbolindex.Build([]symbol.Symbol{a, b, c, d})
	refs := []symbol.Reference{
		{From: a.ID, To: b.ID, File: "a.go", Line: 2},
		{From: b.ID, To: c.ID, File: "b.go", Line: 2},
		{From: c.ID, To: d.ID, File: "c.go", Line: 2},
	}
	return idx, refs, map[string]symbol.Symbol{"a": a, "b": b, "c": c, "d": d}
}

func symbolIDs(syms []symbol.Symbol) []symbol.ID {
	out := make([]symbol.ID, len(syms))
	for i, s := range syms {
		out[i] = s.ID
	}
	return out
}

func TestTraverse_CalleesUnbounded(t *testing.T) {
	idx, refs, syms := buildChain(t)

	result := Traverse([]symbol.ID{syms["a"].ID}, idx, refs, Options{Direction: DirectionCallees})

	assert.ElementsMatch(t, []symbol.ID{syms["b"].ID, syms["c"].ID, syms["d"].ID}, symbolIDs(result.ImpactedSymbols))
}

func TestTraverse_CallersUnbounded(t *testing.T) {
	idx, refs, syms := buildChain(t)

	result := Traverse([]symbol.ID{syms["d"].ID}, idx, refs, Options{Direction: DirectionCallers})

	assert.ElementsMatch(t, []symbol.ID{syms["a"].ID, syms["b"].ID, syms["c"].ID}, symbolIDs(result.ImpactedSymbols))
}

// TestTraverse_MaxDepthBounds exercises the depth ceiling: a node reached at
// depth == MaxDepth is included but its own neighbors are not enqueued.
func TestTraverse_MaxDepthBounds(t *testing.T) {
	idx, refs, syms := buildChain(t)
	depth := 1

	result := Traverse([]symbol.ID{syms["a"].ID}, idx, refs, Options{
		Direction: DirectionCallees,
		MaxDepth:  &depth,
	})

	assert.ElementsMatch(t, []symbol.ID{syms["b"].ID}, symbolIDs(result.ImpactedSymbols))
}

func TestTraverse_MaxDepthZero(t *testing.T) {
	idx, refs, syms := buildChain(t)
	depth := 0

	result := Traverse([]symbol.ID{syms["a"].ID}, idx, refs, Options{
		Direction: DirectionCallees,
		MaxDepth:  &depth,
	})

	assert.Empty(t, result.ImpactedSymbols, "depth 0 reaches no neighbors beyond the seed")
}

func TestTraverse_BothDirections(t *testing.T) {
	idx, refs, syms := buildChain(t)

	result := Traverse([]symbol.ID{syms["b"].ID}, idx, refs, Options{Direction: DirectionBoth})

	assert.ElementsMatch(t, []symbol.ID{syms["a"].ID, syms["c"].ID, syms["d"].ID}, symbolIDs(result.ImpactedSymbols))
}

// TestTraverse_SeedNeverReportedAsImpacted covers a seed with an outgoing
// edge: its neighbors are impacted, but the seed itself never appears in
// ImpactedSymbols.
func TestTraverse_SeedNeverReportedAsImpacted(t *testing.T) {
	idx, refs, syms := buildChain(t)

	result := Traverse([]symbol.ID{syms["a"].ID}, idx, refs, Options{Direction: DirectionCallees})

	for _, s := range result.ImpactedSymbols {
		assert.NotEqual(t, syms["a"].ID, s.ID)
	}
}

// TestTraverse_IgnoreDirsDropsSeed exercises P9: a seed whose file matches
// ignore_dirs is dropped before traversal starts and contributes nothing.
func TestTraverse_IgnoreDirsDropsSeed(t *testing.T) {
	idx, refs, syms := buildChain(t)

	result := Traverse([]symbol.ID{syms["a"].ID}, idx, refs, Options{
		Direction:  DirectionCallees,
		IgnoreDirs: []string{"a.go"},
	})

	assert.Empty(t, result.ImpactedSymbols)
	assert.Empty(t, result.ImpactedFiles)
}

// TestTraverse_IgnoreDirsDropsNeighbor covers the neighbor-side ignore:
// traversal does not expand into or report a neighbor under an ignored
// directory, even though the seed itself is eligible.
func TestTraverse_IgnoreDirsDropsNeighbor(t *testing.T) {
	a := fn("A", "src/a.go", 1, 5)
	b := fn("B", "vendor/b.go", 1, 5)

	idx := symbolindex.Build([]symbol.Symbol{a, b})
	refs := []symbol.Reference{{From: a.ID, To: b.ID, File: "src/a.go", Line: 2}}

	result := Traverse([]symbol.ID{a.ID}, idx, refs, Options{
		Direction:  DirectionCallees,
		IgnoreDirs: []string{"vendor"},
	})

	assert.Empty(t, result.ImpactedSymbols)
}

func TestTraverse_WithEdgesIncludesEdgesTouchingScope(t *testing.T) {
	idx, refs, syms := buildChain(t)
	depth := 1

	result := Traverse([]symbol.ID{syms["a"].ID}, idx, refs, Options{
		Direction: DirectionCallees,
		MaxDepth:  &depth,
		WithEdges: true,
	})

	require.NotEmpty(t, result.Edges)
	assert.Equal(t, refs[0], result.Edges[0])
}

func TestTraverse_UnknownSeedSkippedSilently(t *testing.T) {
	idx, refs, _ := buildChain(t)

	result := Traverse([]symbol.ID{symbol.ID("ghost")}, idx, refs, Options{Direction: DirectionBoth})
	assert.Empty(t, result.ImpactedSymbols)
}

func TestTraverse_ImpactedByFileGrouping(t *testing.T) {
	idx, refs, syms := buildChain(t)

	result := Traverse([]symbol.ID{syms["a"].ID}, idx, refs, Options{Direction: DirectionCallees})

	assert.Equal(t, []string{"b.go", "c.go", "d.go"}, result.ImpactedFiles)
	assert.Contains(t, result.ImpactedByFile, "b.go")
}
